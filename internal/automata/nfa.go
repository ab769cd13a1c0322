// Package automata compiles the temporal skeleton of a SpRE into a
// Thompson-style NFA over the atom-id alphabet.
//
// Transitions are either epsilon moves or single-atom tests: a
// transition labeled with atom i consumes a frame iff bit i of the
// frame's mask is set. Bounded repetition is unrolled.
package automata

import (
	"fmt"

	"github.com/cps-atlas/strem/internal/spre"
)

// MaxRepeat bounds the upper bound of a {m,n} repetition to keep the
// unrolled automaton small.
const MaxRepeat = 1024

// RepeatTooLargeError reports a repetition whose upper bound exceeds
// MaxRepeat.
type RepeatTooLargeError struct {
	Max int
}

func (e *RepeatTooLargeError) Error() string {
	return fmt.Sprintf("repetition bound %d exceeds the limit of %d", e.Max, MaxRepeat)
}

// epsilon marks an epsilon transition.
const epsilon = -1

type transition struct {
	atom int // atom id, or epsilon
	to   int
}

// NFA is a nondeterministic finite automaton with one start and one
// accept state. It is immutable once built.
type NFA struct {
	start  int
	accept int
	trans  [][]transition
}

// Start returns the start state id.
func (n *NFA) Start() int {
	return n.start
}

// Accept returns the accept state id.
func (n *NFA) Accept() int {
	return n.accept
}

// Len returns the number of states.
func (n *NFA) Len() int {
	return len(n.trans)
}

// Compile builds the NFA for a temporal expression. Atom ids must be
// assigned (spre.Extract) beforehand.
func Compile(e spre.Expr) (*NFA, error) {
	b := &builder{}

	frag, err := b.build(e)
	if err != nil {
		return nil, err
	}

	return &NFA{start: frag.start, accept: frag.accept, trans: b.trans}, nil
}

// fragment is a partial automaton with unique entry and exit states.
type fragment struct {
	start  int
	accept int
}

type builder struct {
	trans [][]transition
}

func (b *builder) state() int {
	b.trans = append(b.trans, nil)
	return len(b.trans) - 1
}

func (b *builder) edge(from, to, atom int) {
	b.trans[from] = append(b.trans[from], transition{atom: atom, to: to})
}

func (b *builder) build(e spre.Expr) (fragment, error) {
	switch n := e.(type) {
	case *spre.Atom:
		start := b.state()
		accept := b.state()
		b.edge(start, accept, n.ID)
		return fragment{start: start, accept: accept}, nil

	case *spre.Concat:
		l, err := b.build(n.L)
		if err != nil {
			return fragment{}, err
		}
		r, err := b.build(n.R)
		if err != nil {
			return fragment{}, err
		}
		b.edge(l.accept, r.start, epsilon)
		return fragment{start: l.start, accept: r.accept}, nil

	case *spre.Alt:
		l, err := b.build(n.L)
		if err != nil {
			return fragment{}, err
		}
		r, err := b.build(n.R)
		if err != nil {
			return fragment{}, err
		}

		start := b.state()
		accept := b.state()
		b.edge(start, l.start, epsilon)
		b.edge(start, r.start, epsilon)
		b.edge(l.accept, accept, epsilon)
		b.edge(r.accept, accept, epsilon)
		return fragment{start: start, accept: accept}, nil

	case *spre.Star:
		return b.star(n.E)

	case *spre.Repeat:
		return b.repeat(n)
	}

	return fragment{}, fmt.Errorf("automata: unknown expression %T", e)
}

func (b *builder) star(e spre.Expr) (fragment, error) {
	inner, err := b.build(e)
	if err != nil {
		return fragment{}, err
	}

	start := b.state()
	accept := b.state()
	b.edge(start, inner.start, epsilon)
	b.edge(start, accept, epsilon)
	b.edge(inner.accept, inner.start, epsilon)
	b.edge(inner.accept, accept, epsilon)
	return fragment{start: start, accept: accept}, nil
}

// repeat unrolls {m,n} into m mandatory copies followed by either a
// star ({m,}) or n-m optional copies.
func (b *builder) repeat(r *spre.Repeat) (fragment, error) {
	if !r.Unbounded && r.Max > MaxRepeat {
		return fragment{}, &RepeatTooLargeError{Max: r.Max}
	}

	start := b.state()
	last := start

	for i := 0; i < r.Min; i++ {
		copyFrag, err := b.build(r.E)
		if err != nil {
			return fragment{}, err
		}
		b.edge(last, copyFrag.start, epsilon)
		last = copyFrag.accept
	}

	if r.Unbounded {
		tail, err := b.star(r.E)
		if err != nil {
			return fragment{}, err
		}
		b.edge(last, tail.start, epsilon)
		return fragment{start: start, accept: tail.accept}, nil
	}

	accept := b.state()
	for i := r.Min; i < r.Max; i++ {
		copyFrag, err := b.build(r.E)
		if err != nil {
			return fragment{}, err
		}
		b.edge(last, accept, epsilon)
		b.edge(last, copyFrag.start, epsilon)
		last = copyFrag.accept
	}
	b.edge(last, accept, epsilon)

	return fragment{start: start, accept: accept}, nil
}

// Closure expands a state set with every state reachable by epsilon
// moves. The set is represented as a bool slice indexed by state id.
func (n *NFA) Closure(states []bool) {
	var stack []int
	for q, in := range states {
		if in {
			stack = append(stack, q)
		}
	}

	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, tr := range n.trans[q] {
			if tr.atom == epsilon && !states[tr.to] {
				states[tr.to] = true
				stack = append(stack, tr.to)
			}
		}
	}
}

// StartSet returns the epsilon closure of the start state.
func (n *NFA) StartSet() []bool {
	states := make([]bool, n.Len())
	states[n.start] = true
	n.Closure(states)
	return states
}

// Step advances a state set by one frame mask, returning the epsilon
// closure of the successor set. The input set is not modified.
func (n *NFA) Step(states []bool, mask uint64) []bool {
	next := make([]bool, n.Len())
	any := false

	for q, in := range states {
		if !in {
			continue
		}
		for _, tr := range n.trans[q] {
			if tr.atom == epsilon {
				continue
			}
			if mask&(1<<uint(tr.atom)) != 0 {
				next[tr.to] = true
				any = true
			}
		}
	}

	if !any {
		return nil
	}

	n.Closure(next)
	return next
}

// Successors reports, for one source state, the consuming transitions
// enabled by a mask. Used by the online matcher's per-state advance.
func (n *NFA) Successors(state int, mask uint64) []int {
	var out []int
	for _, tr := range n.trans[state] {
		if tr.atom == epsilon {
			continue
		}
		if mask&(1<<uint(tr.atom)) != 0 {
			out = append(out, tr.to)
		}
	}
	return out
}

// EpsilonReach returns the states reachable from state by epsilon moves
// alone, including itself.
func (n *NFA) EpsilonReach(state int) []int {
	states := make([]bool, n.Len())
	states[state] = true
	n.Closure(states)

	var out []int
	for q, in := range states {
		if in {
			out = append(out, q)
		}
	}
	return out
}
