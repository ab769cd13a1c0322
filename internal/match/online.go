package match

import (
	"github.com/cps-atlas/strem/internal/monitor"
	"github.com/cps-atlas/strem/internal/stream"
)

// entry is one active simulation per NFA state: the frame index where
// its match began and whether that start has already been reported.
// Keying by state (earliest start wins) bounds the active set by the
// automaton's state count regardless of stream length.
type entry struct {
	start   int
	emitted bool
}

// Online is the incremental matcher. Feed frames in order with Observe;
// a match is emitted as soon as an accepting state is reached
// (shortest-accepting), using no future frames. Each start is reported
// at most once, and while a reported match can still extend, no new
// match is begun: a monitored event does not retrigger until it closes.
type Online struct {
	pattern *Pattern
	channel string
	active  map[int]entry
}

// NewOnline creates an online matcher bound to one channel.
func NewOnline(p *Pattern, channel string) *Online {
	return &Online{
		pattern: p,
		channel: channel,
		active:  make(map[int]entry),
	}
}

// Observe consumes the next frame and returns the match emitted at this
// frame, if any. Frames without the bound channel are skipped.
func (o *Online) Observe(frame *stream.Frame) *Match {
	s := frame.Sample(o.channel)
	if s == nil {
		return nil
	}

	mask := monitor.Mask(monitor.NewDetections(s), o.pattern.table)
	nfa := o.pattern.nfa

	// Advance every active entry one symbol, merging on target states
	// with earliest-start priority.
	next := make(map[int]entry, len(o.active))
	merge := func(state int, e entry) {
		if prev, ok := next[state]; ok && prev.start <= e.start {
			return
		}
		next[state] = e
	}

	for state, e := range o.active {
		for _, target := range nfa.Successors(state, mask) {
			for _, q := range nfa.EpsilonReach(target) {
				merge(q, e)
			}
		}
	}

	// A new match may begin at this frame, unless an already-reported
	// one is still in flight.
	locked := false
	for _, e := range next {
		if e.emitted {
			locked = true
			break
		}
	}

	if !locked {
		seed := entry{start: frame.Index}
		for q, in := range nfa.StartSet() {
			if !in {
				continue
			}
			for _, target := range nfa.Successors(q, mask) {
				for _, eq := range nfa.EpsilonReach(target) {
					merge(eq, seed)
				}
			}
		}
	}

	o.active = next

	// Emit the earliest unreported accepting start. The emitted run
	// stays active (marked) so the lockout tracks how long the event
	// could still extend; every other candidate overlaps the reported
	// interval and is discarded, keeping emissions aligned with the
	// offline matcher's disjoint scan.
	accept := nfa.Accept()
	e, ok := o.active[accept]
	if !ok || e.emitted {
		return nil
	}

	for state, other := range o.active {
		if other.start == e.start {
			o.active[state] = entry{start: other.start, emitted: true}
		} else {
			delete(o.active, state)
		}
	}

	return &Match{Channel: o.channel, Start: e.start, End: frame.Index}
}

// Run feeds a whole stream through the online matcher, collecting
// emissions in order. The channel must occur in at least one frame.
func (o *Online) Run(frames []stream.Frame) ([]Match, error) {
	seen := false
	var out []Match

	for i := range frames {
		if frames[i].Sample(o.channel) != nil {
			seen = true
		}
		if m := o.Observe(&frames[i]); m != nil {
			out = append(out, *m)
		}
	}

	if !seen {
		return nil, stream.ErrChannelNotFound
	}

	return out, nil
}
