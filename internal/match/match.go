// Package match drives the compiled NFA over a channel's frame masks.
//
// Two drivers share the automaton: the offline matcher enumerates
// maximal (leftmost-longest) disjoint intervals over a complete stream,
// and the online matcher emits incrementally as soon as an accepting
// state is reached, using no future frames.
package match

import (
	"fmt"

	"github.com/cps-atlas/strem/internal/automata"
	"github.com/cps-atlas/strem/internal/monitor"
	"github.com/cps-atlas/strem/internal/spre"
	"github.com/cps-atlas/strem/internal/stream"
)

// Match is one reported interval: inclusive frame indices on a single
// channel, Start <= End.
type Match struct {
	Channel string
	Start   int
	End     int
}

func (m Match) String() string {
	return fmt.Sprintf("%s:%d..%d", m.Channel, m.Start, m.End)
}

// frameMask pairs a frame index with its atom-truth bitmask.
type frameMask struct {
	index int
	mask  uint64
}

// maskStream reduces the frames carrying the channel to their mask
// sequence.
func maskStream(frames []stream.Frame, channel string, table *spre.AtomTable) []frameMask {
	masks := make([]frameMask, 0, len(frames))
	for i := range frames {
		s := frames[i].Sample(channel)
		if s == nil {
			continue
		}
		d := monitor.NewDetections(s)
		masks = append(masks, frameMask{index: frames[i].Index, mask: monitor.Mask(d, table)})
	}
	return masks
}

// Pattern is a compiled SpRE bound to its atom table, ready for
// matching on any channel.
type Pattern struct {
	table *spre.AtomTable
	nfa   *automata.NFA
}

// Compile parses a pattern, extracts its atoms, and builds the
// automaton.
func Compile(pattern string) (*Pattern, error) {
	expr, err := spre.Parse(pattern)
	if err != nil {
		return nil, err
	}

	table, err := spre.Extract(expr)
	if err != nil {
		return nil, err
	}

	nfa, err := automata.Compile(expr)
	if err != nil {
		return nil, err
	}

	return &Pattern{table: table, nfa: nfa}, nil
}

// Atoms returns the number of distinct atoms in the pattern.
func (p *Pattern) Atoms() int {
	return p.table.Len()
}
