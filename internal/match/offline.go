package match

import "github.com/cps-atlas/strem/internal/stream"

// Offline enumerates all maximal matching intervals on one channel of a
// complete stream. Matches are leftmost-longest, pairwise disjoint, and
// increasing in start; after a match ends, the search resumes at the
// next position. Matches consume at least one frame.
func Offline(p *Pattern, frames []stream.Frame, channel string) ([]Match, error) {
	masks := maskStream(frames, channel, p.table)
	if len(masks) == 0 {
		return nil, stream.ErrChannelNotFound
	}

	var out []Match

	pos := 0
	for pos < len(masks) {
		end := p.longestFrom(masks, pos)
		if end < pos {
			pos++
			continue
		}

		out = append(out, Match{
			Channel: channel,
			Start:   masks[pos].index,
			End:     masks[end].index,
		})
		pos = end + 1
	}

	return out, nil
}

// longestFrom subset-simulates the NFA from position pos and returns
// the largest accepting position, or pos-1 when no nonempty run
// accepts.
func (p *Pattern) longestFrom(masks []frameMask, pos int) int {
	states := p.nfa.StartSet()
	last := pos - 1

	for t := pos; t < len(masks); t++ {
		states = p.nfa.Step(states, masks[t].mask)
		if states == nil {
			break
		}
		if states[p.nfa.Accept()] {
			last = t
		}
	}

	return last
}
