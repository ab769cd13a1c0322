package monitor

import "github.com/cps-atlas/strem/internal/spre"

// evalSet computes the denotation of a set expression: a sorted slice
// of frame-local annotation indices. Complement is taken relative to
// the full frame set.
func evalSet(d *Detections, e *env, s spre.SetExpr) []int {
	switch n := s.(type) {
	case *spre.SClass:
		return sorted(d.byClass[n.Name])

	case *spre.SVar:
		// Extraction validates variable scoping; a miss here would be a
		// programming error, not user input, so denote the empty set.
		if idx, ok := e.lookup(n.Name); ok {
			return []int{idx}
		}
		return nil

	case *spre.SAnd:
		return sortedIntersect(evalSet(d, e, n.L), evalSet(d, e, n.R))

	case *spre.SOr:
		return sortedUnion(evalSet(d, e, n.L), evalSet(d, e, n.R))

	case *spre.SNot:
		return complement(evalSet(d, e, n.S), d.Len())
	}

	return nil
}
