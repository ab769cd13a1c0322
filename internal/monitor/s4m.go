package monitor

import (
	"math"

	"github.com/cps-atlas/strem/internal/geom"
	"github.com/cps-atlas/strem/internal/spre"
)

// evalTerm computes a numeric term under the current environment.
// Ill-defined quantities (non-singleton function arguments, division by
// zero) are NaN; NaN propagates through arithmetic and makes the
// enclosing comparison false.
func evalTerm(d *Detections, e *env, t spre.Term) float64 {
	switch n := t.(type) {
	case *spre.Num:
		return n.V

	case *spre.Neg:
		return -evalTerm(d, e, n.T)

	case *spre.Arith:
		l := evalTerm(d, e, n.L)
		r := evalTerm(d, e, n.R)
		switch n.Op {
		case spre.OpAdd:
			return l + r
		case spre.OpSub:
			return l - r
		case spre.OpMul:
			return l * r
		case spre.OpDiv:
			if r == 0 {
				return math.NaN()
			}
			return l / r
		}
		return math.NaN()

	case *spre.FnArea:
		if b, ok := singleton(d, e, n.Set); ok {
			return b.Area()
		}
		return math.NaN()

	case *spre.FnX:
		if b, ok := singleton(d, e, n.Set); ok {
			return b.Center().X
		}
		return math.NaN()

	case *spre.FnY:
		if b, ok := singleton(d, e, n.Set); ok {
			return b.Center().Y
		}
		return math.NaN()

	case *spre.FnDist1:
		// The one-argument form measures the separation of a pair.
		set := evalSet(d, e, n.Set)
		if len(set) != 2 {
			return math.NaN()
		}
		return geom.Dist(d.annotations[set[0]].Box, d.annotations[set[1]].Box)

	case *spre.FnDist2:
		a, okA := singleton(d, e, n.A)
		b, okB := singleton(d, e, n.B)
		if !okA || !okB {
			return math.NaN()
		}
		return geom.Dist(a, b)
	}

	return math.NaN()
}

// singleton resolves a set expression that must denote exactly one
// annotation, returning its box.
func singleton(d *Detections, e *env, s spre.SetExpr) (geom.Box, bool) {
	set := evalSet(d, e, s)
	if len(set) != 1 {
		return geom.Box{}, false
	}
	return d.annotations[set[0]].Box, true
}
