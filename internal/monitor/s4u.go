package monitor

import "github.com/cps-atlas/strem/internal/spre"

// Evaluate reports whether a spatial-unary formula holds on the frame.
func Evaluate(d *Detections, f spre.Formula) bool {
	return evalFormula(d, &env{}, f)
}

func evalFormula(d *Detections, e *env, f spre.Formula) bool {
	switch n := f.(type) {
	case *spre.ClassFormula:
		return len(d.byClass[n.Name]) > 0

	case *spre.NonEmpty:
		return len(evalSet(d, e, n.Set)) > 0

	case *spre.FAnd:
		return evalFormula(d, e, n.L) && evalFormula(d, e, n.R)

	case *spre.FOr:
		return evalFormula(d, e, n.L) || evalFormula(d, e, n.R)

	case *spre.FNot:
		return !evalFormula(d, e, n.F)

	case *spre.Exists:
		// True iff some tuple from the binding universes satisfies the
		// body. An empty universe has no tuples.
		return quantify(d, e, n.Bindings, n.Body, false)

	case *spre.Forall:
		// True iff every tuple satisfies the body; vacuously true when
		// any universe is empty.
		return quantify(d, e, n.Bindings, n.Body, true)

	case *spre.Cmp:
		return compare(n.Op, evalTerm(d, e, n.L), evalTerm(d, e, n.R))
	}

	return false
}

// quantify iterates the cartesian product of the binding universes.
// With all=false it is the existential (short-circuits on the first
// satisfying tuple); with all=true the universal (short-circuits on the
// first counterexample).
func quantify(d *Detections, e *env, bindings []spre.Binding, body spre.Formula, all bool) bool {
	// Resolve every universe in the enclosing environment before any
	// variable is pushed.
	universes := make([][]int, len(bindings))
	for i, b := range bindings {
		universes[i] = evalSet(d, e, b.Set)
		if len(universes[i]) == 0 {
			return all
		}
	}

	var walk func(depth int) bool
	walk = func(depth int) bool {
		if depth == len(bindings) {
			return evalFormula(d, e, body)
		}

		for _, idx := range universes[depth] {
			e.push(bindings[depth].Var, idx)
			ok := walk(depth + 1)
			e.pop(1)

			if ok != all {
				// Existential: a satisfying tuple. Universal: a
				// counterexample. Either way the answer is decided.
				return !all
			}
		}
		return all
	}

	return walk(0)
}

// compare applies a comparison operator. NaN operands compare false;
// this is the single point where the NaN policy meets booleans.
func compare(op spre.CmpOp, l, r float64) bool {
	switch op {
	case spre.CmpLt:
		return l < r
	case spre.CmpLe:
		return l <= r
	case spre.CmpGt:
		return l > r
	case spre.CmpGe:
		return l >= r
	}
	return false
}
