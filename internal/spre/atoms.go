package spre

import "sort"

// AtomTable maps atom ids to their spatial-unary formulas. Structurally
// equal atoms (after canonicalization) share one id; ids are assigned
// in first-seen order.
type AtomTable struct {
	formulas []Formula
	index    map[string]int
}

// Len returns the number of distinct atoms.
func (t *AtomTable) Len() int {
	return len(t.formulas)
}

// Formula returns the formula behind an atom id.
func (t *AtomTable) Formula(id int) Formula {
	return t.formulas[id]
}

// Extract assigns atom ids across the temporal AST and collects the
// atom formulas. It also validates that every set variable is bound by
// an enclosing binder. The input tree is rewritten in place.
func Extract(e Expr) (*AtomTable, error) {
	table := &AtomTable{index: make(map[string]int)}

	if err := extract(e, table); err != nil {
		return nil, err
	}
	if table.Len() > MaxAtoms {
		return nil, &AtomLimitError{Count: table.Len()}
	}

	return table, nil
}

func extract(e Expr, table *AtomTable) error {
	switch n := e.(type) {
	case *Atom:
		if err := validateVars(n.Formula, nil); err != nil {
			return err
		}

		key := SprintFormula(canonFormula(n.Formula))
		id, ok := table.index[key]
		if !ok {
			id = len(table.formulas)
			table.index[key] = id
			table.formulas = append(table.formulas, n.Formula)
		}
		n.ID = id
		return nil

	case *Concat:
		if err := extract(n.L, table); err != nil {
			return err
		}
		return extract(n.R, table)

	case *Alt:
		if err := extract(n.L, table); err != nil {
			return err
		}
		return extract(n.R, table)

	case *Star:
		return extract(n.E, table)

	case *Repeat:
		return extract(n.E, table)
	}

	return nil
}

// canonFormula rewrites a formula into canonical shape: commutative
// children sorted by their printed form, double negation folded, and
// binder binding lists sorted by variable name. The original tree is
// not modified.
func canonFormula(f Formula) Formula {
	switch n := f.(type) {
	case *ClassFormula:
		return n

	case *FAnd:
		l, r := orderFormulas(canonFormula(n.L), canonFormula(n.R))
		return &FAnd{L: l, R: r}

	case *FOr:
		l, r := orderFormulas(canonFormula(n.L), canonFormula(n.R))
		return &FOr{L: l, R: r}

	case *FNot:
		if inner, ok := n.F.(*FNot); ok {
			return canonFormula(inner.F)
		}
		return &FNot{F: canonFormula(n.F)}

	case *NonEmpty:
		return &NonEmpty{Set: canonSet(n.Set)}

	case *Exists:
		return &Exists{Bindings: canonBindings(n.Bindings), Body: canonFormula(n.Body)}

	case *Forall:
		return &Forall{Bindings: canonBindings(n.Bindings), Body: canonFormula(n.Body)}

	case *Cmp:
		return n
	}

	return f
}

func canonBindings(bindings []Binding) []Binding {
	out := make([]Binding, len(bindings))
	for i, b := range bindings {
		out[i] = Binding{Var: b.Var, Set: canonSet(b.Set)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Var < out[j].Var
	})
	return out
}

func canonSet(s SetExpr) SetExpr {
	switch n := s.(type) {
	case *SClass, *SVar:
		return s

	case *SAnd:
		l, r := orderSets(canonSet(n.L), canonSet(n.R))
		return &SAnd{L: l, R: r}

	case *SOr:
		l, r := orderSets(canonSet(n.L), canonSet(n.R))
		return &SOr{L: l, R: r}

	case *SNot:
		if inner, ok := n.S.(*SNot); ok {
			return canonSet(inner.S)
		}
		return &SNot{S: canonSet(n.S)}
	}

	return s
}

func orderFormulas(l, r Formula) (Formula, Formula) {
	if SprintFormula(r) < SprintFormula(l) {
		return r, l
	}
	return l, r
}

func orderSets(l, r SetExpr) (SetExpr, SetExpr) {
	if sprintSet(r) < sprintSet(l) {
		return r, l
	}
	return l, r
}

// validateVars checks that every SVar is bound by an enclosing binder.
// Inner bindings shadow outer ones.
func validateVars(f Formula, scope []string) error {
	switch n := f.(type) {
	case *ClassFormula:
		return nil

	case *FAnd:
		if err := validateVars(n.L, scope); err != nil {
			return err
		}
		return validateVars(n.R, scope)

	case *FOr:
		if err := validateVars(n.L, scope); err != nil {
			return err
		}
		return validateVars(n.R, scope)

	case *FNot:
		return validateVars(n.F, scope)

	case *NonEmpty:
		return validateSetVars(n.Set, scope)

	case *Exists:
		return validateBinder(n.Bindings, n.Body, scope)

	case *Forall:
		return validateBinder(n.Bindings, n.Body, scope)

	case *Cmp:
		if err := validateTermVars(n.L, scope); err != nil {
			return err
		}
		return validateTermVars(n.R, scope)
	}

	return nil
}

func validateBinder(bindings []Binding, body Formula, scope []string) error {
	// Binding sets are resolved in the enclosing scope; the body sees
	// the extended one.
	inner := make([]string, len(scope), len(scope)+len(bindings))
	copy(inner, scope)
	for _, b := range bindings {
		if err := validateSetVars(b.Set, scope); err != nil {
			return err
		}
		inner = append(inner, b.Var)
	}
	return validateVars(body, inner)
}

func validateSetVars(s SetExpr, scope []string) error {
	switch n := s.(type) {
	case *SClass:
		return nil

	case *SVar:
		for _, v := range scope {
			if v == n.Name {
				return nil
			}
		}
		return &UnboundVariableError{Var: n.Name}

	case *SAnd:
		if err := validateSetVars(n.L, scope); err != nil {
			return err
		}
		return validateSetVars(n.R, scope)

	case *SOr:
		if err := validateSetVars(n.L, scope); err != nil {
			return err
		}
		return validateSetVars(n.R, scope)

	case *SNot:
		return validateSetVars(n.S, scope)
	}

	return nil
}

func validateTermVars(t Term, scope []string) error {
	switch n := t.(type) {
	case *Num:
		return nil

	case *Neg:
		return validateTermVars(n.T, scope)

	case *Arith:
		if err := validateTermVars(n.L, scope); err != nil {
			return err
		}
		return validateTermVars(n.R, scope)

	case *FnArea:
		return validateSetVars(n.Set, scope)

	case *FnX:
		return validateSetVars(n.Set, scope)

	case *FnY:
		return validateSetVars(n.Set, scope)

	case *FnDist1:
		return validateSetVars(n.Set, scope)

	case *FnDist2:
		if err := validateSetVars(n.A, scope); err != nil {
			return err
		}
		return validateSetVars(n.B, scope)
	}

	return nil
}
