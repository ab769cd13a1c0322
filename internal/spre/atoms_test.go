package spre

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExtract_AssignsIdsInFirstSeenOrder(t *testing.T) {
	e := mustParse(t, "[:car:][:pedestrian:][:car:]")

	table, err := Extract(e)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("got %d atoms, want 2", table.Len())
	}

	c := e.(*Concat)
	first := c.L.(*Concat).L.(*Atom)
	second := c.L.(*Concat).R.(*Atom)
	third := c.R.(*Atom)

	if first.ID != 0 || second.ID != 1 {
		t.Errorf("ids = %d, %d; want 0, 1", first.ID, second.ID)
	}
	if third.ID != first.ID {
		t.Errorf("structurally equal atoms got ids %d and %d", first.ID, third.ID)
	}
}

func TestExtract_CommutativeAtomsShareId(t *testing.T) {
	e := mustParse(t, "[[:car:] & [:pedestrian:]][[:pedestrian:] & [:car:]]")

	table, err := Extract(e)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if table.Len() != 1 {
		t.Errorf("got %d atoms, want 1 (commutative children canonicalized)", table.Len())
	}
}

func TestExtract_DoubleNegationFolds(t *testing.T) {
	e := mustParse(t, "[NE(!!([:car:]))][NE([:car:])]")

	table, err := Extract(e)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if table.Len() != 1 {
		t.Errorf("got %d atoms, want 1 (double negation folded)", table.Len())
	}
}

func TestExtract_BinderBindingOrderCanonicalized(t *testing.T) {
	e := mustParse(t,
		"[E(v := [:car:], u := [:bus:])([:x:])][E(u := [:bus:], v := [:car:])([:x:])]")

	table, err := Extract(e)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if table.Len() != 1 {
		t.Errorf("got %d atoms, want 1 (binding lists sorted)", table.Len())
	}
}

func TestExtract_DistinctAtomsGetDistinctIds(t *testing.T) {
	e := mustParse(t, "[[:car:]][![:car:]][NE(!([:car:]))]")

	table, err := Extract(e)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if table.Len() != 3 {
		t.Errorf("got %d atoms, want 3", table.Len())
	}
}

func TestExtract_AtomLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i <= MaxAtoms; i++ {
		fmt.Fprintf(&b, "[:class%d:]", i)
	}

	e := mustParse(t, b.String())
	_, err := Extract(e)

	var ale *AtomLimitError
	if !errors.As(err, &ale) {
		t.Fatalf("error = %v, want AtomLimitError", err)
	}
	if ale.Count != MaxAtoms+1 {
		t.Errorf("count = %d, want %d", ale.Count, MaxAtoms+1)
	}
}

func TestExtract_UnboundVariable(t *testing.T) {
	e := mustParse(t, "[NE(v)]")

	_, err := Extract(e)
	var uve *UnboundVariableError
	if !errors.As(err, &uve) {
		t.Fatalf("error = %v, want UnboundVariableError", err)
	}
	if uve.Var != "v" {
		t.Errorf("variable = %q, want v", uve.Var)
	}
}

func TestExtract_BoundVariableAccepted(t *testing.T) {
	e := mustParse(t, "[E(v := [:car:])(@area(v) > 0 & NE(v))]")

	if _, err := Extract(e); err != nil {
		t.Errorf("Extract() error: %v", err)
	}
}

func TestExtract_BindingSetCannotSeeOwnVariables(t *testing.T) {
	// A binding's set resolves in the enclosing scope, not its own.
	e := mustParse(t, "[E(v := w, w := [:car:])([:x:])]")

	_, err := Extract(e)
	var uve *UnboundVariableError
	if !errors.As(err, &uve) {
		t.Errorf("error = %v, want UnboundVariableError", err)
	}
}

func TestExtract_NestedBinderShadowing(t *testing.T) {
	e := mustParse(t, "[E(v := [:car:])(E(v := [:bus:])(NE(v)))]")

	if _, err := Extract(e); err != nil {
		t.Errorf("Extract() error: %v", err)
	}
}
