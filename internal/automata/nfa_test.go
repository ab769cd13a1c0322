package automata

import (
	"errors"
	"testing"

	"github.com/cps-atlas/strem/internal/spre"
)

// compile parses, extracts atoms, and builds the NFA for a pattern,
// returning the automaton and its atom table.
func compile(t *testing.T, pattern string) (*NFA, *spre.AtomTable) {
	t.Helper()

	e, err := spre.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", pattern, err)
	}
	table, err := spre.Extract(e)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	nfa, err := Compile(e)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return nfa, table
}

// accepts simulates the NFA over a mask sequence and reports whether
// the whole sequence is accepted.
func accepts(nfa *NFA, masks []uint64) bool {
	states := nfa.StartSet()
	for _, m := range masks {
		states = nfa.Step(states, m)
		if states == nil {
			return false
		}
	}
	return states[nfa.Accept()]
}

func TestCompile_SingleAtom(t *testing.T) {
	nfa, _ := compile(t, "[:a:]")

	if !accepts(nfa, []uint64{1}) {
		t.Error("should accept one frame with the atom set")
	}
	if accepts(nfa, []uint64{0}) {
		t.Error("should reject a frame without the atom")
	}
	if accepts(nfa, []uint64{1, 1}) {
		t.Error("should reject two frames for a one-frame pattern")
	}
	if accepts(nfa, nil) {
		t.Error("should reject the empty sequence")
	}
}

func TestCompile_Concat(t *testing.T) {
	nfa, _ := compile(t, "[:a:][:b:]")

	// atom 0 = a, atom 1 = b
	if !accepts(nfa, []uint64{0b01, 0b10}) {
		t.Error("should accept a then b")
	}
	if accepts(nfa, []uint64{0b10, 0b01}) {
		t.Error("should reject b then a")
	}
}

func TestCompile_Alt(t *testing.T) {
	nfa, _ := compile(t, "[:a:]|[:b:]")

	if !accepts(nfa, []uint64{0b01}) {
		t.Error("should accept a")
	}
	if !accepts(nfa, []uint64{0b10}) {
		t.Error("should accept b")
	}
	if accepts(nfa, []uint64{0b100}) {
		t.Error("should reject a frame with neither atom")
	}
}

func TestCompile_Star(t *testing.T) {
	nfa, _ := compile(t, "[:a:]*")

	if !nfa.StartSet()[nfa.Accept()] {
		t.Error("star should accept the empty sequence")
	}
	for n := 1; n <= 4; n++ {
		masks := make([]uint64, n)
		for i := range masks {
			masks[i] = 1
		}
		if !accepts(nfa, masks) {
			t.Errorf("should accept %d repetitions", n)
		}
	}
	if accepts(nfa, []uint64{1, 0}) {
		t.Error("should reject a non-matching tail")
	}
}

func TestCompile_RepeatExact(t *testing.T) {
	nfa, _ := compile(t, "[:a:]{3}")

	for n := 0; n <= 5; n++ {
		masks := make([]uint64, n)
		for i := range masks {
			masks[i] = 1
		}
		want := n == 3
		if got := accepts(nfa, masks); got != want {
			t.Errorf("length %d: accepted=%v, want %v", n, got, want)
		}
	}
}

func TestCompile_RepeatRange(t *testing.T) {
	nfa, _ := compile(t, "[:a:]{2,4}")

	for n := 0; n <= 6; n++ {
		masks := make([]uint64, n)
		for i := range masks {
			masks[i] = 1
		}
		want := n >= 2 && n <= 4
		if got := accepts(nfa, masks); got != want {
			t.Errorf("length %d: accepted=%v, want %v", n, got, want)
		}
	}
}

func TestCompile_RepeatAtLeast(t *testing.T) {
	nfa, _ := compile(t, "[:a:]{2,}")

	for n := 0; n <= 8; n++ {
		masks := make([]uint64, n)
		for i := range masks {
			masks[i] = 1
		}
		want := n >= 2
		if got := accepts(nfa, masks); got != want {
			t.Errorf("length %d: accepted=%v, want %v", n, got, want)
		}
	}
}

func TestCompile_RepeatTooLarge(t *testing.T) {
	e, err := spre.Parse("[:a:]{1,2000}")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if _, err := spre.Extract(e); err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	_, err = Compile(e)
	var rte *RepeatTooLargeError
	if !errors.As(err, &rte) {
		t.Fatalf("error = %v, want RepeatTooLargeError", err)
	}
	if rte.Max != 2000 {
		t.Errorf("max = %d, want 2000", rte.Max)
	}
}

func TestCompile_NestedGroups(t *testing.T) {
	nfa, _ := compile(t, "([:a:]|[:b:])[:c:]*")

	if !accepts(nfa, []uint64{0b001}) {
		t.Error("should accept just a")
	}
	if !accepts(nfa, []uint64{0b010, 0b100, 0b100}) {
		t.Error("should accept b then two c frames")
	}
	if accepts(nfa, []uint64{0b100}) {
		t.Error("should reject c alone")
	}
}

func TestCompile_MaskWithMultipleBits(t *testing.T) {
	// A frame satisfying several atoms can drive any of them.
	nfa, _ := compile(t, "[:a:][:b:]")

	both := uint64(0b11)
	if !accepts(nfa, []uint64{both, both}) {
		t.Error("frames holding both atoms should match ab")
	}
}
