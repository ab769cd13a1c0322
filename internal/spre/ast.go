// Package spre owns the Spatial Regular Expression language: lexer,
// recursive-descent parser, AST, canonical printer, and atom
// extraction.
//
// A SpRE is a classical regex over temporal atoms, where each atom is a
// spatial-unary (s4u) formula evaluated per frame. Spatial formulas
// quantify over detection sets (s4) and compare numeric terms (s4m).
package spre

// Temporal expressions.

// Expr is a node of the temporal (regex) sublanguage. The grammar is
// closed; consumers use exhaustive type switches.
type Expr interface {
	isExpr()
}

// Atom is a temporal leaf: a bracketed spatial-unary formula. ID is
// assigned by atom extraction; it is -1 on a freshly parsed tree.
type Atom struct {
	ID      int
	Formula Formula
}

// Concat matches L followed by R.
type Concat struct {
	L, R Expr
}

// Alt matches L or R.
type Alt struct {
	L, R Expr
}

// Star matches zero or more repetitions of E.
type Star struct {
	E Expr
}

// Repeat matches between Min and Max repetitions of E; Unbounded means
// no upper bound ({m,}).
type Repeat struct {
	E         Expr
	Min, Max  int
	Unbounded bool
}

func (*Atom) isExpr()   {}
func (*Concat) isExpr() {}
func (*Alt) isExpr()    {}
func (*Star) isExpr()   {}
func (*Repeat) isExpr() {}

// Spatial-unary (s4u) formulas.

// Formula is a node of the spatial-unary sublanguage, evaluated
// per frame to a boolean.
type Formula interface {
	isFormula()
}

// FAnd is boolean conjunction.
type FAnd struct {
	L, R Formula
}

// FOr is boolean disjunction.
type FOr struct {
	L, R Formula
}

// FNot is boolean negation.
type FNot struct {
	F Formula
}

// ClassFormula is the bare-class shorthand: true iff some annotation of
// the class is present.
type ClassFormula struct {
	Name string
}

// NonEmpty is true iff the set denoted by Set is nonempty.
type NonEmpty struct {
	Set SetExpr
}

// Binding associates a quantified variable with the set it ranges over.
type Binding struct {
	Var string
	Set SetExpr
}

// Exists is the existential binder: true iff some tuple drawn from the
// binding universes satisfies Body.
type Exists struct {
	Bindings []Binding
	Body     Formula
}

// Forall is the universal binder: true iff every tuple drawn from the
// binding universes satisfies Body. Vacuously true when any universe is
// empty.
type Forall struct {
	Bindings []Binding
	Body     Formula
}

// CmpOp enumerates comparison operators.
type CmpOp int

const (
	CmpLt CmpOp = iota
	CmpLe
	CmpGt
	CmpGe
)

func (op CmpOp) String() string {
	switch op {
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	case CmpGt:
		return ">"
	case CmpGe:
		return ">="
	}
	return "?"
}

// Cmp compares two numeric terms. NaN operands compare false.
type Cmp struct {
	Op   CmpOp
	L, R Term
}

func (*FAnd) isFormula()         {}
func (*FOr) isFormula()          {}
func (*FNot) isFormula()         {}
func (*ClassFormula) isFormula() {}
func (*NonEmpty) isFormula()     {}
func (*Exists) isFormula()       {}
func (*Forall) isFormula()       {}
func (*Cmp) isFormula()          {}

// Spatial set (s4) expressions.

// SetExpr is a node of the set sublanguage, denoting a subset of a
// frame's annotations.
type SetExpr interface {
	isSet()
}

// SClass selects the annotations of one class.
type SClass struct {
	Name string
}

// SAnd is set intersection.
type SAnd struct {
	L, R SetExpr
}

// SOr is set union.
type SOr struct {
	L, R SetExpr
}

// SNot is set complement relative to the full frame set.
type SNot struct {
	S SetExpr
}

// SVar denotes the singleton holding the annotation bound to a
// quantified variable.
type SVar struct {
	Name string
}

func (*SClass) isSet() {}
func (*SAnd) isSet()   {}
func (*SOr) isSet()    {}
func (*SNot) isSet()   {}
func (*SVar) isSet()   {}

// Numeric (s4m) terms.

// Term is a node of the numeric sublanguage, evaluated under a binder
// environment to an IEEE-754 double. Ill-defined quantities are NaN.
type Term interface {
	isTerm()
}

// Num is a numeric literal.
type Num struct {
	V float64
}

// Neg is unary minus.
type Neg struct {
	T Term
}

// ArithOp enumerates binary arithmetic operators.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return "?"
}

// Arith is binary arithmetic. Division by zero yields NaN.
type Arith struct {
	Op   ArithOp
	L, R Term
}

// FnArea is @area(s): the area of the singleton's box; NaN otherwise.
type FnArea struct {
	Set SetExpr
}

// FnX is @x(s): the centroid x of the singleton's box; NaN otherwise.
type FnX struct {
	Set SetExpr
}

// FnY is @y(s): the centroid y of the singleton's box; NaN otherwise.
type FnY struct {
	Set SetExpr
}

// FnDist1 is @dist(s): the distance between the two annotations of s
// when |s| == 2; NaN otherwise.
type FnDist1 struct {
	Set SetExpr
}

// FnDist2 is @dist(s1, s2): the minimum rectangle distance between two
// singletons; NaN otherwise.
type FnDist2 struct {
	A, B SetExpr
}

func (*Num) isTerm()     {}
func (*Neg) isTerm()     {}
func (*Arith) isTerm()   {}
func (*FnArea) isTerm()  {}
func (*FnX) isTerm()     {}
func (*FnY) isTerm()     {}
func (*FnDist1) isTerm() {}
func (*FnDist2) isTerm() {}
