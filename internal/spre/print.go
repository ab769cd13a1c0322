package spre

import (
	"strconv"
	"strings"
)

func sprintSet(s SetExpr) string {
	var b strings.Builder
	writeSet(&b, s, 1)
	return b.String()
}

// Sprint renders an expression in the surface syntax. The output
// re-parses to a structurally equal AST; canonical formula text also
// serves as the structural hash key for atom extraction.
func Sprint(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e, 1)
	return b.String()
}

// SprintFormula renders a spatial-unary formula in the surface syntax.
func SprintFormula(f Formula) string {
	var b strings.Builder
	writeFormula(&b, f, 1)
	return b.String()
}

// Temporal precedence: alternation 1, concatenation 2, postfix 3.

func writeExpr(b *strings.Builder, e Expr, prec int) {
	switch n := e.(type) {
	case *Atom:
		if c, ok := n.Formula.(*ClassFormula); ok {
			b.WriteString("[:" + c.Name + ":]")
			return
		}
		b.WriteByte('[')
		writeFormula(b, n.Formula, 1)
		b.WriteByte(']')

	case *Alt:
		parenthesize(b, prec > 1, func() {
			writeExpr(b, n.L, 1)
			b.WriteByte('|')
			writeExpr(b, n.R, 2)
		})

	case *Concat:
		parenthesize(b, prec > 2, func() {
			writeExpr(b, n.L, 2)
			writeExpr(b, n.R, 3)
		})

	case *Star:
		writeExpr(b, n.E, 3)
		b.WriteByte('*')

	case *Repeat:
		writeExpr(b, n.E, 3)
		b.WriteByte('{')
		b.WriteString(strconv.Itoa(n.Min))
		switch {
		case n.Unbounded:
			b.WriteString(",}")
		case n.Max != n.Min:
			b.WriteString("," + strconv.Itoa(n.Max) + "}")
		default:
			b.WriteByte('}')
		}
	}
}

// Spatial-unary precedence: or 1, and 2, unary 3.

func writeFormula(b *strings.Builder, f Formula, prec int) {
	switch n := f.(type) {
	case *ClassFormula:
		b.WriteString("[:" + n.Name + ":]")

	case *FOr:
		parenthesize(b, prec > 1, func() {
			writeFormula(b, n.L, 1)
			b.WriteString(" | ")
			writeFormula(b, n.R, 2)
		})

	case *FAnd:
		parenthesize(b, prec > 2, func() {
			writeFormula(b, n.L, 2)
			b.WriteString(" & ")
			writeFormula(b, n.R, 3)
		})

	case *FNot:
		b.WriteByte('!')
		writeFormula(b, n.F, 3)

	case *NonEmpty:
		b.WriteString("NE")
		if c, ok := n.Set.(*SClass); ok {
			b.WriteString("[:" + c.Name + ":]")
			return
		}
		b.WriteByte('(')
		writeSet(b, n.Set, 1)
		b.WriteByte(')')

	case *Exists:
		writeBinder(b, "E", n.Bindings, n.Body)

	case *Forall:
		writeBinder(b, "A", n.Bindings, n.Body)

	case *Cmp:
		// Comparator operands never begin with '(' so the parser can
		// tell a term from a grouped subformula.
		writeTerm(b, n.L, 1)
		b.WriteString(" " + n.Op.String() + " ")
		writeTerm(b, n.R, 1)
	}
}

func writeBinder(b *strings.Builder, kw string, bindings []Binding, body Formula) {
	b.WriteString(kw + "(")
	for i, bind := range bindings {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(bind.Var + " := ")
		writeSet(b, bind.Set, 1)
	}
	b.WriteString(")(")
	writeFormula(b, body, 1)
	b.WriteByte(')')
}

// Set precedence: union 1, intersection 2, complement 3.

func writeSet(b *strings.Builder, s SetExpr, prec int) {
	switch n := s.(type) {
	case *SClass:
		b.WriteString("[:" + n.Name + ":]")

	case *SVar:
		b.WriteString(n.Name)

	case *SOr:
		parenthesize(b, prec > 1, func() {
			writeSet(b, n.L, 1)
			b.WriteString(" | ")
			writeSet(b, n.R, 2)
		})

	case *SAnd:
		parenthesize(b, prec > 2, func() {
			writeSet(b, n.L, 2)
			b.WriteString(" & ")
			writeSet(b, n.R, 3)
		})

	case *SNot:
		b.WriteByte('!')
		writeSet(b, n.S, 3)
	}
}

// Term precedence: additive 1, multiplicative 2, unary 3.

func writeTerm(b *strings.Builder, t Term, prec int) {
	switch n := t.(type) {
	case *Num:
		b.WriteString(strconv.FormatFloat(n.V, 'g', -1, 64))

	case *Neg:
		parenthesize(b, prec > 3, func() {
			b.WriteByte('-')
			writeTerm(b, n.T, 3)
		})

	case *Arith:
		p := 1
		if n.Op == OpMul || n.Op == OpDiv {
			p = 2
		}
		parenthesize(b, prec > p, func() {
			writeTerm(b, n.L, p)
			b.WriteString(" " + n.Op.String() + " ")
			writeTerm(b, n.R, p+1)
		})

	case *FnArea:
		b.WriteString("@area(")
		writeSet(b, n.Set, 1)
		b.WriteByte(')')

	case *FnX:
		b.WriteString("@x(")
		writeSet(b, n.Set, 1)
		b.WriteByte(')')

	case *FnY:
		b.WriteString("@y(")
		writeSet(b, n.Set, 1)
		b.WriteByte(')')

	case *FnDist1:
		b.WriteString("@dist(")
		writeSet(b, n.Set, 1)
		b.WriteByte(')')

	case *FnDist2:
		b.WriteString("@dist(")
		writeSet(b, n.A, 1)
		b.WriteString(", ")
		writeSet(b, n.B, 1)
		b.WriteByte(')')
	}
}

func parenthesize(b *strings.Builder, wrap bool, body func()) {
	if wrap {
		b.WriteByte('(')
	}
	body()
	if wrap {
		b.WriteByte(')')
	}
}
