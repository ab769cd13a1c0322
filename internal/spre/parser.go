package spre

import "strconv"

// Parse compiles a SpRE pattern into its temporal AST. Atom ids are
// unassigned (-1); run Extract on the result before matching.
func Parse(pattern string) (Expr, error) {
	toks, err := lex(pattern)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	expr, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tkEOF); err != nil {
		return nil, err
	}

	return expr, nil
}

// ParseFormula compiles a bare spatial-unary formula, as used by atom
// tests and the monitor's table fixtures.
func ParseFormula(input string) (Formula, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	f, err := p.parseS4uOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tkEOF); err != nil {
		return nil, err
	}

	return f, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peek2() token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tkEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return token{}, &SyntaxError{Offset: t.off, Expected: kind.String(), Found: t.describe()}
	}
	return p.next(), nil
}

func (p *parser) fail(expected string) error {
	t := p.peek()
	return &SyntaxError{Offset: t.off, Expected: expected, Found: t.describe()}
}

// Temporal grammar. Precedence (low to high): alternation,
// concatenation, postfix repetition, primary.

func (p *parser) parseAlt() (Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tkBar {
		p.next()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &Alt{L: left, R: right}
	}

	return left, nil
}

func (p *parser) parseConcat() (Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	for startsTemporalPrimary(p.peek().kind) {
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &Concat{L: left, R: right}
	}

	return left, nil
}

func startsTemporalPrimary(kind tokenKind) bool {
	return kind == tkLParen || kind == tkLBracket || kind == tkClass
}

func (p *parser) parsePostfix() (Expr, error) {
	e, err := p.parseTemporalPrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().kind {
		case tkStar:
			p.next()
			e = &Star{E: e}
		case tkLBrace:
			r, err := p.parseRange()
			if err != nil {
				return nil, err
			}
			r.E = e
			e = r
		default:
			return e, nil
		}
	}
}

func (p *parser) parseTemporalPrimary() (Expr, error) {
	switch t := p.peek(); t.kind {
	case tkLParen:
		p.next()
		e, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkRParen); err != nil {
			return nil, err
		}
		return e, nil

	case tkLBracket:
		p.next()
		f, err := p.parseS4uOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkRBracket); err != nil {
			return nil, err
		}
		return &Atom{ID: -1, Formula: f}, nil

	case tkClass:
		// A bare class at the temporal level is an atom of its own:
		// shorthand for the class's non-emptiness.
		p.next()
		return &Atom{ID: -1, Formula: &ClassFormula{Name: t.text}}, nil
	}

	return nil, p.fail("an atom, class, or group")
}

// parseRange parses {m}, {m,}, or {m,n}. Requires m <= n.
func (p *parser) parseRange() (*Repeat, error) {
	if _, err := p.expect(tkLBrace); err != nil {
		return nil, err
	}

	mt, err := p.expect(tkInt)
	if err != nil {
		return nil, err
	}
	min, _ := strconv.Atoi(mt.text)

	r := &Repeat{Min: min, Max: min}
	if p.peek().kind == tkComma {
		p.next()
		if p.peek().kind == tkInt {
			nt := p.next()
			max, _ := strconv.Atoi(nt.text)
			if max < min {
				return nil, &SyntaxError{Offset: nt.off, Expected: "an upper bound >= the lower bound", Found: "'" + nt.text + "'"}
			}
			r.Max = max
		} else {
			r.Unbounded = true
			r.Max = 0
		}
	}

	if _, err := p.expect(tkRBrace); err != nil {
		return nil, err
	}
	return r, nil
}

// Spatial-unary grammar: '|' < '&' < unary < primary. A comparator is a
// unary-level production introduced by a function, a number, or a unary
// minus; a leading '(' opens a grouped subformula instead.

func (p *parser) parseS4uOr() (Formula, error) {
	left, err := p.parseS4uAnd()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tkBar {
		p.next()
		right, err := p.parseS4uAnd()
		if err != nil {
			return nil, err
		}
		left = &FOr{L: left, R: right}
	}

	return left, nil
}

func (p *parser) parseS4uAnd() (Formula, error) {
	left, err := p.parseS4uUnary()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tkAmp {
		p.next()
		right, err := p.parseS4uUnary()
		if err != nil {
			return nil, err
		}
		left = &FAnd{L: left, R: right}
	}

	return left, nil
}

func (p *parser) parseS4uUnary() (Formula, error) {
	switch t := p.peek(); t.kind {
	case tkBang:
		p.next()
		f, err := p.parseS4uUnary()
		if err != nil {
			return nil, err
		}
		return &FNot{F: f}, nil

	case tkNonEmpty:
		p.next()
		return p.parseNonEmpty()

	case tkIdent:
		switch t.text {
		case "NE":
			p.next()
			return p.parseNonEmpty()
		case "E", "A":
			if p.peek2().kind == tkLParen {
				return p.parseBinder(t.text)
			}
		}
		return nil, p.fail("a spatial formula")

	case tkFunc, tkInt, tkReal, tkMinus:
		return p.parseCmp()

	case tkLParen:
		p.next()
		f, err := p.parseS4uOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkRParen); err != nil {
			return nil, err
		}
		return f, nil

	case tkClass:
		p.next()
		return &ClassFormula{Name: t.text}, nil
	}

	return nil, p.fail("a spatial formula")
}

// parseNonEmpty parses the operand of NE / <nonempty>: either a bare
// class or a parenthesized set expression.
func (p *parser) parseNonEmpty() (Formula, error) {
	switch t := p.peek(); t.kind {
	case tkClass:
		p.next()
		return &NonEmpty{Set: &SClass{Name: t.text}}, nil

	case tkLParen:
		p.next()
		s, err := p.parseS4Or()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkRParen); err != nil {
			return nil, err
		}
		return &NonEmpty{Set: s}, nil
	}

	return nil, p.fail("a class or parenthesized set expression")
}

// parseBinder parses E(v := set, ...)(body) and the A analogue.
func (p *parser) parseBinder(kw string) (Formula, error) {
	p.next() // the E or A keyword
	if _, err := p.expect(tkLParen); err != nil {
		return nil, err
	}

	var bindings []Binding
	for {
		vt, err := p.expect(tkIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkWalrus); err != nil {
			return nil, err
		}
		set, err := p.parseS4Or()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{Var: vt.text, Set: set})

		if p.peek().kind != tkComma {
			break
		}
		p.next()
	}

	if _, err := p.expect(tkRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(tkLParen); err != nil {
		return nil, err
	}
	body, err := p.parseS4uOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tkRParen); err != nil {
		return nil, err
	}

	if kw == "E" {
		return &Exists{Bindings: bindings, Body: body}, nil
	}
	return &Forall{Bindings: bindings, Body: body}, nil
}

func (p *parser) parseCmp() (Formula, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	var op CmpOp
	switch t := p.peek(); t.kind {
	case tkLt:
		op = CmpLt
	case tkLe:
		op = CmpLe
	case tkGt:
		op = CmpGt
	case tkGe:
		op = CmpGe
	default:
		return nil, p.fail("a comparison operator")
	}
	p.next()

	rhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	return &Cmp{Op: op, L: lhs, R: rhs}, nil
}

// Set grammar: '|' < '&' < '!' < primary.

func (p *parser) parseS4Or() (SetExpr, error) {
	left, err := p.parseS4And()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tkBar {
		p.next()
		right, err := p.parseS4And()
		if err != nil {
			return nil, err
		}
		left = &SOr{L: left, R: right}
	}

	return left, nil
}

func (p *parser) parseS4And() (SetExpr, error) {
	left, err := p.parseS4Unary()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tkAmp {
		p.next()
		right, err := p.parseS4Unary()
		if err != nil {
			return nil, err
		}
		left = &SAnd{L: left, R: right}
	}

	return left, nil
}

func (p *parser) parseS4Unary() (SetExpr, error) {
	switch t := p.peek(); t.kind {
	case tkBang:
		p.next()
		s, err := p.parseS4Unary()
		if err != nil {
			return nil, err
		}
		return &SNot{S: s}, nil

	case tkLParen:
		p.next()
		s, err := p.parseS4Or()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkRParen); err != nil {
			return nil, err
		}
		return s, nil

	case tkClass:
		p.next()
		return &SClass{Name: t.text}, nil

	case tkIdent:
		p.next()
		return &SVar{Name: t.text}, nil
	}

	return nil, p.fail("a set expression")
}

// Numeric term grammar: '+'/'-' < '*'/'/' < unary minus < primary.

func (p *parser) parseTerm() (Term, error) {
	left, err := p.parseTermFactor()
	if err != nil {
		return nil, err
	}

	for {
		var op ArithOp
		switch p.peek().kind {
		case tkPlus:
			op = OpAdd
		case tkMinus:
			op = OpSub
		default:
			return left, nil
		}
		p.next()

		right, err := p.parseTermFactor()
		if err != nil {
			return nil, err
		}
		left = &Arith{Op: op, L: left, R: right}
	}
}

func (p *parser) parseTermFactor() (Term, error) {
	left, err := p.parseTermUnary()
	if err != nil {
		return nil, err
	}

	for {
		var op ArithOp
		switch p.peek().kind {
		case tkStar:
			op = OpMul
		case tkSlash:
			op = OpDiv
		default:
			return left, nil
		}
		p.next()

		right, err := p.parseTermUnary()
		if err != nil {
			return nil, err
		}
		left = &Arith{Op: op, L: left, R: right}
	}
}

func (p *parser) parseTermUnary() (Term, error) {
	if p.peek().kind == tkMinus {
		p.next()
		t, err := p.parseTermUnary()
		if err != nil {
			return nil, err
		}
		return &Neg{T: t}, nil
	}
	return p.parseTermPrimary()
}

func (p *parser) parseTermPrimary() (Term, error) {
	switch t := p.peek(); t.kind {
	case tkLParen:
		p.next()
		inner, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tkRParen); err != nil {
			return nil, err
		}
		return inner, nil

	case tkInt, tkReal:
		p.next()
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, &SyntaxError{Offset: t.off, Expected: "a number", Found: "'" + t.text + "'"}
		}
		return &Num{V: v}, nil

	case tkFunc:
		return p.parseFunc()
	}

	return nil, p.fail("a numeric term")
}

func (p *parser) parseFunc() (Term, error) {
	ft := p.next()

	if _, err := p.expect(tkLParen); err != nil {
		return nil, err
	}
	first, err := p.parseS4Or()
	if err != nil {
		return nil, err
	}

	var second SetExpr
	if p.peek().kind == tkComma {
		p.next()
		second, err = p.parseS4Or()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(tkRParen); err != nil {
		return nil, err
	}

	switch ft.text {
	case "area":
		if second == nil {
			return &FnArea{Set: first}, nil
		}
	case "x":
		if second == nil {
			return &FnX{Set: first}, nil
		}
	case "y":
		if second == nil {
			return &FnY{Set: first}, nil
		}
	case "dist":
		if second == nil {
			return &FnDist1{Set: first}, nil
		}
		return &FnDist2{A: first, B: second}, nil
	default:
		return nil, &SyntaxError{Offset: ft.off, Expected: "one of @area, @x, @y, @dist", Found: "'@" + ft.text + "'"}
	}

	return nil, &SyntaxError{Offset: ft.off, Expected: "a single set argument to @" + ft.text, Found: "two arguments"}
}
