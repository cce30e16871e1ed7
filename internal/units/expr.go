package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// quantity is the result of evaluating a relation expression against a
// registry: a scalar factor and a dimension vector. "1000 gram" evaluates to
// factor 1000 with the mass vector; "[energy]/[mass]" to factor 1 with the
// corresponding vector.
type quantity struct {
	factor float64
	vector Vector
}

// exprResolver supplies unit and dimension lookups during parsing. Parsing is
// always performed against a specific registry, never standalone.
type exprResolver interface {
	lookupUnit(code string) (*UnitDefinition, bool)
	lookupDimension(code string) (*DimensionDefinition, bool)
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokBracket // [length]
	tokMul
	tokDiv
	tokPow
	tokLParen
	tokRParen
	tokMinus
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	c := l.input[l.pos]
	switch {
	case c == '*':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '*' {
			l.pos += 2
			return token{kind: tokPow, text: "**", pos: start}, nil
		}
		l.pos++
		return token{kind: tokMul, text: "*", pos: start}, nil
	case c == '^':
		l.pos++
		return token{kind: tokPow, text: "^", pos: start}, nil
	case c == '/':
		l.pos++
		return token{kind: tokDiv, text: "/", pos: start}, nil
	case c == '-':
		l.pos++
		return token{kind: tokMinus, text: "-", pos: start}, nil
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == '[':
		end := strings.IndexByte(l.input[l.pos:], ']')
		if end < 0 {
			return token{}, fmt.Errorf("%w: unbalanced bracket at %d", ErrParse, start)
		}
		text := l.input[l.pos : l.pos+end+1]
		if !isIdent(text[1 : len(text)-1]) {
			return token{}, fmt.Errorf("%w: invalid dimension code %q", ErrParse, text)
		}
		l.pos += end + 1
		return token{kind: tokBracket, text: text, pos: start}, nil
	case c >= '0' && c <= '9' || c == '.':
		for l.pos < len(l.input) && isNumberChar(l.input, l.pos) {
			l.pos++
		}
		return token{kind: tokNumber, text: l.input[start:l.pos], pos: start}, nil
	case isIdentStart(c):
		for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.input[start:l.pos], pos: start}, nil
	default:
		return token{}, fmt.Errorf("%w: unexpected character %q at %d", ErrParse, string(c), start)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

func isNumberChar(s string, i int) bool {
	c := s[i]
	if c >= '0' && c <= '9' || c == '.' {
		return true
	}
	if c == 'e' || c == 'E' {
		// exponent marker only when followed by a digit or sign
		if i+1 < len(s) {
			n := s[i+1]
			return n >= '0' && n <= '9' || n == '+' || n == '-'
		}
		return false
	}
	if (c == '+' || c == '-') && i > 0 {
		p := s[i-1]
		return p == 'e' || p == 'E'
	}
	return false
}

// parser implements the relation grammar with standard precedence: power
// binds tighter than multiply/divide, same precedence associates left to
// right. Juxtaposition ("1000 gram") multiplies.
type parser struct {
	lex  *lexer
	tok  token
	res  exprResolver
	expr string
}

func newParser(res exprResolver, expr string) (*parser, error) {
	p := &parser{lex: &lexer{input: expr}, res: res, expr: expr}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// parseQuantity evaluates expr to a factor and a vector. Unknown unit codes
// surface ErrUnitNotFound, unknown bracketed codes ErrDimensionNotFound, and
// structural problems ErrParse.
func parseQuantity(res exprResolver, expr string) (quantity, error) {
	if strings.TrimSpace(expr) == "" {
		return quantity{}, fmt.Errorf("%w: empty expression", ErrParse)
	}
	p, err := newParser(res, expr)
	if err != nil {
		return quantity{}, err
	}
	q, err := p.parseExpr()
	if err != nil {
		return quantity{}, err
	}
	if p.tok.kind != tokEOF {
		return quantity{}, fmt.Errorf("%w: unexpected %q at %d", ErrParse, p.tok.text, p.tok.pos)
	}
	return q, nil
}

func (p *parser) parseExpr() (quantity, error) {
	left, err := p.parseUnary()
	if err != nil {
		return quantity{}, err
	}
	for {
		switch p.tok.kind {
		case tokMul:
			if err := p.advance(); err != nil {
				return quantity{}, err
			}
			right, err := p.parseUnary()
			if err != nil {
				return quantity{}, err
			}
			left = quantity{factor: left.factor * right.factor, vector: left.vector.Mul(right.vector)}
		case tokDiv:
			if err := p.advance(); err != nil {
				return quantity{}, err
			}
			right, err := p.parseUnary()
			if err != nil {
				return quantity{}, err
			}
			if right.factor == 0 {
				return quantity{}, fmt.Errorf("%w: division by zero", ErrParse)
			}
			left = quantity{factor: left.factor / right.factor, vector: left.vector.Div(right.vector)}
		case tokNumber, tokIdent, tokBracket, tokLParen:
			// juxtaposition multiplies: "1000 gram", "12 kg m"
			right, err := p.parseUnary()
			if err != nil {
				return quantity{}, err
			}
			left = quantity{factor: left.factor * right.factor, vector: left.vector.Mul(right.vector)}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (quantity, error) {
	base, err := p.parseAtom()
	if err != nil {
		return quantity{}, err
	}
	for p.tok.kind == tokPow {
		if err := p.advance(); err != nil {
			return quantity{}, err
		}
		exp, err := p.parseExponent()
		if err != nil {
			return quantity{}, err
		}
		base = quantity{
			factor: math.Pow(base.factor, exp.Float64()),
			vector: base.vector.Pow(exp),
		}
	}
	return base, nil
}

func (p *parser) parseAtom() (quantity, error) {
	switch p.tok.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return quantity{}, fmt.Errorf("%w: bad number %q", ErrParse, p.tok.text)
		}
		if err := p.advance(); err != nil {
			return quantity{}, err
		}
		return quantity{factor: f, vector: Vector{}}, nil
	case tokIdent:
		code := p.tok.text
		def, ok := p.res.lookupUnit(code)
		if !ok {
			return quantity{}, fmt.Errorf("%w: %q", ErrUnitNotFound, code)
		}
		if err := p.advance(); err != nil {
			return quantity{}, err
		}
		return quantity{factor: def.Scale, vector: def.Vector}, nil
	case tokBracket:
		code := p.tok.text
		def, ok := p.res.lookupDimension(code)
		if !ok {
			return quantity{}, fmt.Errorf("%w: %q", ErrDimensionNotFound, code)
		}
		if err := p.advance(); err != nil {
			return quantity{}, err
		}
		return quantity{factor: 1, vector: def.Vector}, nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return quantity{}, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return quantity{}, err
		}
		if p.tok.kind != tokRParen {
			return quantity{}, fmt.Errorf("%w: missing closing parenthesis at %d", ErrParse, p.tok.pos)
		}
		if err := p.advance(); err != nil {
			return quantity{}, err
		}
		return inner, nil
	default:
		return quantity{}, fmt.Errorf("%w: unexpected %q at %d", ErrParse, p.tok.text, p.tok.pos)
	}
}

// parseExponent accepts an optionally signed integer or decimal literal, or a
// parenthesized integer ratio like (1/2). Decimals convert to exact
// rationals: 1.5 becomes 3/2.
func (p *parser) parseExponent() (Rational, error) {
	neg := false
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return Rational{}, err
		}
		r, err := p.parseExponent()
		if err != nil {
			return Rational{}, err
		}
		if p.tok.kind == tokDiv {
			if err := p.advance(); err != nil {
				return Rational{}, err
			}
			d, err := p.parseExponent()
			if err != nil {
				return Rational{}, err
			}
			if d.Num == 0 {
				return Rational{}, fmt.Errorf("%w: zero exponent denominator", ErrParse)
			}
			r = NewRational(r.Num*d.Den, r.Den*d.Num)
		}
		if p.tok.kind != tokRParen {
			return Rational{}, fmt.Errorf("%w: missing closing parenthesis in exponent", ErrParse)
		}
		if err := p.advance(); err != nil {
			return Rational{}, err
		}
		return r, nil
	}
	if p.tok.kind == tokMinus {
		neg = true
		if err := p.advance(); err != nil {
			return Rational{}, err
		}
	}
	if p.tok.kind != tokNumber {
		return Rational{}, fmt.Errorf("%w: exponent must be numeric, got %q", ErrParse, p.tok.text)
	}
	r, err := decimalToRational(p.tok.text)
	if err != nil {
		return Rational{}, err
	}
	if err := p.advance(); err != nil {
		return Rational{}, err
	}
	if neg {
		r = r.Neg()
	}
	return r, nil
}

func decimalToRational(text string) (Rational, error) {
	neg := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(text, "-")
	whole, frac, hasFrac := strings.Cut(text, ".")
	if whole == "" {
		whole = "0"
	}
	num, err := strconv.Atoi(whole)
	if err != nil {
		return Rational{}, fmt.Errorf("%w: bad exponent %q", ErrParse, text)
	}
	den := 1
	if hasFrac {
		for _, c := range frac {
			if c < '0' || c > '9' {
				return Rational{}, fmt.Errorf("%w: bad exponent %q", ErrParse, text)
			}
			num = num*10 + int(c-'0')
			den *= 10
		}
	}
	if neg {
		num = -num
	}
	return NewRational(num, den), nil
}
