package units

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rational is an exact exponent. It is always kept reduced with Den > 0 so
// equal values compare equal structurally.
type Rational struct {
	Num int `json:"num"`
	Den int `json:"den"`
}

// NewRational builds a reduced rational. A zero denominator panics: exponents
// only ever come from parsed literals validated upstream.
func NewRational(num, den int) Rational {
	if den == 0 {
		panic("units: rational with zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	if g > 1 {
		num /= g
		den /= g
	}
	return Rational{Num: num, Den: den}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (r Rational) IsZero() bool { return r.Num == 0 }

func (r Rational) Add(o Rational) Rational {
	return NewRational(r.Num*o.Den+o.Num*r.Den, r.Den*o.Den)
}

func (r Rational) Neg() Rational { return Rational{Num: -r.Num, Den: r.Den} }

func (r Rational) Mul(o Rational) Rational {
	return NewRational(r.Num*o.Num, r.Den*o.Den)
}

func (r Rational) Float64() float64 { return float64(r.Num) / float64(r.Den) }

func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.Itoa(r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Vector maps base dimension codes to rational exponents. Zero exponents are
// elided, so two units are convertible iff their vectors are Equal. Vectors
// are treated as immutable values: operations return fresh maps.
type Vector map[string]Rational

// Dimensionless reports whether every exponent is zero.
func (v Vector) Dimensionless() bool { return len(v) == 0 }

func (v Vector) clone() Vector {
	out := make(Vector, len(v))
	for code, exp := range v {
		out[code] = exp
	}
	return out
}

// at returns the exponent for code, zero when the component is absent.
func (v Vector) at(code string) Rational {
	if exp, ok := v[code]; ok {
		return exp
	}
	return Rational{Num: 0, Den: 1}
}

// Mul returns the component-wise sum of exponents.
func (v Vector) Mul(o Vector) Vector {
	out := v.clone()
	for code, exp := range o {
		sum := out.at(code).Add(exp)
		if sum.IsZero() {
			delete(out, code)
		} else {
			out[code] = sum
		}
	}
	return out
}

// Div returns the component-wise difference of exponents.
func (v Vector) Div(o Vector) Vector {
	out := v.clone()
	for code, exp := range o {
		sum := out.at(code).Add(exp.Neg())
		if sum.IsZero() {
			delete(out, code)
		} else {
			out[code] = sum
		}
	}
	return out
}

// Pow scales every exponent by n. Pow by zero yields the dimensionless
// vector.
func (v Vector) Pow(n Rational) Vector {
	if n.IsZero() {
		return Vector{}
	}
	out := make(Vector, len(v))
	for code, exp := range v {
		p := exp.Mul(n)
		if !p.IsZero() {
			out[code] = p
		}
	}
	return out
}

// Equal compares reduced vectors structurally.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for code, exp := range v {
		if o[code] != exp {
			return false
		}
	}
	return true
}

// Key produces the canonical form used for cache lookups: components sorted
// by code. The empty vector maps to the empty string.
func (v Vector) Key() string {
	if len(v) == 0 {
		return ""
	}
	codes := make([]string, 0, len(v))
	for code := range v {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	var b strings.Builder
	for i, code := range codes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(code)
		b.WriteByte('^')
		b.WriteString(v[code].String())
	}
	return b.String()
}

// String renders the vector for display, e.g. "[length] / [time] ** 2".
func (v Vector) String() string {
	if len(v) == 0 {
		return "dimensionless"
	}
	codes := make([]string, 0, len(v))
	for code := range v {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	var num, den []string
	for _, code := range codes {
		exp := v[code]
		part := code
		if exp.Num < 0 {
			if e := exp.Neg(); e != (Rational{Num: 1, Den: 1}) {
				part += " ** " + e.String()
			}
			den = append(den, part)
			continue
		}
		if exp != (Rational{Num: 1, Den: 1}) {
			part += " ** " + exp.String()
		}
		num = append(num, part)
	}
	out := strings.Join(num, " * ")
	if out == "" {
		out = "1"
	}
	if len(den) > 0 {
		out += " / " + strings.Join(den, " / ")
	}
	return out
}
