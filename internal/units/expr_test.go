package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSI(t *testing.T) *Registry {
	t.Helper()
	reg, err := Open("SI", GlobalScope(), nil, nil)
	require.NoError(t, err)
	return reg
}

func TestParseQuantityScalarTimesUnit(t *testing.T) {
	reg := openSI(t)

	q, err := parseQuantity(reg, "1000 gram")
	require.NoError(t, err)
	assert.InDelta(t, 1000, q.factor, 1e-9)
	assert.True(t, q.vector.Equal(Vector{"[mass]": NewRational(1, 1)}))
}

func TestParseQuantityCompound(t *testing.T) {
	reg := openSI(t)

	q, err := parseQuantity(reg, "kilogram * meter / second ** 2")
	require.NoError(t, err)
	assert.InDelta(t, 1000, q.factor, 1e-9)
	want := Vector{
		"[mass]":   NewRational(1, 1),
		"[length]": NewRational(1, 1),
		"[time]":   NewRational(-2, 1),
	}
	assert.True(t, q.vector.Equal(want))
}

func TestParseQuantityNegativeExponent(t *testing.T) {
	reg := openSI(t)

	q, err := parseQuantity(reg, "meter * second ** -2")
	require.NoError(t, err)
	want := Vector{"[length]": NewRational(1, 1), "[time]": NewRational(-2, 1)}
	assert.True(t, q.vector.Equal(want))
}

func TestParseQuantityFractionalExponents(t *testing.T) {
	reg := openSI(t)

	ratio, err := parseQuantity(reg, "meter ** (1/2)")
	require.NoError(t, err)
	decimal, err := parseQuantity(reg, "meter ** 0.5")
	require.NoError(t, err)

	assert.True(t, ratio.vector.Equal(decimal.vector))
	assert.True(t, ratio.vector.Equal(Vector{"[length]": NewRational(1, 2)}))
}

func TestParseQuantityCaretPower(t *testing.T) {
	reg := openSI(t)

	caret, err := parseQuantity(reg, "meter ^ 2")
	require.NoError(t, err)
	star, err := parseQuantity(reg, "meter ** 2")
	require.NoError(t, err)
	assert.True(t, caret.vector.Equal(star.vector))
}

func TestParseQuantityDimensionRefs(t *testing.T) {
	reg := openSI(t)

	q, err := parseQuantity(reg, "[energy] / [mass]")
	require.NoError(t, err)
	assert.InDelta(t, 1, q.factor, 1e-9)
	want := Vector{"[length]": NewRational(2, 1), "[time]": NewRational(-2, 1)}
	assert.True(t, q.vector.Equal(want))
}

func TestParseQuantityJuxtaposition(t *testing.T) {
	reg := openSI(t)

	spaced, err := parseQuantity(reg, "12 meter second")
	require.NoError(t, err)
	explicit, err := parseQuantity(reg, "12 * meter * second")
	require.NoError(t, err)

	assert.InDelta(t, explicit.factor, spaced.factor, 1e-9)
	assert.True(t, spaced.vector.Equal(explicit.vector))
}

func TestParseQuantityScientificNotation(t *testing.T) {
	reg := openSI(t)

	q, err := parseQuantity(reg, "1.5e3 meter")
	require.NoError(t, err)
	assert.InDelta(t, 1500, q.factor, 1e-9)
}

func TestParseQuantityPowerPrecedence(t *testing.T) {
	reg := openSI(t)

	// power binds tighter than division: meter / second ** 2 is acceleration
	q, err := parseQuantity(reg, "meter / second ** 2")
	require.NoError(t, err)
	want := Vector{"[length]": NewRational(1, 1), "[time]": NewRational(-2, 1)}
	assert.True(t, q.vector.Equal(want))
}

func TestParseQuantityErrors(t *testing.T) {
	reg := openSI(t)

	tests := []struct {
		name string
		expr string
		want error
	}{
		{name: "unknown unit", expr: "2 bogus", want: ErrUnitNotFound},
		{name: "unknown dimension", expr: "[bogus]", want: ErrDimensionNotFound},
		{name: "unbalanced bracket", expr: "[length", want: ErrParse},
		{name: "empty expression", expr: "   ", want: ErrParse},
		{name: "trailing garbage", expr: "meter )", want: ErrParse},
		{name: "missing paren", expr: "(meter * second", want: ErrParse},
		{name: "division by zero", expr: "meter / 0", want: ErrParse},
		{name: "non numeric exponent", expr: "meter ** watt", want: ErrParse},
		{name: "zero exponent denominator", expr: "meter ** (1/0)", want: ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseQuantity(reg, tt.expr)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
