package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenUnknownSystem(t *testing.T) {
	_, err := Open("martian", GlobalScope(), nil, nil)
	require.ErrorIs(t, err, ErrSystemNotFound)
}

func TestOpenCaseInsensitive(t *testing.T) {
	reg, err := Open("si", GlobalScope(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "SI", reg.System)
}

func TestSystemsSorted(t *testing.T) {
	names := Systems()
	require.NotEmpty(t, names)
	assert.Contains(t, names, "SI")
	assert.Contains(t, names, "US")
	assert.Contains(t, names, "cgs")
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestUnitResolution(t *testing.T) {
	reg := openSI(t)

	meter, err := reg.Unit("meter")
	require.NoError(t, err)
	assert.InDelta(t, 1, meter.Scale, 1e-12)
	assert.Equal(t, "m", meter.Symbol)

	_, err = reg.Unit("cubit")
	require.ErrorIs(t, err, ErrUnitNotFound)
}

func TestUnitAliasResolution(t *testing.T) {
	reg := openSI(t)

	bySec, err := reg.Unit("sec")
	require.NoError(t, err)
	second, err := reg.Unit("second")
	require.NoError(t, err)
	assert.Same(t, second, bySec)
}

func TestPrefixedUnitScale(t *testing.T) {
	reg := openSI(t)

	km, err := reg.Unit("kilometer")
	require.NoError(t, err)
	meter, err := reg.Unit("meter")
	require.NoError(t, err)

	assert.InDelta(t, 1000, km.Scale/meter.Scale, 1e-9)
	assert.True(t, km.Vector.Equal(meter.Vector))
	assert.Equal(t, "km", km.Symbol)
}

func TestKilogramIsThousandGrams(t *testing.T) {
	reg := openSI(t)

	kg, err := reg.Unit("kilogram")
	require.NoError(t, err)
	gram, err := reg.Unit("gram")
	require.NoError(t, err)
	assert.InDelta(t, 1000, kg.Scale/gram.Scale, 1e-9)
}

func TestDerivedUnitScale(t *testing.T) {
	reg := openSI(t)

	// newton = kilogram * meter / second**2, so its scale is 1000 in
	// gram-based mass units
	newton, err := reg.Unit("newton")
	require.NoError(t, err)
	assert.InDelta(t, 1000, newton.Scale, 1e-9)

	want := Vector{
		"[mass]":   NewRational(1, 1),
		"[length]": NewRational(1, 1),
		"[time]":   NewRational(-2, 1),
	}
	assert.True(t, newton.Vector.Equal(want))
}

func TestDimensionResolution(t *testing.T) {
	reg := openSI(t)

	// reciprocal relation, built from a dimensionless dividend
	freq, err := reg.Dimension("[frequency]")
	require.NoError(t, err)
	assert.True(t, freq.Vector.Equal(Vector{"[time]": NewRational(-1, 1)}))

	energy, err := reg.Dimension("[energy]")
	require.NoError(t, err)
	want := Vector{
		"[mass]":   NewRational(1, 1),
		"[length]": NewRational(2, 1),
		"[time]":   NewRational(-2, 1),
	}
	assert.True(t, energy.Vector.Equal(want))

	_, err = reg.Dimension("[bogus]")
	require.ErrorIs(t, err, ErrDimensionNotFound)
}

func TestPseudoDimensionsAlwaysResolve(t *testing.T) {
	reg := openSI(t)

	compounded, err := reg.Dimension(DimCompounded)
	require.NoError(t, err)
	assert.Equal(t, DimCompounded, compounded.Code)

	custom, err := reg.Dimension(DimCustom)
	require.NoError(t, err)
	assert.Equal(t, DimCustom, custom.Code)
}

func TestCompatibleUnits(t *testing.T) {
	reg := openSI(t)

	compatible, err := reg.CompatibleUnits("meter")
	require.NoError(t, err)

	codes := make(map[string]bool)
	for _, def := range compatible {
		codes[def.Code] = true
	}
	assert.True(t, codes["meter"], "a unit is always compatible with itself")
	assert.True(t, codes["kilometer"])
	assert.True(t, codes["millimeter"])
	assert.False(t, codes["gram"])

	_, err = reg.CompatibleUnits("cubit")
	require.ErrorIs(t, err, ErrUnitNotFound)
}

func TestUnitsForDimension(t *testing.T) {
	reg := openSI(t)

	masses, err := reg.UnitsForDimension("[mass]")
	require.NoError(t, err)
	codes := make(map[string]bool)
	for _, def := range masses {
		codes[def.Code] = true
	}
	assert.True(t, codes["gram"])
	assert.True(t, codes["kilogram"])
	assert.True(t, codes["tonne"])

	_, err = reg.UnitsForDimension("[bogus]")
	require.ErrorIs(t, err, ErrDimensionNotFound)
}

func TestDimensionsForUnit(t *testing.T) {
	reg := openSI(t)

	dims, err := reg.DimensionsForUnit("joule")
	require.NoError(t, err)
	require.Len(t, dims, 1)
	assert.Equal(t, "[energy]", dims[0].Code)
}

func TestDimensionsForUnitFallsBackToCompounded(t *testing.T) {
	reg := openSI(t)

	// meter**4 matches no registered dimension
	_, err := reg.AddCustomUnit("hyper", "meter ** 4", "hy", "", "", UserScope("u1"))
	require.NoError(t, err)

	dims, err := reg.DimensionsForUnit("hyper")
	require.NoError(t, err)
	require.Len(t, dims, 1)
	assert.Equal(t, DimCompounded, dims[0].Code)

	compounded, err := reg.UnitsForDimension(DimCompounded)
	require.NoError(t, err)
	require.Len(t, compounded, 1)
	assert.Equal(t, "hyper", compounded[0].Code)
}

func TestAdditionalDefinitionsLoad(t *testing.T) {
	reg := openSI(t)

	wh, err := reg.Unit("watt_hour")
	require.NoError(t, err)
	joule, err := reg.Unit("joule")
	require.NoError(t, err)
	assert.InDelta(t, 3600, wh.Scale/joule.Scale, 1e-9)
	assert.Equal(t, OriginAdditional, wh.Origin.Kind)

	heating, err := reg.Dimension("[massic_heating_value]")
	require.NoError(t, err)
	want := Vector{"[length]": NewRational(2, 1), "[time]": NewRational(-2, 1)}
	assert.True(t, heating.Vector.Equal(want))
}

func TestAdditionalDefinitionsScopedToSystems(t *testing.T) {
	reg, err := Open("US", GlobalScope(), nil, nil)
	require.NoError(t, err)

	_, err = reg.Unit("watt_hour")
	require.ErrorIs(t, err, ErrUnitNotFound)
}

func TestBaseUnit(t *testing.T) {
	reg := openSI(t)

	mass := reg.BaseUnit("[mass]")
	require.NotNil(t, mass)
	assert.Equal(t, "kilogram", mass.Code)

	assert.Nil(t, reg.BaseUnit("[viscosity]"))
}

func TestOpenWithCustomRows(t *testing.T) {
	owner := UserScope("u1")
	rows := []CustomRow{
		{IsDimension: true, Code: "[fuel_economy]", Name: "Fuel economy",
			Relation: "[length] / [volume]", Owner: owner},
		{Code: "league", Relation: "4828 meter", Symbol: "lea", Owner: owner},
	}

	reg, err := Open("SI", owner, rows, nil)
	require.NoError(t, err)

	league, err := reg.Unit("league")
	require.NoError(t, err)
	assert.Equal(t, OriginCustom, league.Origin.Kind)
	assert.InDelta(t, 4828, league.Scale, 1e-9)

	_, err = reg.Dimension("[fuel_economy]")
	require.NoError(t, err)
}

func TestOpenSkipsRowsOutsideScope(t *testing.T) {
	rows := []CustomRow{
		{Code: "league", Relation: "4828 meter", Owner: UserScope("u1")},
	}

	reg, err := Open("SI", UserScope("u2"), rows, nil)
	require.NoError(t, err)

	_, err = reg.Unit("league")
	require.ErrorIs(t, err, ErrUnitNotFound)
}

func TestOpenSkipsBadCustomRows(t *testing.T) {
	owner := UserScope("u1")
	rows := []CustomRow{
		{Code: "broken", Relation: "2 nonexistent", Owner: owner},
		{Code: "league", Relation: "4828 meter", Owner: owner},
	}

	reg, err := Open("SI", owner, rows, nil)
	require.NoError(t, err)

	_, err = reg.Unit("broken")
	require.ErrorIs(t, err, ErrUnitNotFound)
	_, err = reg.Unit("league")
	require.NoError(t, err)
}

func TestUnitsIncludesPrefixedSynthetics(t *testing.T) {
	reg := openSI(t)

	codes := make(map[string]bool)
	for _, def := range reg.Units() {
		codes[def.Code] = true
	}
	assert.True(t, codes["meter"])
	assert.True(t, codes["centimeter"])
	assert.True(t, codes["megawatt"])
	assert.True(t, codes["gigahertz"])
}

func TestCgsMeterIsDerived(t *testing.T) {
	reg, err := Open("cgs", GlobalScope(), nil, nil)
	require.NoError(t, err)

	meter, err := reg.Unit("meter")
	require.NoError(t, err)
	cm, err := reg.Unit("centimeter")
	require.NoError(t, err)
	assert.InDelta(t, 100, meter.Scale/cm.Scale, 1e-9)
}
