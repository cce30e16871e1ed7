package units

import "sort"

// The builtin catalog is a set of read-only templates. Registries copy
// definitions out of it at build time and never mutate it in place.

type dimensionSpec struct {
	code     string
	name     string
	relation string // empty for base dimensions
}

type unitSpec struct {
	code      string
	dimension string // reference unit for this dimension when relation is empty
	relation  string
	aliases   []string
}

type systemSpec struct {
	name       string
	dimensions []dimensionSpec
	units      []unitSpec
	baseUnits  map[string]string // dimension code -> display base unit code
}

var baseDimensions = []dimensionSpec{
	{code: "[length]", name: "Length"},
	{code: "[mass]", name: "Mass"},
	{code: "[time]", name: "Time"},
	{code: "[current]", name: "Electric current"},
	{code: "[temperature]", name: "Temperature"},
	{code: "[substance]", name: "Amount of substance"},
	{code: "[luminosity]", name: "Luminous intensity"},
}

// Pseudo-dimension codes. Both resolve without a registry entry:
// DimCompounded is the catch-all for units whose vector matches no registered
// dimension, DimCustom groups owner-scoped units not yet attached to a named
// dimension.
const (
	DimCompounded = "[compounded]"
	DimCustom     = "[custom]"
)

var mechanicalDimensions = []dimensionSpec{
	{code: "[area]", name: "Area", relation: "[length] ** 2"},
	{code: "[volume]", name: "Volume", relation: "[length] ** 3"},
	{code: "[frequency]", name: "Frequency", relation: "1 / [time]"},
	{code: "[speed]", name: "Speed", relation: "[length] / [time]"},
	{code: "[acceleration]", name: "Acceleration", relation: "[speed] / [time]"},
	{code: "[force]", name: "Force", relation: "[mass] * [acceleration]"},
	{code: "[energy]", name: "Energy", relation: "[force] * [length]"},
	{code: "[power]", name: "Power", relation: "[energy] / [time]"},
	{code: "[pressure]", name: "Pressure", relation: "[force] / [area]"},
}

var electricalDimensions = []dimensionSpec{
	{code: "[charge]", name: "Electric charge", relation: "[current] * [time]"},
	{code: "[voltage]", name: "Voltage", relation: "[power] / [current]"},
	{code: "[resistance]", name: "Electric resistance", relation: "[voltage] / [current]"},
	{code: "[capacitance]", name: "Capacitance", relation: "[charge] / [voltage]"},
}

var systemSpecs = []systemSpec{
	{
		name: "SI",
		dimensions: concat(baseDimensions, mechanicalDimensions,
			electricalDimensions),
		units: []unitSpec{
			{code: "meter", dimension: "[length]"},
			{code: "gram", dimension: "[mass]"},
			{code: "second", dimension: "[time]", aliases: []string{"sec"}},
			{code: "ampere", dimension: "[current]", aliases: []string{"amp"}},
			{code: "kelvin", dimension: "[temperature]"},
			{code: "mole", dimension: "[substance]"},
			{code: "candela", dimension: "[luminosity]"},
			{code: "hertz", relation: "1 / second"},
			{code: "newton", relation: "kilogram * meter / second ** 2"},
			{code: "pascal", relation: "newton / meter ** 2"},
			{code: "joule", relation: "newton * meter"},
			{code: "watt", relation: "joule / second"},
			{code: "coulomb", relation: "ampere * second"},
			{code: "volt", relation: "watt / ampere"},
			{code: "ohm", relation: "volt / ampere"},
			{code: "farad", relation: "coulomb / volt"},
			{code: "liter", relation: "0.001 meter ** 3", aliases: []string{"litre"}},
			{code: "hectare", relation: "10000 meter ** 2"},
			{code: "tonne", relation: "1000000 gram", aliases: []string{"metric_ton"}},
			{code: "minute", relation: "60 second"},
			{code: "hour", relation: "3600 second"},
			{code: "day", relation: "86400 second"},
		},
		baseUnits: map[string]string{
			"[length]": "meter", "[mass]": "kilogram", "[time]": "second",
			"[current]": "ampere", "[temperature]": "kelvin",
			"[substance]": "mole", "[luminosity]": "candela",
			"[force]": "newton", "[energy]": "joule", "[power]": "watt",
			"[pressure]": "pascal", "[frequency]": "hertz",
		},
	},
	{
		name:       "mks",
		dimensions: concat(baseDimensions, mechanicalDimensions),
		units: []unitSpec{
			{code: "meter", dimension: "[length]"},
			{code: "gram", dimension: "[mass]"},
			{code: "second", dimension: "[time]"},
			{code: "kelvin", dimension: "[temperature]"},
			{code: "newton", relation: "kilogram * meter / second ** 2"},
			{code: "joule", relation: "newton * meter"},
			{code: "watt", relation: "joule / second"},
			{code: "pascal", relation: "newton / meter ** 2"},
			{code: "minute", relation: "60 second"},
			{code: "hour", relation: "3600 second"},
		},
		baseUnits: map[string]string{
			"[length]": "meter", "[mass]": "kilogram", "[time]": "second",
			"[temperature]": "kelvin",
		},
	},
	{
		name: "cgs",
		dimensions: append(concat(baseDimensions, mechanicalDimensions),
			dimensionSpec{code: "[viscosity]", name: "Dynamic viscosity",
				relation: "[pressure] * [time]"}),
		units: []unitSpec{
			{code: "centimeter", dimension: "[length]"},
			{code: "gram", dimension: "[mass]"},
			{code: "second", dimension: "[time]"},
			{code: "kelvin", dimension: "[temperature]"},
			{code: "meter", relation: "100 centimeter"},
			{code: "dyne", relation: "gram * centimeter / second ** 2"},
			{code: "erg", relation: "dyne * centimeter"},
			{code: "barye", relation: "dyne / centimeter ** 2"},
			{code: "gal", relation: "centimeter / second ** 2"},
			{code: "poise", relation: "gram / centimeter / second"},
		},
		baseUnits: map[string]string{
			"[length]": "centimeter", "[mass]": "gram", "[time]": "second",
			"[force]": "dyne", "[energy]": "erg", "[pressure]": "barye",
		},
	},
	{
		name: "US",
		dimensions: concat(baseDimensions, []dimensionSpec{
			{code: "[area]", name: "Area", relation: "[length] ** 2"},
			{code: "[volume]", name: "Volume", relation: "[length] ** 3"},
			{code: "[speed]", name: "Speed", relation: "[length] / [time]"},
		}),
		units: []unitSpec{
			{code: "foot", dimension: "[length]", aliases: []string{"feet"}},
			{code: "pound", dimension: "[mass]", aliases: []string{"lb"}},
			{code: "second", dimension: "[time]"},
			{code: "inch", relation: "foot / 12"},
			{code: "yard", relation: "3 foot"},
			{code: "mile", relation: "5280 foot"},
			{code: "ounce", relation: "pound / 16"},
			{code: "ton", relation: "2000 pound", aliases: []string{"short_ton"}},
			{code: "minute", relation: "60 second"},
			{code: "hour", relation: "3600 second"},
			{code: "acre", relation: "43560 foot ** 2"},
			{code: "gallon", relation: "231 inch ** 3"},
			{code: "quart", relation: "gallon / 4"},
			{code: "pint", relation: "gallon / 8"},
			{code: "cup", relation: "gallon / 16"},
			{code: "fluid_ounce", relation: "gallon / 128"},
			{code: "mph", relation: "mile / hour"},
		},
		baseUnits: map[string]string{
			"[length]": "yard", "[mass]": "pound", "[time]": "second",
			"[volume]": "gallon",
		},
	},
	{
		name: "imperial",
		dimensions: concat(baseDimensions, []dimensionSpec{
			{code: "[area]", name: "Area", relation: "[length] ** 2"},
			{code: "[volume]", name: "Volume", relation: "[length] ** 3"},
			{code: "[speed]", name: "Speed", relation: "[length] / [time]"},
		}),
		units: []unitSpec{
			{code: "foot", dimension: "[length]", aliases: []string{"feet"}},
			{code: "pound", dimension: "[mass]", aliases: []string{"lb"}},
			{code: "second", dimension: "[time]"},
			{code: "inch", relation: "foot / 12"},
			{code: "yard", relation: "3 foot"},
			{code: "mile", relation: "5280 foot"},
			{code: "ounce", relation: "pound / 16"},
			{code: "stone", relation: "14 pound"},
			{code: "minute", relation: "60 second"},
			{code: "hour", relation: "3600 second"},
			{code: "imperial_gallon", relation: "277.42 inch ** 3"},
			{code: "imperial_quart", relation: "imperial_gallon / 4"},
			{code: "imperial_pint", relation: "imperial_gallon / 8"},
			{code: "imperial_fluid_ounce", relation: "imperial_gallon / 160"},
		},
		baseUnits: map[string]string{
			"[length]": "yard", "[mass]": "pound", "[time]": "second",
			"[volume]": "imperial_gallon",
		},
	},
	{
		name: "atomic",
		dimensions: concat(baseDimensions, []dimensionSpec{
			{code: "[speed]", name: "Speed", relation: "[length] / [time]"},
			{code: "[energy]", name: "Energy",
				relation: "[mass] * [length] ** 2 / [time] ** 2"},
			{code: "[charge]", name: "Electric charge",
				relation: "[current] * [time]"},
		}),
		units: []unitSpec{
			{code: "bohr", dimension: "[length]"},
			{code: "electron_mass", dimension: "[mass]"},
			{code: "atomic_unit_of_time", dimension: "[time]"},
			{code: "elementary_charge", dimension: "[charge]"},
			{code: "hartree", relation: "electron_mass * bohr ** 2 / atomic_unit_of_time ** 2"},
			{code: "atomic_unit_of_velocity", relation: "bohr / atomic_unit_of_time"},
		},
		baseUnits: map[string]string{
			"[length]": "bohr", "[mass]": "electron_mass",
			"[time]": "atomic_unit_of_time", "[charge]": "elementary_charge",
			"[energy]": "hartree",
		},
	},
	{
		name: "Planck",
		dimensions: concat(baseDimensions, []dimensionSpec{
			{code: "[energy]", name: "Energy",
				relation: "[mass] * [length] ** 2 / [time] ** 2"},
		}),
		units: []unitSpec{
			{code: "planck_length", dimension: "[length]"},
			{code: "planck_mass", dimension: "[mass]"},
			{code: "planck_time", dimension: "[time]"},
			{code: "planck_temperature", dimension: "[temperature]"},
			{code: "planck_energy", relation: "planck_mass * planck_length ** 2 / planck_time ** 2"},
		},
		baseUnits: map[string]string{
			"[length]": "planck_length", "[mass]": "planck_mass",
			"[time]": "planck_time", "[temperature]": "planck_temperature",
		},
	},
}

// Additional definitions are global, config-driven extensions layered over
// the builtin catalog with skip-on-conflict semantics. A definition whose
// relation does not resolve in a given system is logged and skipped so one
// bad entry cannot break a whole system.
type additionalDimensionDef struct {
	systems  []string
	code     string
	name     string
	relation string
}

type additionalUnitDef struct {
	systems  []string
	code     string
	relation string
	aliases  []string
}

var additionalDimensions = []additionalDimensionDef{
	{systems: []string{"SI", "mks"}, code: "[massic_heating_value]",
		name: "Massic heating value", relation: "[energy] / [mass]"},
	{systems: []string{"SI", "mks"}, code: "[volumic_heating_value]",
		name: "Volumic heating value", relation: "[energy] / [volume]"},
}

var additionalUnits = []additionalUnitDef{
	{systems: []string{"SI"}, code: "watt_hour", relation: "watt * hour",
		aliases: []string{"Wh"}},
	{systems: []string{"SI"}, code: "tonne_of_oil_equivalent",
		relation: "41868000000 joule", aliases: []string{"toe"}},
	{systems: []string{"SI"}, code: "calorie", relation: "4.184 joule"},
}

// extendedDefinitions maps base unit codes to display names and symbols.
// Prefixed codes resolve by stripping the prefix first (see UnitName,
// UnitSymbol).
var extendedDefinitions = map[string]struct {
	Name   string
	Symbol string
}{
	"meter":   {Name: "meter", Symbol: "m"},
	"gram":    {Name: "gram", Symbol: "g"},
	"second":  {Name: "second", Symbol: "s"},
	"ampere":  {Name: "ampere", Symbol: "A"},
	"kelvin":  {Name: "kelvin", Symbol: "K"},
	"mole":    {Name: "mole", Symbol: "mol"},
	"candela": {Name: "candela", Symbol: "cd"},
	"hertz":   {Name: "hertz", Symbol: "Hz"},
	"newton":  {Name: "newton", Symbol: "N"},
	"pascal":  {Name: "pascal", Symbol: "Pa"},
	"joule":   {Name: "joule", Symbol: "J"},
	"watt":    {Name: "watt", Symbol: "W"},
	"coulomb": {Name: "coulomb", Symbol: "C"},
	"volt":    {Name: "volt", Symbol: "V"},
	"ohm":     {Name: "ohm", Symbol: "Ω"},
	"farad":   {Name: "farad", Symbol: "F"},
	"liter":   {Name: "liter", Symbol: "L"},
	"hectare": {Name: "hectare", Symbol: "ha"},
	"tonne":   {Name: "tonne", Symbol: "t"},
	"minute":  {Name: "minute", Symbol: "min"},
	"hour":    {Name: "hour", Symbol: "h"},
	"day":     {Name: "day", Symbol: "d"},

	"centimeter": {Name: "centimeter", Symbol: "cm"},
	"dyne":       {Name: "dyne", Symbol: "dyn"},
	"erg":        {Name: "erg", Symbol: "erg"},
	"barye":      {Name: "barye", Symbol: "Ba"},
	"poise":      {Name: "poise", Symbol: "P"},

	"foot":        {Name: "foot", Symbol: "ft"},
	"inch":        {Name: "inch", Symbol: "in"},
	"yard":        {Name: "yard", Symbol: "yd"},
	"mile":        {Name: "mile", Symbol: "mi"},
	"pound":       {Name: "pound", Symbol: "lb"},
	"ounce":       {Name: "ounce", Symbol: "oz"},
	"ton":         {Name: "ton", Symbol: "tn"},
	"stone":       {Name: "stone", Symbol: "st"},
	"acre":        {Name: "acre", Symbol: "ac"},
	"gallon":      {Name: "gallon", Symbol: "gal"},
	"quart":       {Name: "quart", Symbol: "qt"},
	"pint":        {Name: "pint", Symbol: "pt"},
	"cup":         {Name: "cup", Symbol: "cp"},
	"fluid_ounce": {Name: "fluid ounce", Symbol: "fl oz"},
	"mph":         {Name: "mile per hour", Symbol: "mph"},

	"watt_hour":                {Name: "watt-hour", Symbol: "Wh"},
	"tonne_of_oil_equivalent":  {Name: "tonne of oil equivalent", Symbol: "toe"},
	"calorie":                  {Name: "calorie", Symbol: "cal"},
	"bohr":                     {Name: "bohr radius", Symbol: "a0"},
	"electron_mass":            {Name: "electron mass", Symbol: "mₑ"},
	"atomic_unit_of_time":      {Name: "atomic unit of time", Symbol: "aut"},
	"elementary_charge":        {Name: "elementary charge", Symbol: "e"},
	"hartree":                  {Name: "hartree", Symbol: "Eh"},
	"planck_length":            {Name: "Planck length", Symbol: "lP"},
	"planck_mass":              {Name: "Planck mass", Symbol: "mP"},
	"planck_time":              {Name: "Planck time", Symbol: "tP"},
	"planck_temperature":       {Name: "Planck temperature", Symbol: "TP"},
	"planck_energy":            {Name: "Planck energy", Symbol: "EP"},
	"imperial_gallon":          {Name: "imperial gallon", Symbol: "imp gal"},
	"imperial_quart":           {Name: "imperial quart", Symbol: "imp qt"},
	"imperial_pint":            {Name: "imperial pint", Symbol: "imp pt"},
	"imperial_fluid_ounce":     {Name: "imperial fluid ounce", Symbol: "imp fl oz"},
	"atomic_unit_of_velocity":  {Name: "atomic unit of velocity", Symbol: "auv"},
}

// Systems returns the sorted names of the supported unit systems.
func Systems() []string {
	names := make([]string, 0, len(systemSpecs))
	for _, spec := range systemSpecs {
		names = append(names, spec.name)
	}
	sort.Strings(names)
	return names
}

func concat(specs ...[]dimensionSpec) []dimensionSpec {
	var out []dimensionSpec
	for _, s := range specs {
		out = append(out, s...)
	}
	return out
}
