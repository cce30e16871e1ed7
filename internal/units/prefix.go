package units

// Prefix is a decimal multiplier applied to a base unit code.
type Prefix struct {
	Name   string
	Symbol string
	Factor float64
}

// prefixTable lists the recognized decimal prefixes. Resolution and expansion
// only ever combine these with the codes listed in displayPrefixes.
var prefixTable = map[string]Prefix{
	"nano":  {Name: "nano", Symbol: "n", Factor: 1e-9},
	"micro": {Name: "micro", Symbol: "µ", Factor: 1e-6},
	"milli": {Name: "milli", Symbol: "m", Factor: 1e-3},
	"centi": {Name: "centi", Symbol: "c", Factor: 1e-2},
	"deci":  {Name: "deci", Symbol: "d", Factor: 1e-1},
	"hecto": {Name: "hecto", Symbol: "h", Factor: 1e2},
	"kilo":  {Name: "kilo", Symbol: "k", Factor: 1e3},
	"mega":  {Name: "mega", Symbol: "M", Factor: 1e6},
	"giga":  {Name: "giga", Symbol: "G", Factor: 1e9},
}

// displayPrefixes maps base unit codes to the prefixes synthesized into a
// registry on cache rebuild. Prefixed units are regenerated on every rebuild
// and never persisted.
var displayPrefixes = map[string][]string{
	"meter":  {"milli", "centi", "kilo"},
	"gram":   {"milli", "kilo"},
	"second": {"micro", "milli"},
	"ampere": {"milli"},
	"liter":  {"milli", "centi"},
	"watt":   {"kilo", "mega"},
	"joule":  {"kilo", "mega"},
	"hertz":  {"kilo", "mega", "giga"},
	"volt":   {"milli", "kilo"},
	"pascal": {"hecto", "kilo"},
}

// splitPrefix returns the base code and prefix name when code is a prefixed
// form of a base unit with that prefix allowed. A plain code comes back
// unchanged with an empty prefix.
func splitPrefix(code string) (base, prefix string) {
	for b, prefixes := range displayPrefixes {
		for _, p := range prefixes {
			if code == p+b {
				return b, p
			}
		}
	}
	return code, ""
}

// UnitName resolves a human-readable name for a unit code, reapplying a
// recognized prefix. Unknown base codes degrade to the raw code.
func UnitName(code string) string {
	base, prefix := splitPrefix(code)
	ext, ok := extendedDefinitions[base]
	if !ok {
		return code
	}
	if prefix != "" {
		return prefixTable[prefix].Name + ext.Name
	}
	return ext.Name
}

// UnitSymbol resolves the display symbol for a unit code, prepending the
// prefix symbol: kilogram yields "kg". Unknown base codes degrade to the
// empty string.
func UnitSymbol(code string) string {
	base, prefix := splitPrefix(code)
	ext, ok := extendedDefinitions[base]
	if !ok {
		return ""
	}
	if prefix != "" {
		return prefixTable[prefix].Symbol + ext.Symbol
	}
	return ext.Symbol
}
