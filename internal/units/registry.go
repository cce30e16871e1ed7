package units

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
)

// OriginKind records where a definition came from.
type OriginKind string

const (
	OriginBuiltin    OriginKind = "builtin"
	OriginAdditional OriginKind = "additional"
	OriginCustom     OriginKind = "custom"
)

// Origin tags a definition with its provenance. Owner is only meaningful for
// custom definitions.
type Origin struct {
	Kind  OriginKind `json:"kind"`
	Owner Scope      `json:"owner,omitempty"`
}

// UnitDefinition is a named, scaled instance of a dimension. Scale is
// relative to the reference unit of its dimension within the system, so
// conversion between units with equal vectors is value * scale(src)/scale(dst).
type UnitDefinition struct {
	Code    string   `json:"code"`
	Symbol  string   `json:"symbol"`
	Aliases []string `json:"aliases,omitempty"`
	Scale   float64  `json:"scale"`
	Vector  Vector   `json:"vector"`
	System  string   `json:"system"`
	Origin  Origin   `json:"origin"`
}

// Name returns the human-readable unit name, prefix-aware.
func (u *UnitDefinition) Name() string { return UnitName(u.Code) }

// DimensionDefinition names a class of physical quantities.
type DimensionDefinition struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Vector Vector `json:"vector"`
	System string `json:"system"`
	Origin Origin `json:"origin"`
}

// OnConflict selects the policy when a definition's code already exists.
// Bulk loads of builtin and additional data skip; custom admission raises.
type OnConflict int

const (
	OnConflictSkip OnConflict = iota
	OnConflictRaise
)

// Registry holds the units and dimensions of one system for one owner scope.
// Instances are never shared across owners; the builtin catalog is copied in
// at build time. Derived caches are immutable snapshots swapped atomically on
// every mutation, so a reader holding the cache never observes a half
// rebuild.
type Registry struct {
	System string
	Scope  Scope

	log        *slog.Logger
	units      map[string]*UnitDefinition // keyed by code and aliases
	dimensions map[string]*DimensionDefinition
	baseUnits  map[string]string
	cache      atomic.Pointer[registryCache]
}

type registryCache struct {
	// prefixed holds the synthesized prefix-expanded units, regenerated on
	// every rebuild and never persisted.
	prefixed map[string]*UnitDefinition
	// unitsByVector groups all units (including prefixed synthetics) by
	// canonical vector key.
	unitsByVector map[string][]*UnitDefinition
	// dimensionsByVector groups registered dimensions by vector key.
	dimensionsByVector map[string][]*DimensionDefinition
	// compounded lists units whose vector matches no registered dimension.
	compounded []*UnitDefinition
}

// CustomRow is a persisted custom definition as loaded from the definition
// store, ready to be replayed into a registry.
type CustomRow struct {
	IsDimension bool
	Code        string
	Name        string
	Relation    string
	Symbol      string
	Alias       string
	Owner       Scope
}

// Open builds a registry for the named system. Lookup of the name is
// case-insensitive against the supported set; unknown systems fail with
// ErrSystemNotFound. Builtin definitions load first, then global additional
// definitions, then the caller's custom rows, all with skip-on-conflict
// semantics. A builtin or additional definition whose relation fails to
// parse is logged and skipped; custom rows were validated at admission.
func Open(system string, scope Scope, custom []CustomRow, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = slog.Default()
	}
	spec, ok := findSystem(system)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSystemNotFound, system)
	}
	r := &Registry{
		System:     spec.name,
		Scope:      scope,
		log:        log,
		units:      make(map[string]*UnitDefinition),
		dimensions: make(map[string]*DimensionDefinition),
		baseUnits:  spec.baseUnits,
	}
	r.loadBuiltin(spec)
	r.loadAdditional()
	r.loadCustom(custom)
	r.rebuild()
	return r, nil
}

func findSystem(name string) (systemSpec, bool) {
	for _, spec := range systemSpecs {
		if strings.EqualFold(spec.name, name) {
			return spec, true
		}
	}
	return systemSpec{}, false
}

func (r *Registry) loadBuiltin(spec systemSpec) {
	for _, d := range spec.dimensions {
		if err := r.defineDimension(d.code, d.name, d.relation, Origin{Kind: OriginBuiltin}, OnConflictSkip); err != nil {
			r.log.Warn("skipping builtin dimension",
				"system", r.System, "code", d.code, "error", err)
		}
	}
	for _, u := range spec.units {
		if err := r.defineUnit(u.code, u.dimension, u.relation, unitMeta{aliases: u.aliases}, Origin{Kind: OriginBuiltin}, OnConflictSkip); err != nil {
			r.log.Warn("skipping builtin unit",
				"system", r.System, "code", u.code, "error", err)
		}
	}
}

func (r *Registry) loadAdditional() {
	for _, d := range additionalDimensions {
		if !containsSystem(d.systems, r.System) {
			continue
		}
		if err := r.defineDimension(d.code, d.name, d.relation, Origin{Kind: OriginAdditional}, OnConflictSkip); err != nil {
			r.log.Warn("skipping additional dimension",
				"system", r.System, "code", d.code, "error", err)
		}
	}
	for _, u := range additionalUnits {
		if !containsSystem(u.systems, r.System) {
			continue
		}
		if err := r.defineUnit(u.code, "", u.relation, unitMeta{aliases: u.aliases}, Origin{Kind: OriginAdditional}, OnConflictSkip); err != nil {
			r.log.Warn("skipping additional unit",
				"system", r.System, "code", u.code, "error", err)
		}
	}
}

func (r *Registry) loadCustom(rows []CustomRow) {
	for _, row := range rows {
		if !r.Scope.CanSee(row.Owner) {
			continue
		}
		origin := Origin{Kind: OriginCustom, Owner: row.Owner}
		var err error
		if row.IsDimension {
			err = r.defineDimension(row.Code, row.Name, row.Relation, origin, OnConflictSkip)
		} else {
			meta := unitMeta{symbol: row.Symbol}
			if row.Alias != "" {
				meta.aliases = []string{row.Alias}
			}
			err = r.defineUnit(row.Code, "", row.Relation, meta, origin, OnConflictSkip)
		}
		if err != nil {
			r.log.Warn("skipping custom definition",
				"system", r.System, "code", row.Code, "error", err)
		}
	}
}

func containsSystem(systems []string, name string) bool {
	for _, s := range systems {
		if s == name {
			return true
		}
	}
	return false
}

// defineDimension parses relation (empty for a base dimension, whose vector
// is just itself) and registers the definition.
func (r *Registry) defineDimension(code, name, relation string, origin Origin, policy OnConflict) error {
	if _, exists := r.dimensions[code]; exists {
		if policy == OnConflictRaise {
			return fmt.Errorf("%w: %q", ErrDimensionDuplicate, code)
		}
		return nil
	}
	var vec Vector
	if relation == "" {
		vec = Vector{code: NewRational(1, 1)}
	} else {
		q, err := parseQuantity(r, relation)
		if err != nil {
			return err
		}
		vec = q.vector
	}
	r.dimensions[code] = &DimensionDefinition{
		Code:   code,
		Name:   name,
		Vector: vec,
		System: r.System,
		Origin: origin,
	}
	return nil
}

type unitMeta struct {
	symbol  string
	aliases []string
}

// defineUnit parses relation into a scale factor and vector. For a reference
// unit (empty relation) the vector comes from the named dimension with scale
// 1. Unknown bracketed references propagate ErrDimensionNotFound; any other
// parse failure is reported as ErrUnitValue.
func (r *Registry) defineUnit(code, dimension, relation string, meta unitMeta, origin Origin, policy OnConflict) error {
	if _, exists := r.lookupUnit(code); exists {
		if policy == OnConflictRaise {
			return fmt.Errorf("%w: %q", ErrUnitDuplicate, code)
		}
		return nil
	}
	def := &UnitDefinition{
		Code:    code,
		Symbol:  meta.symbol,
		Aliases: meta.aliases,
		System:  r.System,
		Origin:  origin,
	}
	if def.Symbol == "" {
		def.Symbol = UnitSymbol(code)
	}
	switch {
	case relation == "" && dimension != "":
		dim, ok := r.dimensions[dimension]
		if !ok {
			return fmt.Errorf("%w: %q", ErrDimensionNotFound, dimension)
		}
		def.Scale = 1
		def.Vector = dim.Vector
	case relation != "":
		q, err := parseQuantity(r, relation)
		if err != nil {
			if errors.Is(err, ErrDimensionNotFound) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrUnitValue, err)
		}
		if q.factor <= 0 {
			return fmt.Errorf("%w: scale must be positive, got %v", ErrUnitValue, q.factor)
		}
		def.Scale = q.factor
		def.Vector = q.vector
	default:
		return fmt.Errorf("%w: empty relation", ErrUnitValue)
	}
	r.units[code] = def
	for _, alias := range meta.aliases {
		if _, exists := r.units[alias]; !exists {
			r.units[alias] = def
		}
	}
	return nil
}

// lookupUnit resolves a code against registered units, aliases, and
// prefix-expanded synthetic codes.
func (r *Registry) lookupUnit(code string) (*UnitDefinition, bool) {
	if def, ok := r.units[code]; ok {
		return def, true
	}
	base, prefix := splitPrefix(code)
	if prefix == "" {
		return nil, false
	}
	parent, ok := r.units[base]
	if !ok {
		return nil, false
	}
	return r.synthesizePrefixed(parent, prefix), true
}

func (r *Registry) lookupDimension(code string) (*DimensionDefinition, bool) {
	def, ok := r.dimensions[code]
	return def, ok
}

func (r *Registry) synthesizePrefixed(base *UnitDefinition, prefix string) *UnitDefinition {
	p := prefixTable[prefix]
	return &UnitDefinition{
		Code:   prefix + base.Code,
		Symbol: p.Symbol + base.Symbol,
		Scale:  base.Scale * p.Factor,
		Vector: base.Vector,
		System: base.System,
		Origin: base.Origin,
	}
}

// rebuild recomputes the derived caches into fresh structures and swaps them
// in atomically as part of the mutating call.
func (r *Registry) rebuild() {
	c := &registryCache{
		prefixed:           make(map[string]*UnitDefinition),
		unitsByVector:      make(map[string][]*UnitDefinition),
		dimensionsByVector: make(map[string][]*DimensionDefinition),
	}
	for base, prefixes := range displayPrefixes {
		parent, ok := r.units[base]
		if !ok {
			continue
		}
		for _, prefix := range prefixes {
			code := prefix + base
			if _, taken := r.units[code]; taken {
				continue
			}
			c.prefixed[code] = r.synthesizePrefixed(parent, prefix)
		}
	}
	for _, def := range r.dimensions {
		key := def.Vector.Key()
		c.dimensionsByVector[key] = append(c.dimensionsByVector[key], def)
	}
	seen := make(map[*UnitDefinition]bool)
	index := func(def *UnitDefinition) {
		if seen[def] {
			return
		}
		seen[def] = true
		key := def.Vector.Key()
		c.unitsByVector[key] = append(c.unitsByVector[key], def)
		if len(c.dimensionsByVector[key]) == 0 {
			c.compounded = append(c.compounded, def)
		}
	}
	for _, def := range r.units {
		index(def)
	}
	for _, def := range c.prefixed {
		index(def)
	}
	for _, defs := range c.unitsByVector {
		sortUnits(defs)
	}
	sortUnits(c.compounded)
	r.cache.Store(c)
}

func sortUnits(defs []*UnitDefinition) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
}

// Unit resolves a unit code, including prefix-expanded synthetics and
// aliases.
func (r *Registry) Unit(code string) (*UnitDefinition, error) {
	if def, ok := r.lookupUnit(code); ok {
		return def, nil
	}
	return nil, fmt.Errorf("%w: %q in system %s", ErrUnitNotFound, code, r.System)
}

// Dimension resolves a dimension code. The pseudo-dimensions [compounded]
// and [custom] always resolve without a registry entry.
func (r *Registry) Dimension(code string) (*DimensionDefinition, error) {
	if def, ok := r.dimensions[code]; ok {
		return def, nil
	}
	switch code {
	case DimCompounded:
		return &DimensionDefinition{Code: DimCompounded, Name: "Compounded", System: r.System}, nil
	case DimCustom:
		return &DimensionDefinition{Code: DimCustom, Name: "Custom", System: r.System}, nil
	}
	return nil, fmt.Errorf("%w: %q in system %s", ErrDimensionNotFound, code, r.System)
}

// Dimensions lists the registered dimensions sorted by code.
func (r *Registry) Dimensions() []*DimensionDefinition {
	out := make([]*DimensionDefinition, 0, len(r.dimensions))
	for _, def := range r.dimensions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Units lists all units, including prefixed synthetics, sorted by code.
func (r *Registry) Units() []*UnitDefinition {
	c := r.cache.Load()
	var out []*UnitDefinition
	seen := make(map[string]bool)
	for _, def := range r.units {
		if !seen[def.Code] {
			seen[def.Code] = true
			out = append(out, def)
		}
	}
	for code, def := range c.prefixed {
		if !seen[code] {
			seen[code] = true
			out = append(out, def)
		}
	}
	sortUnits(out)
	return out
}

// CompatibleUnits returns every unit whose reduced vector equals that of
// code, always including the unit itself.
func (r *Registry) CompatibleUnits(code string) ([]*UnitDefinition, error) {
	def, err := r.Unit(code)
	if err != nil {
		return nil, err
	}
	c := r.cache.Load()
	units := c.unitsByVector[def.Vector.Key()]
	out := make([]*UnitDefinition, len(units))
	copy(out, units)
	return out, nil
}

// UnitsForDimension lists the units belonging to a dimension. [compounded]
// yields units with no matching dimension; [custom] yields custom-origin
// units visible to the registry's scope.
func (r *Registry) UnitsForDimension(code string) ([]*UnitDefinition, error) {
	c := r.cache.Load()
	switch code {
	case DimCompounded:
		out := make([]*UnitDefinition, len(c.compounded))
		copy(out, c.compounded)
		return out, nil
	case DimCustom:
		var out []*UnitDefinition
		for _, def := range r.Units() {
			if def.Origin.Kind == OriginCustom {
				out = append(out, def)
			}
		}
		return out, nil
	}
	dim, err := r.Dimension(code)
	if err != nil {
		return nil, err
	}
	units := c.unitsByVector[dim.Vector.Key()]
	out := make([]*UnitDefinition, len(units))
	copy(out, units)
	return out, nil
}

// DimensionsForUnit lists the dimensions whose vector matches the unit. A
// unit matching no registered dimension resolves to [compounded], never an
// empty list.
func (r *Registry) DimensionsForUnit(code string) ([]*DimensionDefinition, error) {
	def, err := r.Unit(code)
	if err != nil {
		return nil, err
	}
	c := r.cache.Load()
	dims := c.dimensionsByVector[def.Vector.Key()]
	if len(dims) == 0 {
		compounded, _ := r.Dimension(DimCompounded)
		return []*DimensionDefinition{compounded}, nil
	}
	out := make([]*DimensionDefinition, len(dims))
	copy(out, dims)
	return out, nil
}

// BaseUnit returns the display base unit for a dimension in this system, or
// nil when the system does not designate one.
func (r *Registry) BaseUnit(dimension string) *UnitDefinition {
	code, ok := r.baseUnits[dimension]
	if !ok {
		return nil
	}
	def, err := r.Unit(code)
	if err != nil {
		return nil
	}
	return def
}

// clone shallow-copies the two lookup maps so a tentative mutation can be
// validated and discarded without touching the live registry. Definitions
// themselves are immutable and shared.
func (r *Registry) clone() *Registry {
	c := &Registry{
		System:     r.System,
		Scope:      r.Scope,
		log:        r.log,
		units:      make(map[string]*UnitDefinition, len(r.units)),
		dimensions: make(map[string]*DimensionDefinition, len(r.dimensions)),
		baseUnits:  r.baseUnits,
	}
	for code, def := range r.units {
		c.units[code] = def
	}
	for code, def := range r.dimensions {
		c.dimensions[code] = def
	}
	c.rebuild()
	return c
}

// commit adopts a validated scratch registry's definitions and swaps in its
// caches.
func (r *Registry) commit(scratch *Registry) {
	r.units = scratch.units
	r.dimensions = scratch.dimensions
	r.rebuild()
}
