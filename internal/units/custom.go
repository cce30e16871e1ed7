package units

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var dimensionRefPattern = regexp.MustCompile(`\[\w+\]`)

// normalizeDimensionCode rewrites a user-supplied dimension code to bracketed
// canonical form: "my-dim" becomes "[my_dim]".
func normalizeDimensionCode(code string) string {
	code = strings.ReplaceAll(code, "-", "_")
	if !strings.HasPrefix(code, "[") {
		code = "[" + code
	}
	if !strings.HasSuffix(code, "]") {
		code = code + "]"
	}
	return code
}

func normalizeUnitCode(code string) string {
	return strings.ReplaceAll(code, "-", "_")
}

// AddCustomDimension validates and admits an owner-scoped dimension. The
// relation is registered in a scratch copy of the registry, then re-checked
// for algebraic coherence by substituting a concrete unit for every
// referenced dimension. Any failure discards the scratch copy and leaves the
// registry exactly as it was.
func (r *Registry) AddCustomDimension(code, name, relation string, owner Scope) (*DimensionDefinition, error) {
	code = normalizeDimensionCode(code)
	if _, exists := r.dimensions[code]; exists {
		return nil, fmt.Errorf("%w: code %q", ErrDimensionDuplicate, code)
	}
	if _, exists := r.dimensions[strings.TrimSpace(relation)]; exists {
		return nil, fmt.Errorf("%w: relation %q already denotes a dimension", ErrDimensionDuplicate, relation)
	}

	scratch := r.clone()
	origin := Origin{Kind: OriginCustom, Owner: owner}
	if err := scratch.defineDimension(code, name, relation, origin, OnConflictRaise); err != nil {
		if errors.Is(err, ErrDimensionNotFound) || errors.Is(err, ErrDimensionDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDimensionValue, err)
	}
	scratch.rebuild()

	if err := scratch.checkDimensionCoherence(relation); err != nil {
		return nil, err
	}

	r.commit(scratch)
	def := r.dimensions[code]
	return def, nil
}

// checkDimensionCoherence substitutes "(1 * <first compatible unit>)" for
// every referenced dimension and verifies the relation still parses as a
// quantity expression. A referenced dimension with no units is left
// unsubstituted and re-parses as a plain dimension atom, so the probe is
// vacuous for it. This mirrors the original admission heuristic; it is not a
// proof of correctness for every instantiation of the relation.
func (r *Registry) checkDimensionCoherence(relation string) error {
	substituted := relation
	for _, ref := range dimensionRefPattern.FindAllString(relation, -1) {
		if _, ok := r.dimensions[ref]; !ok {
			return fmt.Errorf("%w: %q", ErrDimensionNotFound, ref)
		}
		units, err := r.UnitsForDimension(ref)
		if err != nil || len(units) == 0 {
			continue
		}
		substituted = strings.ReplaceAll(substituted,
			ref, fmt.Sprintf("(1 * %s)", units[0].Code))
	}
	if _, err := parseQuantity(r, substituted); err != nil {
		return fmt.Errorf("%w: %v", ErrDimensionDimension, err)
	}
	return nil
}

// AddCustomUnit validates and admits an owner-scoped unit. When dimension
// names a dimension that does not exist yet, one is auto-created from the
// unit's computed dimensionality; when it exists, the unit must belong to it.
// Rollback on any failure leaves the registry untouched.
func (r *Registry) AddCustomUnit(code, relation, symbol, alias, dimension string, owner Scope) (*UnitDefinition, error) {
	code = normalizeUnitCode(code)
	symbol = normalizeUnitCode(symbol)
	alias = normalizeUnitCode(alias)
	if _, exists := r.lookupUnit(code); exists {
		return nil, fmt.Errorf("%w: %q", ErrUnitDuplicate, code)
	}
	if alias != "" {
		if _, exists := r.lookupUnit(alias); exists {
			return nil, fmt.Errorf("%w: alias %q", ErrUnitDuplicate, alias)
		}
	}

	scratch := r.clone()
	origin := Origin{Kind: OriginCustom, Owner: owner}
	meta := unitMeta{symbol: symbol}
	if alias != "" {
		meta.aliases = []string{alias}
	}
	if err := scratch.defineUnit(code, "", relation, meta, origin, OnConflictRaise); err != nil {
		return nil, err
	}

	// Force evaluation of the unit's dimensionality through the scratch
	// registry. A unit that cannot be resolved back is rejected.
	def, err := scratch.Unit(code)
	if err != nil || def.Vector == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnitDimension, code)
	}

	if dimension != "" {
		dimension = normalizeDimensionCode(dimension)
		if existing, ok := scratch.dimensions[dimension]; ok {
			if !existing.Vector.Equal(def.Vector) {
				return nil, fmt.Errorf("%w: incoherent unit and dimension %q", ErrUnitDimension, dimension)
			}
		} else {
			scratch.dimensions[dimension] = &DimensionDefinition{
				Code:   dimension,
				Name:   strings.Trim(dimension, "[]"),
				Vector: def.Vector,
				System: scratch.System,
				Origin: origin,
			}
		}
	}

	r.commit(scratch)
	out, _ := r.Unit(code)
	return out, nil
}
