package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"unitd/internal/audit"
	"unitd/internal/platform/metrics"
	"unitd/internal/units"
	"unitd/internal/units/store"
	"unitd/pkg/platform/sentinel"
)

// Service exposes the engine entry points consumed by the transport layer:
// system discovery, dimension and unit resolution, and custom definition
// admission. A fresh registry is built per call so concurrent owners never
// share mutable state.
type Service struct {
	store   store.Definitions
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
}

func New(defs store.Definitions, logger *slog.Logger, m *metrics.Metrics, publisher *audit.Publisher) *Service {
	return &Service{store: defs, logger: logger, metrics: m, audit: publisher}
}

// Systems lists the supported unit systems, sorted ascending unless
// descending is set.
func (s *Service) Systems(descending bool) []string {
	names := units.Systems()
	if descending {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}
	return names
}

// Open builds a registry for the system seeded with the caller's visible
// custom definitions.
func (s *Service) Open(ctx context.Context, system string, scope units.Scope) (*units.Registry, error) {
	unitRows, err := s.store.ListUnits(ctx, system, scope)
	if err != nil {
		return nil, fmt.Errorf("load custom units: %w", err)
	}
	dimRows, err := s.store.ListDimensions(ctx, system, scope)
	if err != nil {
		return nil, fmt.Errorf("load custom dimensions: %w", err)
	}
	rows := make([]units.CustomRow, 0, len(dimRows)+len(unitRows))
	// Dimensions load first so unit relations can reference them.
	for _, row := range dimRows {
		rows = append(rows, units.CustomRow{
			IsDimension: true,
			Code:        row.Code,
			Name:        row.Name,
			Relation:    row.Relation,
			Owner:       row.Owner,
		})
	}
	for _, row := range unitRows {
		rows = append(rows, units.CustomRow{
			Code:     row.Code,
			Name:     row.Name,
			Relation: row.Relation,
			Symbol:   row.Symbol,
			Alias:    row.Alias,
			Owner:    row.Owner,
		})
	}
	reg, err := units.Open(system, scope, rows, s.logger)
	if err != nil {
		return nil, err
	}
	s.metrics.RegistryBuilds.Inc()
	return reg, nil
}

// DimensionInfo is the read model for a dimension.
type DimensionInfo struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Dimensionality string `json:"dimensionality"`
	BaseUnit       string `json:"base_unit,omitempty"`
}

// UnitInfo is the read model for a unit.
type UnitInfo struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	Symbol     string   `json:"symbol"`
	Scale      float64  `json:"scale"`
	Dimensions []string `json:"dimensions"`
}

// SystemInfo summarizes a unit system.
type SystemInfo struct {
	SystemName     string   `json:"system_name"`
	DimensionCount int      `json:"dimension_count"`
	UnitCount      int      `json:"unit_count"`
	Dimensions     []string `json:"dimensions"`
}

func (s *Service) System(ctx context.Context, system string, scope units.Scope) (SystemInfo, error) {
	reg, err := s.Open(ctx, system, scope)
	if err != nil {
		return SystemInfo{}, err
	}
	dims := reg.Dimensions()
	codes := make([]string, 0, len(dims))
	for _, d := range dims {
		codes = append(codes, d.Code)
	}
	return SystemInfo{
		SystemName:     reg.System,
		DimensionCount: len(dims),
		UnitCount:      len(reg.Units()),
		Dimensions:     codes,
	}, nil
}

// Dimensions lists a system's dimensions. ordering accepts "code" or "name",
// with a "-" prefix for descending.
func (s *Service) Dimensions(ctx context.Context, system string, scope units.Scope, ordering string) ([]DimensionInfo, error) {
	reg, err := s.Open(ctx, system, scope)
	if err != nil {
		return nil, err
	}
	out := make([]DimensionInfo, 0, len(reg.Dimensions()))
	for _, def := range reg.Dimensions() {
		info := DimensionInfo{
			Code:           def.Code,
			Name:           def.Name,
			Dimensionality: def.Vector.String(),
		}
		if base := reg.BaseUnit(def.Code); base != nil {
			info.BaseUnit = base.Code
		}
		out = append(out, info)
	}
	orderDimensions(out, ordering)
	return out, nil
}

func orderDimensions(infos []DimensionInfo, ordering string) {
	field, descending := parseOrdering(ordering, "name", []string{"name", "code"})
	sort.SliceStable(infos, func(i, j int) bool {
		var less bool
		if field == "code" {
			less = infos[i].Code < infos[j].Code
		} else {
			less = infos[i].Name < infos[j].Name
		}
		if descending {
			return !less
		}
		return less
	})
}

func parseOrdering(ordering, fallback string, allowed []string) (string, bool) {
	descending := false
	if len(ordering) > 0 && ordering[0] == '-' {
		descending = true
		ordering = ordering[1:]
	}
	for _, a := range allowed {
		if ordering == a {
			return ordering, descending
		}
	}
	return fallback, descending
}

// Units lists a system's units, optionally restricted to one dimension.
func (s *Service) Units(ctx context.Context, system string, scope units.Scope, dimension, ordering string) ([]UnitInfo, error) {
	reg, err := s.Open(ctx, system, scope)
	if err != nil {
		return nil, err
	}
	var defs []*units.UnitDefinition
	if dimension != "" {
		defs, err = reg.UnitsForDimension(dimension)
		if err != nil {
			return nil, err
		}
	} else {
		defs = reg.Units()
	}
	out := make([]UnitInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, unitInfo(reg, def))
	}
	orderUnits(out, ordering)
	return out, nil
}

func orderUnits(infos []UnitInfo, ordering string) {
	field, descending := parseOrdering(ordering, "code", []string{"name", "code"})
	sort.SliceStable(infos, func(i, j int) bool {
		var less bool
		if field == "name" {
			less = infos[i].Name < infos[j].Name
		} else {
			less = infos[i].Code < infos[j].Code
		}
		if descending {
			return !less
		}
		return less
	})
}

func unitInfo(reg *units.Registry, def *units.UnitDefinition) UnitInfo {
	info := UnitInfo{
		Code:   def.Code,
		Name:   def.Name(),
		Symbol: def.Symbol,
		Scale:  def.Scale,
	}
	dims, err := reg.DimensionsForUnit(def.Code)
	if err == nil {
		for _, d := range dims {
			info.Dimensions = append(info.Dimensions, d.Code)
		}
	}
	return info
}

// Unit resolves a single unit.
func (s *Service) Unit(ctx context.Context, system string, scope units.Scope, code string) (UnitInfo, error) {
	reg, err := s.Open(ctx, system, scope)
	if err != nil {
		return UnitInfo{}, err
	}
	def, err := reg.Unit(code)
	if err != nil {
		return UnitInfo{}, err
	}
	return unitInfo(reg, def), nil
}

// CompatibleUnits lists every unit convertible with code.
func (s *Service) CompatibleUnits(ctx context.Context, system string, scope units.Scope, code string) ([]UnitInfo, error) {
	reg, err := s.Open(ctx, system, scope)
	if err != nil {
		return nil, err
	}
	defs, err := reg.CompatibleUnits(code)
	if err != nil {
		return nil, err
	}
	out := make([]UnitInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, unitInfo(reg, def))
	}
	return out, nil
}

// UnitsPerDimension groups a system's units by dimension code.
func (s *Service) UnitsPerDimension(ctx context.Context, system string, scope units.Scope) (map[string][]UnitInfo, error) {
	reg, err := s.Open(ctx, system, scope)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]UnitInfo)
	for _, def := range reg.Units() {
		dims, err := reg.DimensionsForUnit(def.Code)
		if err != nil {
			continue
		}
		for _, d := range dims {
			out[d.Code] = append(out[d.Code], unitInfo(reg, def))
		}
	}
	return out, nil
}

// CustomUnitInput is a user-submitted unit definition.
type CustomUnitInput struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Relation  string `json:"relation"`
	Symbol    string `json:"symbol"`
	Alias     string `json:"alias"`
	Dimension string `json:"dimension"`
}

// CustomDimensionInput is a user-submitted dimension definition.
type CustomDimensionInput struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Relation string `json:"relation"`
}

// CreateCustomUnit validates and persists an owner-scoped unit. Admission is
// fail-closed: the registry rolls back on any validation failure and nothing
// is persisted.
func (s *Service) CreateCustomUnit(ctx context.Context, system string, scope units.Scope, input CustomUnitInput) (UnitInfo, error) {
	reg, err := s.Open(ctx, system, scope)
	if err != nil {
		return UnitInfo{}, err
	}
	def, err := reg.AddCustomUnit(input.Code, input.Relation, input.Symbol, input.Alias, input.Dimension, scope)
	if err != nil {
		s.metrics.CustomDefinitions.WithLabelValues("unit", "rejected").Inc()
		return UnitInfo{}, err
	}
	row := store.CustomUnitRow{
		ID:       uuid.NewString(),
		System:   reg.System,
		Owner:    scope,
		Code:     def.Code,
		Name:     input.Name,
		Relation: input.Relation,
		Symbol:   input.Symbol,
		Alias:    input.Alias,
	}
	if err := s.store.CreateUnit(ctx, row); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return UnitInfo{}, fmt.Errorf("%w: %q", units.ErrUnitDuplicate, def.Code)
		}
		return UnitInfo{}, fmt.Errorf("persist custom unit: %w", err)
	}
	s.metrics.CustomDefinitions.WithLabelValues("unit", "admitted").Inc()
	s.audit.Emit(ctx, audit.Event{
		Kind:   audit.KindCustomUnitAdmitted,
		System: reg.System,
		Code:   def.Code,
		Owner:  scope.UserID,
		Detail: map[string]string{"relation": input.Relation},
	})
	return unitInfo(reg, def), nil
}

// CreateCustomDimension validates and persists an owner-scoped dimension.
func (s *Service) CreateCustomDimension(ctx context.Context, system string, scope units.Scope, input CustomDimensionInput) (DimensionInfo, error) {
	reg, err := s.Open(ctx, system, scope)
	if err != nil {
		return DimensionInfo{}, err
	}
	def, err := reg.AddCustomDimension(input.Code, input.Name, input.Relation, scope)
	if err != nil {
		s.metrics.CustomDefinitions.WithLabelValues("dimension", "rejected").Inc()
		return DimensionInfo{}, err
	}
	row := store.CustomDimensionRow{
		ID:       uuid.NewString(),
		System:   reg.System,
		Owner:    scope,
		Code:     def.Code,
		Name:     input.Name,
		Relation: input.Relation,
	}
	if err := s.store.CreateDimension(ctx, row); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return DimensionInfo{}, fmt.Errorf("%w: %q", units.ErrDimensionDuplicate, def.Code)
		}
		return DimensionInfo{}, fmt.Errorf("persist custom dimension: %w", err)
	}
	s.metrics.CustomDefinitions.WithLabelValues("dimension", "admitted").Inc()
	s.audit.Emit(ctx, audit.Event{
		Kind:   audit.KindCustomDimensionAdmitted,
		System: reg.System,
		Code:   def.Code,
		Owner:  scope.UserID,
		Detail: map[string]string{"relation": input.Relation},
	})
	return DimensionInfo{
		Code:           def.Code,
		Name:           def.Name,
		Dimensionality: def.Vector.String(),
	}, nil
}

// ListCustomUnits returns the custom unit rows visible to the scope.
func (s *Service) ListCustomUnits(ctx context.Context, system string, scope units.Scope) ([]store.CustomUnitRow, error) {
	return s.store.ListUnits(ctx, system, scope)
}

// ListCustomDimensions returns the custom dimension rows visible to the
// scope.
func (s *Service) ListCustomDimensions(ctx context.Context, system string, scope units.Scope) ([]store.CustomDimensionRow, error) {
	return s.store.ListDimensions(ctx, system, scope)
}
