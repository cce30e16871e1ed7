package store

import (
	"context"
	"sync"
	"time"

	"unitd/internal/units"
	"unitd/pkg/platform/sentinel"
)

// Memory keeps custom definitions in process. It favors clarity over
// performance and backs unit tests as well as single-node deployments.
type Memory struct {
	mu         sync.RWMutex
	units      []CustomUnitRow
	dimensions []CustomDimensionRow
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ListUnits(_ context.Context, system string, scope units.Scope) ([]CustomUnitRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []CustomUnitRow
	for _, row := range m.units {
		if row.System == system && scope.CanSee(row.Owner) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *Memory) ListDimensions(_ context.Context, system string, scope units.Scope) ([]CustomDimensionRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []CustomDimensionRow
	for _, row := range m.dimensions {
		if row.System == system && scope.CanSee(row.Owner) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *Memory) CreateUnit(_ context.Context, row CustomUnitRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.units {
		if existing.System == row.System && existing.Code == row.Code &&
			existing.Owner == row.Owner {
			return sentinel.ErrConflict
		}
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	m.units = append(m.units, row)
	return nil
}

func (m *Memory) CreateDimension(_ context.Context, row CustomDimensionRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.dimensions {
		if existing.System == row.System && existing.Code == row.Code &&
			existing.Owner == row.Owner {
			return sentinel.ErrConflict
		}
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	m.dimensions = append(m.dimensions, row)
	return nil
}
