package store

import (
	"context"
	"time"

	"unitd/internal/units"
)

// CustomUnitRow is a persisted user-defined unit. Rows are append-only: the
// engine reads them at registry-build time and creates them at admission
// time, never updating in place.
type CustomUnitRow struct {
	ID        string      `json:"id"`
	System    string      `json:"system"`
	Owner     units.Scope `json:"owner"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Relation  string      `json:"relation"`
	Symbol    string      `json:"symbol,omitempty"`
	Alias     string      `json:"alias,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// CustomDimensionRow is a persisted user-defined dimension.
type CustomDimensionRow struct {
	ID        string      `json:"id"`
	System    string      `json:"system"`
	Owner     units.Scope `json:"owner"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Relation  string      `json:"relation"`
	CreatedAt time.Time   `json:"created_at"`
}

// Definitions is the external custom-definition store. Implementations must
// filter listings by scope visibility: a non-privileged scope sees its own
// rows plus global ones, a privileged scope sees all.
type Definitions interface {
	ListUnits(ctx context.Context, system string, scope units.Scope) ([]CustomUnitRow, error)
	ListDimensions(ctx context.Context, system string, scope units.Scope) ([]CustomDimensionRow, error)
	CreateUnit(ctx context.Context, row CustomUnitRow) error
	CreateDimension(ctx context.Context, row CustomDimensionRow) error
}
