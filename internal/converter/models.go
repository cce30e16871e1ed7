package converter

import (
	"context"
	"time"

	"unitd/internal/units"
)

// Status tracks a batch session's lifecycle. A session starts open, becomes
// accumulating once an id is assigned and data persisted, and is closed by
// the finalizing convert call.
type Status string

const (
	StatusOpen         Status = "open"
	StatusAccumulating Status = "accumulating"
	StatusClosed       Status = "closed"
)

// DateLayout is the accepted format for quantity dates.
const DateLayout = "2006-01-02"

// Quantity is one value-with-unit submitted for conversion. Date is
// optional metadata carried through to the result untouched.
type Quantity struct {
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
	Date  string  `json:"date,omitempty"`
}

// ValidationError reports a malformed quantity rejected at submission time,
// before any conversion is attempted.
type ValidationError struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Detail is one successfully converted quantity.
type Detail struct {
	Unit           string  `json:"unit"`
	OriginalValue  float64 `json:"original_value"`
	ConvertedValue float64 `json:"converted_value"`
	Date           string  `json:"date,omitempty"`
}

// ConversionError is one quantity that could not be converted.
type ConversionError struct {
	Unit          string  `json:"unit"`
	OriginalValue float64 `json:"original_value"`
	Date          string  `json:"date,omitempty"`
	Reason        string  `json:"reason"`
}

// Result aggregates a finalized batch. Every accumulated quantity lands in
// exactly one of Details or Errors, and Sum is the total of the converted
// values.
type Result struct {
	TargetUnit string            `json:"target_unit"`
	Sum        float64           `json:"sum"`
	Details    []Detail          `json:"details"`
	Errors     []ConversionError `json:"errors"`
}

// Session is the persisted shape of a batch between calls. Only raw inputs
// are stored; the registry and resolved units are rebuilt on load. Version
// backs the store's optimistic concurrency check.
type Session struct {
	ID         string      `json:"id"`
	System     string      `json:"system"`
	TargetUnit string      `json:"target_unit"`
	Owner      units.Scope `json:"owner"`
	Data       []Quantity  `json:"data"`
	Status     Status      `json:"status"`
	Version    int64       `json:"version"`
}

// Sessions is the external keyed store holding sessions between calls.
// Put rejects a stale Version with sentinel.ErrConflict and returns the
// stored session with its bumped version. Delete is idempotent.
type Sessions interface {
	Get(ctx context.Context, id string) (Session, error)
	Put(ctx context.Context, session Session, ttl time.Duration) (Session, error)
	Delete(ctx context.Context, id string) error
}

// RegistryOpener builds a registry for a system as seen by a scope.
type RegistryOpener interface {
	Open(ctx context.Context, system string, scope units.Scope) (*units.Registry, error)
}
