package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"unitd/internal/units"
	"unitd/pkg/platform/sentinel"
)

const (
	reasonUndefinedUnit  = "undefined unit"
	reasonDimensionality = "dimensionality error"
)

// Converter accumulates quantities across one or more calls and converts
// them all into a single target unit on finalization. Each instance is bound
// to one session and one caller; it is not safe for concurrent use.
type Converter struct {
	session  Session
	registry *units.Registry
	target   *units.UnitDefinition
	sessions Sessions
	ttl      time.Duration
	logger   *slog.Logger
}

// New creates a converter for system and targetUnit as seen by scope. When
// id names an existing stored session the call resumes it instead, ignoring
// targetUnit in favor of the stored one. An unknown system or target unit
// fails with ErrInit.
func New(ctx context.Context, opener RegistryOpener, sessions Sessions, system, targetUnit string, scope units.Scope, id string, ttl time.Duration, logger *slog.Logger) (*Converter, error) {
	if id != "" {
		existing, err := sessions.Get(ctx, id)
		switch {
		case err == nil:
			return rebuild(ctx, opener, sessions, existing, ttl, logger)
		case errors.Is(err, sentinel.ErrNotFound):
			// First call with a caller-chosen id.
		default:
			return nil, fmt.Errorf("probe session %q: %w", id, err)
		}
	}
	reg, err := opener.Open(ctx, system, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	target, err := reg.Unit(targetUnit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	return &Converter{
		session: Session{
			ID:         id,
			System:     reg.System,
			TargetUnit: target.Code,
			Owner:      scope,
			Status:     StatusOpen,
		},
		registry: reg,
		target:   target,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}, nil
}

// Load resumes the stored session id. A missing id, including one already
// finalized, fails with ErrLoad.
func Load(ctx context.Context, opener RegistryOpener, sessions Sessions, id string, ttl time.Duration, logger *slog.Logger) (*Converter, error) {
	sess, err := sessions.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrLoad, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", id, err)
	}
	return rebuild(ctx, opener, sessions, sess, ttl, logger)
}

// rebuild reconstructs the registry and target from a stored session. The
// stored fields are authoritative; if they no longer resolve, for example a
// custom target unit removed since the last call, the resume fails.
func rebuild(ctx context.Context, opener RegistryOpener, sessions Sessions, sess Session, ttl time.Duration, logger *slog.Logger) (*Converter, error) {
	reg, err := opener.Open(ctx, sess.System, sess.Owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	target, err := reg.Unit(sess.TargetUnit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	return &Converter{
		session:  sess,
		registry: reg,
		target:   target,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}, nil
}

// ID returns the session id, empty until Save assigns one.
func (c *Converter) ID() string { return c.session.ID }

// Status returns the session's lifecycle state.
func (c *Converter) Status() Status { return c.session.Status }

// Accumulated returns how many quantities the batch currently holds.
func (c *Converter) Accumulated() int { return len(c.session.Data) }

// AddData validates each quantity's shape and appends the valid ones to the
// batch. Invalid entries are reported individually and dropped; no
// conversion is attempted here.
func (c *Converter) AddData(quantities []Quantity) []ValidationError {
	var invalid []ValidationError
	for i, q := range quantities {
		if q.Unit == "" {
			invalid = append(invalid, ValidationError{Index: i, Field: "unit", Reason: "unit is required"})
			continue
		}
		if math.IsNaN(q.Value) || math.IsInf(q.Value, 0) {
			invalid = append(invalid, ValidationError{Index: i, Field: "value", Reason: "value must be a finite number"})
			continue
		}
		if q.Date != "" {
			if _, err := time.Parse(DateLayout, q.Date); err != nil {
				invalid = append(invalid, ValidationError{Index: i, Field: "date", Reason: "date must be formatted YYYY-MM-DD"})
				continue
			}
		}
		c.session.Data = append(c.session.Data, q)
	}
	return invalid
}

// Save persists the session so a later call can resume it by id. The first
// save assigns the id and moves the session to accumulating.
func (c *Converter) Save(ctx context.Context) (string, error) {
	if c.session.Status == StatusClosed {
		return "", fmt.Errorf("save session: %w", sentinel.ErrClosed)
	}
	if c.session.ID == "" {
		c.session.ID = uuid.NewString()
	}
	c.session.Status = StatusAccumulating
	stored, err := c.sessions.Put(ctx, c.session, c.ttl)
	if err != nil {
		return "", fmt.Errorf("save session %q: %w", c.session.ID, err)
	}
	c.session = stored
	return c.session.ID, nil
}

// Convert finalizes the batch: every accumulated quantity is resolved and
// converted to the target unit, with one item's failure never aborting the
// rest. The session is closed and removed from the store; its id cannot be
// loaded afterwards.
func (c *Converter) Convert(ctx context.Context) (Result, error) {
	if c.session.Status == StatusClosed {
		return Result{}, fmt.Errorf("convert: %w", sentinel.ErrClosed)
	}
	result := Result{
		TargetUnit: c.target.Code,
		Details:    []Detail{},
		Errors:     []ConversionError{},
	}
	for _, q := range c.session.Data {
		def, err := c.registry.Unit(q.Unit)
		if err != nil {
			result.Errors = append(result.Errors, ConversionError{
				Unit:          q.Unit,
				OriginalValue: q.Value,
				Date:          q.Date,
				Reason:        reasonUndefinedUnit,
			})
			continue
		}
		if !def.Vector.Equal(c.target.Vector) {
			result.Errors = append(result.Errors, ConversionError{
				Unit:          q.Unit,
				OriginalValue: q.Value,
				Date:          q.Date,
				Reason:        reasonDimensionality,
			})
			continue
		}
		converted := q.Value * (def.Scale / c.target.Scale)
		result.Sum += converted
		result.Details = append(result.Details, Detail{
			Unit:           q.Unit,
			OriginalValue:  q.Value,
			ConvertedValue: converted,
			Date:           q.Date,
		})
	}
	c.session.Status = StatusClosed
	if c.session.ID != "" {
		if err := c.sessions.Delete(ctx, c.session.ID); err != nil {
			c.logger.WarnContext(ctx, "delete finalized session",
				slog.String("session_id", c.session.ID),
				slog.String("error", err.Error()))
		}
	}
	return result, nil
}
