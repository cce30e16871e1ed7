package converter

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"unitd/internal/audit"
	"unitd/internal/platform/metrics"
	"unitd/internal/units"
)

// Request is one call in the batch protocol. BatchID resumes an earlier
// call's session; EOB marks the call that finalizes the batch.
type Request struct {
	TargetUnit string     `json:"target_unit"`
	Data       []Quantity `json:"data"`
	BatchID    string     `json:"batch_id,omitempty"`
	EOB        bool       `json:"eob"`
}

// Response reports the batch state after a call. Result is set only on the
// finalizing call.
type Response struct {
	ID               string            `json:"id,omitempty"`
	Status           Status            `json:"status"`
	Accumulated      int               `json:"accumulated"`
	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
	Result           *Result           `json:"result,omitempty"`
}

// Service drives converters through the multi-call batch protocol: create or
// resume a session, append data, and either persist for a later call or
// finalize.
type Service struct {
	opener   RegistryOpener
	sessions Sessions
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    *audit.Publisher
}

func NewService(opener RegistryOpener, sessions Sessions, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics, publisher *audit.Publisher) *Service {
	return &Service{
		opener:   opener,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		metrics:  m,
		audit:    publisher,
	}
}

// Submit processes one protocol call for system as seen by scope.
func (s *Service) Submit(ctx context.Context, system string, scope units.Scope, req Request) (Response, error) {
	conv, err := New(ctx, s.opener, s.sessions, system, req.TargetUnit, scope, req.BatchID, s.ttl, s.logger)
	if err != nil {
		return Response{}, err
	}
	if req.BatchID != "" {
		s.metrics.SessionOps.WithLabelValues("load").Inc()
	}

	invalid := conv.AddData(req.Data)

	if !req.EOB {
		id, err := conv.Save(ctx)
		if err != nil {
			return Response{}, err
		}
		s.metrics.SessionOps.WithLabelValues("save").Inc()
		return Response{
			ID:               id,
			Status:           conv.Status(),
			Accumulated:      conv.Accumulated(),
			ValidationErrors: invalid,
		}, nil
	}

	start := time.Now()
	result, err := conv.Convert(ctx)
	if err != nil {
		return Response{}, err
	}
	s.metrics.ConvertDuration.Observe(time.Since(start).Seconds())
	s.metrics.ConversionItems.WithLabelValues("ok").Add(float64(len(result.Details)))
	s.metrics.ConversionItems.WithLabelValues("error").Add(float64(len(result.Errors)))
	s.metrics.BatchesFinalized.Inc()
	s.audit.Emit(ctx, audit.Event{
		Kind:   audit.KindBatchFinalized,
		System: system,
		Owner:  scope.UserID,
		Detail: map[string]string{
			"target_unit": result.TargetUnit,
			"details":     strconv.Itoa(len(result.Details)),
			"errors":      strconv.Itoa(len(result.Errors)),
		},
	})
	return Response{
		ID:               conv.ID(),
		Status:           conv.Status(),
		Accumulated:      conv.Accumulated(),
		ValidationErrors: invalid,
		Result:           &result,
	}, nil
}
