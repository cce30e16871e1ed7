package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Kind classifies an audit event.
type Kind string

const (
	KindCustomUnitAdmitted      Kind = "custom_unit_admitted"
	KindCustomDimensionAdmitted Kind = "custom_dimension_admitted"
	KindBatchFinalized          Kind = "batch_finalized"
)

// Event is an append-only record of an engine mutation.
type Event struct {
	Kind      Kind              `json:"kind"`
	System    string            `json:"system"`
	Code      string            `json:"code,omitempty"`
	Owner     string            `json:"owner,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Store persists audit events. Append-only so sinks can be swapped in tests.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// MemoryStore keeps events in process.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Publisher hands events to the worker without blocking the request path. A
// full inbox drops the event and logs; audit is best-effort by contract.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"kind", event.Kind, "code", event.Code)
	}
}

// Worker consumes audit events from a channel and persists them. It keeps
// background processing testable without wiring queue implementations.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return w.drain()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// drain flushes events still buffered in the inbox at shutdown.
func (w *Worker) drain() error {
	for {
		select {
		case event := <-w.inbox:
			if err := w.store.Append(context.Background(), event); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
