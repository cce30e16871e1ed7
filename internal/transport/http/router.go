package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"unitd/internal/platform/middleware"
	"unitd/internal/transport/http/shared"
)

// Health reports readiness of the backing stores.
type Health interface {
	Health(r *http.Request) error
}

// HealthFunc adapts a function to the Health interface.
type HealthFunc func(r *http.Request) error

func (f HealthFunc) Health(r *http.Request) error { return f(r) }

// NewRouter wires the public API. All routes run behind the scope-auth
// middleware: anonymous callers see global definitions only, bearer tokens
// select a user or keyed scope.
func NewRouter(units *UnitsHandler, convert *ConvertHandler, health Health, signingKey string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health.Health(req); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ScopeAuth(signingKey, logger))
		units.Register(r)
		convert.Register(r)
	})

	return r
}
