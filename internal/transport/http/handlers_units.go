package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"unitd/internal/platform/middleware"
	"unitd/internal/transport/http/shared"
	"unitd/internal/units"
	unitsservice "unitd/internal/units/service"
	"unitd/internal/units/store"
	"unitd/pkg/domainerr"
)

// UnitsService defines the engine operations the units endpoints need.
type UnitsService interface {
	Systems(descending bool) []string
	System(ctx context.Context, system string, scope units.Scope) (unitsservice.SystemInfo, error)
	Dimensions(ctx context.Context, system string, scope units.Scope, ordering string) ([]unitsservice.DimensionInfo, error)
	Units(ctx context.Context, system string, scope units.Scope, dimension, ordering string) ([]unitsservice.UnitInfo, error)
	Unit(ctx context.Context, system string, scope units.Scope, code string) (unitsservice.UnitInfo, error)
	CompatibleUnits(ctx context.Context, system string, scope units.Scope, code string) ([]unitsservice.UnitInfo, error)
	UnitsPerDimension(ctx context.Context, system string, scope units.Scope) (map[string][]unitsservice.UnitInfo, error)
	CreateCustomUnit(ctx context.Context, system string, scope units.Scope, input unitsservice.CustomUnitInput) (unitsservice.UnitInfo, error)
	CreateCustomDimension(ctx context.Context, system string, scope units.Scope, input unitsservice.CustomDimensionInput) (unitsservice.DimensionInfo, error)
	ListCustomUnits(ctx context.Context, system string, scope units.Scope) ([]store.CustomUnitRow, error)
	ListCustomDimensions(ctx context.Context, system string, scope units.Scope) ([]store.CustomDimensionRow, error)
}

// UnitsHandler serves system, dimension, unit and custom definition
// endpoints.
type UnitsHandler struct {
	service UnitsService
	logger  *slog.Logger
}

func NewUnitsHandler(service UnitsService, logger *slog.Logger) *UnitsHandler {
	return &UnitsHandler{service: service, logger: logger}
}

// Register mounts the units routes on the router.
func (h *UnitsHandler) Register(r chi.Router) {
	r.Get("/systems", h.handleListSystems)
	r.Route("/systems/{system}", func(r chi.Router) {
		r.Get("/", h.handleGetSystem)
		r.Get("/dimensions", h.handleListDimensions)
		r.Get("/units", h.handleListUnits)
		r.Get("/units/per-dimension", h.handleUnitsPerDimension)
		r.Get("/units/{code}", h.handleGetUnit)
		r.Get("/units/{code}/compatible", h.handleCompatibleUnits)
		r.Route("/custom", func(r chi.Router) {
			r.Get("/units", h.handleListCustomUnits)
			r.Post("/units", h.handleCreateCustomUnit)
			r.Get("/dimensions", h.handleListCustomDimensions)
			r.Post("/dimensions", h.handleCreateCustomDimension)
		})
	})
}

func (h *UnitsHandler) handleListSystems(w http.ResponseWriter, r *http.Request) {
	descending := r.URL.Query().Get("ordering") == "-name"
	shared.WriteJSON(w, http.StatusOK, map[string]any{"systems": h.service.Systems(descending)})
}

func (h *UnitsHandler) handleGetSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	info, err := h.service.System(ctx, chi.URLParam(r, "system"), middleware.GetScope(ctx))
	if err != nil {
		h.writeError(ctx, w, "get system", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, info)
}

func (h *UnitsHandler) handleListDimensions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dims, err := h.service.Dimensions(ctx, chi.URLParam(r, "system"), middleware.GetScope(ctx), r.URL.Query().Get("ordering"))
	if err != nil {
		h.writeError(ctx, w, "list dimensions", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"dimensions": dims})
}

func (h *UnitsHandler) handleListUnits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	list, err := h.service.Units(ctx, chi.URLParam(r, "system"), middleware.GetScope(ctx), q.Get("dimension"), q.Get("ordering"))
	if err != nil {
		h.writeError(ctx, w, "list units", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"units": list})
}

func (h *UnitsHandler) handleUnitsPerDimension(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	grouped, err := h.service.UnitsPerDimension(ctx, chi.URLParam(r, "system"), middleware.GetScope(ctx))
	if err != nil {
		h.writeError(ctx, w, "units per dimension", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, grouped)
}

func (h *UnitsHandler) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	info, err := h.service.Unit(ctx, chi.URLParam(r, "system"), middleware.GetScope(ctx), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(ctx, w, "get unit", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, info)
}

func (h *UnitsHandler) handleCompatibleUnits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.CompatibleUnits(ctx, chi.URLParam(r, "system"), middleware.GetScope(ctx), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(ctx, w, "compatible units", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"units": list})
}

func (h *UnitsHandler) handleCreateCustomUnit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)
	if scope.IsGlobal() && !scope.Privileged {
		shared.WriteError(w, domainerr.New(domainerr.CodeUnauthorized, "custom definitions require authentication"))
		return
	}
	var input unitsservice.CustomUnitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, domainerr.New(domainerr.CodeBadRequest, "invalid request body"))
		return
	}
	info, err := h.service.CreateCustomUnit(ctx, chi.URLParam(r, "system"), scope, input)
	if err != nil {
		h.writeError(ctx, w, "create custom unit", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, info)
}

func (h *UnitsHandler) handleCreateCustomDimension(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)
	if scope.IsGlobal() && !scope.Privileged {
		shared.WriteError(w, domainerr.New(domainerr.CodeUnauthorized, "custom definitions require authentication"))
		return
	}
	var input unitsservice.CustomDimensionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, domainerr.New(domainerr.CodeBadRequest, "invalid request body"))
		return
	}
	info, err := h.service.CreateCustomDimension(ctx, chi.URLParam(r, "system"), scope, input)
	if err != nil {
		h.writeError(ctx, w, "create custom dimension", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, info)
}

func (h *UnitsHandler) handleListCustomUnits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.service.ListCustomUnits(ctx, chi.URLParam(r, "system"), middleware.GetScope(ctx))
	if err != nil {
		h.writeError(ctx, w, "list custom units", err)
		return
	}
	if rows == nil {
		rows = []store.CustomUnitRow{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"units": rows})
}

func (h *UnitsHandler) handleListCustomDimensions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.service.ListCustomDimensions(ctx, chi.URLParam(r, "system"), middleware.GetScope(ctx))
	if err != nil {
		h.writeError(ctx, w, "list custom dimensions", err)
		return
	}
	if rows == nil {
		rows = []store.CustomDimensionRow{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"dimensions": rows})
}

func (h *UnitsHandler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.logger.WarnContext(ctx, op,
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("error", err.Error()))
	shared.WriteError(w, err)
}
