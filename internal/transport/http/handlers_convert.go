package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"unitd/internal/converter"
	"unitd/internal/platform/middleware"
	"unitd/internal/transport/http/shared"
	"unitd/internal/units"
	"unitd/pkg/domainerr"
)

// ConvertService drives the batch conversion protocol.
type ConvertService interface {
	Submit(ctx context.Context, system string, scope units.Scope, req converter.Request) (converter.Response, error)
}

// ConvertHandler serves the batch conversion endpoint.
type ConvertHandler struct {
	service ConvertService
	logger  *slog.Logger
}

func NewConvertHandler(service ConvertService, logger *slog.Logger) *ConvertHandler {
	return &ConvertHandler{service: service, logger: logger}
}

// Register mounts the conversion route on the router.
func (h *ConvertHandler) Register(r chi.Router) {
	r.Post("/systems/{system}/convert", h.handleConvert)
}

func (h *ConvertHandler) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req converter.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, domainerr.New(domainerr.CodeBadRequest, "invalid request body"))
		return
	}
	resp, err := h.service.Submit(ctx, chi.URLParam(r, "system"), middleware.GetScope(ctx), req)
	if err != nil {
		h.logger.WarnContext(ctx, "convert",
			slog.String("request_id", middleware.GetRequestID(ctx)),
			slog.String("error", err.Error()))
		shared.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Status == converter.StatusAccumulating {
		status = http.StatusAccepted
	}
	shared.WriteJSON(w, status, resp)
}
