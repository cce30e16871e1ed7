package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"unitd/internal/converter"
	"unitd/internal/units"
	"unitd/pkg/domainerr"
	"unitd/pkg/platform/sentinel"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError translates domain errors into a JSON error envelope. Coded
// errors map directly; known sentinels get a code first so services can
// return them bare.
func WriteError(w http.ResponseWriter, err error) {
	var de *domainerr.Error
	if !errors.As(err, &de) {
		de = domainerr.Wrap(err, codeFor(err), err.Error())
	}
	WriteJSON(w, domainerr.HTTPStatus(de.Code), errorBody{
		Error:   string(de.Code),
		Message: de.Message,
	})
}

func codeFor(err error) domainerr.Code {
	switch {
	case errors.Is(err, units.ErrSystemNotFound),
		errors.Is(err, units.ErrUnitNotFound),
		errors.Is(err, units.ErrDimensionNotFound),
		errors.Is(err, sentinel.ErrNotFound):
		return domainerr.CodeNotFound
	case errors.Is(err, units.ErrUnitDuplicate),
		errors.Is(err, units.ErrDimensionDuplicate),
		errors.Is(err, sentinel.ErrConflict):
		return domainerr.CodeConflict
	case errors.Is(err, units.ErrParse),
		errors.Is(err, units.ErrUnitValue),
		errors.Is(err, units.ErrDimensionValue),
		errors.Is(err, units.ErrUnitDimension),
		errors.Is(err, units.ErrDimensionDimension):
		return domainerr.CodeUnprocessable
	case errors.Is(err, converter.ErrInit):
		return domainerr.CodeBadRequest
	case errors.Is(err, converter.ErrLoad):
		return domainerr.CodeGone
	default:
		return domainerr.CodeInternal
	}
}
