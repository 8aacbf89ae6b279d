package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/mediation-app/internal/httpx"
	"github.com/diewo77/mediation-app/internal/services"
)

// writeServiceError translates the service error taxonomy into JSON
// responses. Anything unrecognized is an opaque storage failure.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{vErr.Field: vErr.Code})
		return
	}
	var rErr *services.ReferentialIntegrityError
	if errors.As(err, &rErr) {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_reference", map[string]string{rErr.Field: "does_not_exist"})
		return
	}
	var dErr *services.DependencyExistsError
	if errors.As(err, &dErr) {
		httpx.JSONError(w, http.StatusConflict, "dependency_exists", map[string]string{"dependency": dErr.Dependency})
		return
	}
	if errors.Is(err, services.ErrSelfReference) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"parent_id": "self_reference"})
		return
	}
	if errors.Is(err, services.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}
