package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crucial707/makerspace-access/internal/service"
)

// Pagination bounds, overridable from config at startup.
var (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// parsePagination reads 1-based page and perPage query params, applying the
// default and ceiling. Bad values fall back to defaults rather than erroring.
func parsePagination(r *http.Request) (page, perPage int) {
	page = 1
	perPage = DefaultPerPage
	if p := r.URL.Query().Get("page"); p != "" {
		if val, err := strconv.Atoi(p); err == nil && val > 0 {
			page = val
		}
	}
	if pp := r.URL.Query().Get("perPage"); pp != "" {
		if val, err := strconv.Atoi(pp); err == nil && val > 0 {
			perPage = val
		}
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// ServiceError translates a service-layer error into the matching HTTP
// response. Unrecognized errors become a generic 500 with the detail kept in
// the server log.
func ServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		JSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrNotFound):
		JSONError(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrConflict):
		JSONError(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("request failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}
