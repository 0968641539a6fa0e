package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/crucial707/makerspace-access/internal/repo"
)

// ==========================
// ReportHandler
// ==========================
type ReportHandler struct {
	Repo *repo.ReportRepo
}

// parseReportFilter reads the shared report query params. Malformed dates are
// a 422; unknown enum values are passed through and silently ignored by the
// queries. Returns ok=false when the response has already been written.
func parseReportFilter(w http.ResponseWriter, r *http.Request) (repo.ReportFilter, bool) {
	page, perPage := parsePagination(r)
	q := r.URL.Query()

	f := repo.ReportFilter{
		UserID:       q.Get("userId"),
		AccessCardID: q.Get("accessCardId"),
		AccessNodeID: q.Get("accessNodeId"),
		DeviceID:     q.Get("deviceId"),
		Action:       q.Get("action"),
		Page:         page,
		PerPage:      perPage,
	}

	if s := q.Get("startDate"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"startDate": "must be YYYY-MM-DD"}, http.StatusUnprocessableEntity)
			return f, false
		}
		f.StartDate = &d
	}
	if s := q.Get("endDate"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"endDate": "must be YYYY-MM-DD"}, http.StatusUnprocessableEntity)
			return f, false
		}
		// end date covers the whole day
		end := d.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &end
	}

	return f, true
}

func writeReport(w http.ResponseWriter, f repo.ReportFilter, items interface{}, err error) {
	if err != nil {
		ServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items":   items,
		"page":    f.Page,
		"perPage": f.PerPage,
	})
}

// ==========================
// Reports
// ==========================
func (h *ReportHandler) DeviceAccess(w http.ResponseWriter, r *http.Request) {
	f, ok := parseReportFilter(w, r)
	if !ok {
		return
	}
	rows, err := h.Repo.DeviceAccess(r.Context(), f)
	writeReport(w, f, rows, err)
}

func (h *ReportHandler) AccessCardEdits(w http.ResponseWriter, r *http.Request) {
	f, ok := parseReportFilter(w, r)
	if !ok {
		return
	}
	rows, err := h.Repo.AccessCardEdits(r.Context(), f)
	writeReport(w, f, rows, err)
}

func (h *ReportHandler) UserEdits(w http.ResponseWriter, r *http.Request) {
	f, ok := parseReportFilter(w, r)
	if !ok {
		return
	}
	rows, err := h.Repo.UserEdits(r.Context(), f)
	writeReport(w, f, rows, err)
}

func (h *ReportHandler) UserAccess(w http.ResponseWriter, r *http.Request) {
	f, ok := parseReportFilter(w, r)
	if !ok {
		return
	}
	rows, err := h.Repo.UserAccess(r.Context(), f)
	writeReport(w, f, rows, err)
}
