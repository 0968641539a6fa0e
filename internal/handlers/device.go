package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/crucial707/makerspace-access/internal/middleware"
	"github.com/crucial707/makerspace-access/internal/models"
	"github.com/crucial707/makerspace-access/internal/repo"
	"github.com/crucial707/makerspace-access/internal/service"
)

// ==========================
// DeviceHandler
// ==========================
type DeviceHandler struct {
	Service *service.AssignmentService
	Repo    *repo.DeviceRepo
}

type deviceInput struct {
	Type   string `json:"type" validate:"required"`
	Name   string `json:"name" validate:"required,min=2,max=255"`
	Status string `json:"status"`
}

func (in *deviceInput) enumFields() map[string]string {
	fields := make(map[string]string)
	if !models.ValidDeviceType(in.Type) {
		fields["type"] = "must be machine or door"
	}
	if in.Status != "" && !models.ValidDeviceStatus(in.Status) {
		fields["status"] = "unknown status"
	}
	return fields
}

// ==========================
// Create Device
// ==========================
func (h *DeviceHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var input deviceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if fields := input.enumFields(); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusUnprocessableEntity)
		return
	}

	d := &models.Device{
		Type:   models.DeviceType(input.Type),
		Name:   input.Name,
		Status: models.DeviceStatus(input.Status),
	}
	if d.Status == "" {
		d.Status = models.DeviceAvailable
	}

	device, err := h.Repo.Create(r.Context(), d)
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(device)
}

// ==========================
// List Devices
// ==========================
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	q := r.URL.Query()

	// invalid enum filters are dropped, not errored
	typ := q.Get("type")
	if !models.ValidDeviceType(typ) {
		typ = ""
	}
	status := q.Get("status")
	if !models.ValidDeviceStatus(status) {
		status = ""
	}

	devices, err := h.Repo.List(r.Context(), repo.DeviceListFilter{
		Type:    typ,
		Status:  status,
		OrderBy: q.Get("orderBy"),
		Desc:    q.Get("orderDir") == "desc",
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items":   devices,
		"page":    page,
		"perPage": perPage,
	})
}

// ==========================
// Get Device
// ==========================
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(device)
}

// ==========================
// Update Device
// ==========================
func (h *DeviceHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var input deviceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if fields := input.enumFields(); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusUnprocessableEntity)
		return
	}

	d, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ServiceError(w, err)
		return
	}
	d.Type = models.DeviceType(input.Type)
	d.Name = input.Name
	if input.Status != "" {
		d.Status = models.DeviceStatus(input.Status)
	}

	device, err := h.Repo.Update(r.Context(), d)
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(device)
}

// ==========================
// Archive Device (soft delete)
// ==========================
func (h *DeviceHandler) ArchiveDevice(w http.ResponseWriter, r *http.Request) {
	err := h.Repo.SetStatus(r.Context(), chi.URLParam(r, "id"), models.DeviceArchived)
	if err != nil {
		ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Assign / Unassign
// ==========================
type deviceAssignmentInput struct {
	DeviceID string `json:"deviceId" validate:"required,len=36"`
	UserID   string `json:"userId" validate:"required,len=36"`
}

func (h *DeviceHandler) AssignDevice(w http.ResponseWriter, r *http.Request) {
	var input deviceAssignmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	assignment, err := h.Service.AssignDevice(r.Context(), middleware.UserID(r.Context()), input.DeviceID, input.UserID)
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(assignment)
}

func (h *DeviceHandler) UnassignDevice(w http.ResponseWriter, r *http.Request) {
	var input deviceAssignmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err := h.Service.UnassignDevice(r.Context(), middleware.UserID(r.Context()), input.DeviceID, input.UserID); err != nil {
		ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
