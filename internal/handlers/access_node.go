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
// AccessNodeHandler
// ==========================
type AccessNodeHandler struct {
	Scans *service.ScanService
	Repo  *repo.AccessNodeRepo
}

type nodeInput struct {
	Type       string  `json:"type" validate:"required"`
	Name       string  `json:"name" validate:"required,min=2,max=255"`
	MacAddress string  `json:"macAddress" validate:"required,mac"`
	Status     string  `json:"status"`
	DeviceID   *string `json:"deviceId" validate:"omitempty,len=36"`
}

func (in *nodeInput) enumFields() map[string]string {
	fields := make(map[string]string)
	if !models.ValidDeviceType(in.Type) {
		fields["type"] = "must be machine or door"
	}
	if in.Status != "" && !models.ValidAccessNodeStatus(in.Status) {
		fields["status"] = "unknown status"
	}
	return fields
}

// ==========================
// Create Access Node
// ==========================
func (h *AccessNodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var input nodeInput
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

	n := &models.AccessNode{
		Type:       models.DeviceType(input.Type),
		Name:       input.Name,
		MacAddress: input.MacAddress,
		Status:     models.AccessNodeStatus(input.Status),
		DeviceID:   input.DeviceID,
	}
	if n.Status == "" {
		n.Status = models.NodeOffline
	}

	node, err := h.Repo.Create(r.Context(), n)
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(node)
}

// ==========================
// List Access Nodes
// ==========================
func (h *AccessNodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	q := r.URL.Query()

	// invalid enum filters are dropped, not errored
	typ := q.Get("type")
	if !models.ValidDeviceType(typ) {
		typ = ""
	}
	status := q.Get("status")
	if !models.ValidAccessNodeStatus(status) {
		status = ""
	}

	nodes, err := h.Repo.List(r.Context(), repo.NodeListFilter{
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
		"items":   nodes,
		"page":    page,
		"perPage": perPage,
	})
}

// ==========================
// Get Access Node
// ==========================
func (h *AccessNodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(node)
}

// ==========================
// Update Access Node
// ==========================
func (h *AccessNodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var input nodeInput
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

	n, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ServiceError(w, err)
		return
	}
	n.Type = models.DeviceType(input.Type)
	n.Name = input.Name
	n.MacAddress = input.MacAddress
	n.DeviceID = input.DeviceID
	if input.Status != "" {
		n.Status = models.AccessNodeStatus(input.Status)
	}

	node, err := h.Repo.Update(r.Context(), n)
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(node)
}

// ==========================
// Archive Access Node (soft delete)
// ==========================
func (h *AccessNodeHandler) ArchiveNode(w http.ResponseWriter, r *http.Request) {
	err := h.Repo.SetStatus(r.Context(), chi.URLParam(r, "id"), models.NodeArchived)
	if err != nil {
		ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Scan
// ==========================
func (h *AccessNodeHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CardNumber int    `json:"cardNumber" validate:"required,gt=0"`
		Action     string `json:"action" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	entry, err := h.Scans.Scan(r.Context(), middleware.UserID(r.Context()),
		chi.URLParam(r, "id"), input.CardNumber, models.ScanAction(input.Action))
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}
