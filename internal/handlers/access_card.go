package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/crucial707/makerspace-access/internal/middleware"
	"github.com/crucial707/makerspace-access/internal/models"
	"github.com/crucial707/makerspace-access/internal/repo"
	"github.com/crucial707/makerspace-access/internal/service"
)

// ==========================
// AccessCardHandler
// ==========================
type AccessCardHandler struct {
	Service *service.AssignmentService
	Repo    *repo.AccessCardRepo
	Logs    *repo.AuditLogRepo
}

type cardInput struct {
	CardNumber   int    `json:"cardNumber" validate:"required,gt=0"`
	FacilityCode int    `json:"facilityCode" validate:"gte=0"`
	CardType     int    `json:"cardType" validate:"gte=0"`
	Status       string `json:"status"`
}

// ==========================
// Create Access Card
// ==========================
func (h *AccessCardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var input cardInput
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
	if input.Status != "" && !models.ValidAccessCardStatus(input.Status) {
		JSONValidationError(w, "validation failed", map[string]string{"status": "unknown status"}, http.StatusUnprocessableEntity)
		return
	}

	card, err := h.Service.CreateCard(r.Context(), middleware.UserID(r.Context()), service.CardParams{
		CardNumber:   input.CardNumber,
		FacilityCode: input.FacilityCode,
		CardType:     input.CardType,
		Status:       models.AccessCardStatus(input.Status),
	})
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(card)
}

// ==========================
// List Access Cards
// ==========================
func (h *AccessCardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	q := r.URL.Query()

	// invalid enum filters are dropped, not errored
	status := q.Get("status")
	if !models.ValidAccessCardStatus(status) {
		status = ""
	}

	f := repo.CardListFilter{
		Status:  status,
		OrderBy: q.Get("orderBy"),
		Desc:    q.Get("orderDir") == "desc",
		Page:    page,
		PerPage: perPage,
	}
	if v, err := strconv.Atoi(q.Get("cardType")); err == nil {
		f.CardType = v
	}
	if v, err := strconv.Atoi(q.Get("facilityCode")); err == nil {
		f.FacilityCode = v
	}

	cards, err := h.Repo.List(r.Context(), f)
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items":   cards,
		"page":    page,
		"perPage": perPage,
	})
}

// ==========================
// Get Access Card
// ==========================
func (h *AccessCardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(card)
}

// ==========================
// Update Access Card
// ==========================
func (h *AccessCardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var input cardInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if input.Status != "" && !models.ValidAccessCardStatus(input.Status) {
		JSONValidationError(w, "validation failed", map[string]string{"status": "unknown status"}, http.StatusUnprocessableEntity)
		return
	}

	card, err := h.Service.UpdateCard(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), service.CardParams{
		CardNumber:   input.CardNumber,
		FacilityCode: input.FacilityCode,
		CardType:     input.CardType,
		Status:       models.AccessCardStatus(input.Status),
	})
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(card)
}

// ==========================
// Archive Access Card (soft delete)
// ==========================
func (h *AccessCardHandler) ArchiveCard(w http.ResponseWriter, r *http.Request) {
	err := h.Service.ArchiveCard(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Assign / Unassign
// ==========================
type cardAssignmentInput struct {
	AccessCardID string `json:"accessCardId" validate:"required,len=36"`
	UserID       string `json:"userId" validate:"required,len=36"`
}

func (h *AccessCardHandler) AssignCard(w http.ResponseWriter, r *http.Request) {
	var input cardAssignmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	assignment, err := h.Service.AssignCard(r.Context(), middleware.UserID(r.Context()), input.AccessCardID, input.UserID)
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(assignment)
}

func (h *AccessCardHandler) UnassignCard(w http.ResponseWriter, r *http.Request) {
	var input cardAssignmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err := h.Service.UnassignCard(r.Context(), middleware.UserID(r.Context()), input.AccessCardID, input.UserID); err != nil {
		ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Card audit logs
// ==========================
func (h *AccessCardHandler) CardLogs(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	logs, err := h.Logs.ListCardLogs(r.Context(), chi.URLParam(r, "id"), perPage, (page-1)*perPage)
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items":   logs,
		"page":    page,
		"perPage": perPage,
	})
}
