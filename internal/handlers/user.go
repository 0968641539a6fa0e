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
// UserHandler
// ==========================
type UserHandler struct {
	Service *service.AssignmentService
	Repo    *repo.UserRepo
	Logs    *repo.AuditLogRepo
}

type userInput struct {
	Username          string `json:"username" validate:"required,min=2,max=255"`
	Password          string `json:"password" validate:"omitempty,min=8"`
	FirstName         string `json:"firstName" validate:"max=255"`
	LastName          string `json:"lastName" validate:"max=255"`
	Role              string `json:"role"`
	Status            string `json:"status"`
	EmergeAccessLevel string `json:"eMergeAccessLevel"`
}

// enumFields collects field errors for any enum value that is set but not on
// the allow list.
func (in *userInput) enumFields() map[string]string {
	fields := make(map[string]string)
	if in.Role != "" && !models.ValidUserRole(in.Role) {
		fields["role"] = "unknown role"
	}
	if in.Status != "" && !models.ValidUserStatus(in.Status) {
		fields["status"] = "unknown status"
	}
	if in.EmergeAccessLevel != "" && !models.ValidEmergeAccessLevel(in.EmergeAccessLevel) {
		fields["eMergeAccessLevel"] = "unknown access level"
	}
	return fields
}

func (in *userInput) params() service.UserParams {
	return service.UserParams{
		Username:          in.Username,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Password:          in.Password,
		Role:              models.UserRole(in.Role),
		Status:            models.UserStatus(in.Status),
		EmergeAccessLevel: models.EmergeAccessLevel(in.EmergeAccessLevel),
	}
}

// ==========================
// Create User
// ==========================
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input userInput
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
	if input.Password == "" {
		JSONValidationError(w, "validation failed", map[string]string{"password": "required"}, http.StatusUnprocessableEntity)
		return
	}
	if fields := input.enumFields(); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusUnprocessableEntity)
		return
	}

	user, err := h.Service.CreateUser(r.Context(), middleware.UserID(r.Context()), input.params())
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	q := r.URL.Query()

	// invalid enum filters are dropped, not errored
	role := q.Get("role")
	if !models.ValidUserRole(role) {
		role = ""
	}
	status := q.Get("status")
	if !models.ValidUserStatus(status) {
		status = ""
	}

	users, err := h.Repo.List(r.Context(), repo.UserListFilter{
		Role:    role,
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
		"items":   users,
		"page":    page,
		"perPage": perPage,
	})
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// ==========================
// Update User
// ==========================
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var input userInput
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

	user, err := h.Service.UpdateUser(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), input.params())
	if err != nil {
		ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// ==========================
// Archive User (soft delete)
// ==========================
func (h *UserHandler) ArchiveUser(w http.ResponseWriter, r *http.Request) {
	err := h.Service.ArchiveUser(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// User audit logs
// ==========================
func (h *UserHandler) UserEditLogs(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	logs, err := h.Logs.ListUserEditLogs(r.Context(), chi.URLParam(r, "id"), perPage, (page-1)*perPage)
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

func (h *UserHandler) UserAccessLogs(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	logs, err := h.Logs.ListUserAccessLogs(r.Context(), chi.URLParam(r, "id"), perPage, (page-1)*perPage)
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
