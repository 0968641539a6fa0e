package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/makerspace-access/internal/metrics"
	"github.com/crucial707/makerspace-access/internal/middleware"
	"github.com/crucial707/makerspace-access/internal/models"
	"github.com/crucial707/makerspace-access/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users     *repo.UserRepo
	Blocklist *repo.TokenBlocklistRepo
	Logs      *repo.AuditLogRepo
	Secret    []byte
	TokenTTL  time.Duration
}

// ==========================
// Login (bcrypt verify; only active users may sign in)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), input.Username)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if user.Status != models.UserActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	ttl := h.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	// Create JWT token
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"jti":      uuid.NewString(),
		"exp":      time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	if err := h.Users.TouchLastLogin(r.Context(), user.ID, time.Now().UTC()); err != nil {
		slog.Error("touch last login failed", "user_id", user.ID, "error", err)
	}
	if err := h.Logs.AppendUserAccessLog(r.Context(), user.ID, models.UserAccessLogin); err != nil {
		slog.Error("user access log append failed", "user_id", user.ID, "error", err)
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": signed,
		"user":  user,
	})
}

// ==========================
// Logout (revoke the presented token's jti)
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	jti := middleware.TokenID(r.Context())
	if jti == "" {
		JSONError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if err := h.Blocklist.Revoke(r.Context(), jti); err != nil {
		ServiceError(w, err)
		return
	}
	userID := middleware.UserID(r.Context())
	if err := h.Logs.AppendUserAccessLog(r.Context(), userID, models.UserAccessLogout); err != nil {
		slog.Error("user access log append failed", "user_id", userID, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "logged out"})
}

// ==========================
// Valid (200 when the middleware let the request through)
// ==========================
func (h *AuthHandler) Valid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"valid":  true,
		"userId": middleware.UserID(r.Context()),
	})
}
