package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/makerspace-access/internal/repo"
)

func userRowWithPassword(t *testing.T, status, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "first_name", "last_name", "password_hash", "role", "status",
		"emerge_access_level", "last_logged_in_at", "last_updated_at", "last_updated_by_user_id", "created_at",
	}).AddRow("u-1", "ada", "Ada", "Lovelace", string(hash), "admin", status,
		"full day access", nil, now, "admin-id", now)
}

func TestAuthHandler_Login(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ada").
		WillReturnRows(userRowWithPassword(t, "active", "correct horse"))
	mock.ExpectExec(`UPDATE users SET last_logged_in_at = \$1 WHERE id = \$2`).
		WithArgs(sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_access_logs`).
		WithArgs(sqlmock.AnyArg(), "u-1", "login").
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := &AuthHandler{
		Users:  repo.NewUserRepo(db),
		Logs:   repo.NewAuditLogRepo(db),
		Secret: []byte("test-secret"),
	}
	body := []byte(`{"username":"ada","password":"correct horse"}`)
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Token == "" {
		t.Error("expected a signed token")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ada").
		WillReturnRows(userRowWithPassword(t, "active", "correct horse"))

	h := &AuthHandler{Users: repo.NewUserRepo(db), Secret: []byte("test-secret")}
	body := []byte(`{"username":"ada","password":"wrong"}`)
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestAuthHandler_Login_SuspendedUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ada").
		WillReturnRows(userRowWithPassword(t, "suspended", "correct horse"))

	h := &AuthHandler{Users: repo.NewUserRepo(db), Secret: []byte("test-secret")}
	body := []byte(`{"username":"ada","password":"correct horse"}`)
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestAuthHandler_Login_UnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := &AuthHandler{Users: repo.NewUserRepo(db), Secret: []byte("test-secret")}
	body := []byte(`{"username":"nobody","password":"whatever"}`)
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}
