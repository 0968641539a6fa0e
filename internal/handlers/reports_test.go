package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/makerspace-access/internal/repo"
)

func TestReportHandler_MalformedStartDate(t *testing.T) {
	h := &ReportHandler{}
	req := httptest.NewRequest("GET", "/api/reports/deviceAccess?startDate=01-02-2026", nil)
	rr := httptest.NewRecorder()
	h.DeviceAccess(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rr.Code)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Fields["startDate"] != "must be YYYY-MM-DD" {
		t.Errorf("fields: %+v", body.Fields)
	}
}

func TestReportHandler_EndDateCoversWholeDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	end := time.Date(2026, 1, 31, 23, 59, 59, 999999999, time.UTC)
	mock.ExpectQuery(`WHERE l.created_at <= \$1 ORDER BY l.created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(end, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "first_name", "last_name", "access_card_id", "access_node_id",
			"device_id", "name", "action", "success", "created_at",
		}))

	h := &ReportHandler{Repo: repo.NewReportRepo(db)}
	req := httptest.NewRequest("GET", "/api/reports/deviceAccess?endDate=2026-01-31", nil)
	rr := httptest.NewRecorder()
	h.DeviceAccess(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReportHandler_UserAccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM user_access_logs l`).
		WithArgs("u-1", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "first_name", "last_name", "action", "created_at",
		}).AddRow("u-1", "Ada", "Lovelace", "login", time.Now()))

	h := &ReportHandler{Repo: repo.NewReportRepo(db)}
	req := httptest.NewRequest("GET", "/api/reports/userAccess?userId=u-1", nil)
	rr := httptest.NewRecorder()
	h.UserAccess(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"Ada"`) {
		t.Errorf("body: %s", rr.Body.String())
	}
}
