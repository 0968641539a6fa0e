package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func deviceAccessRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"user_id", "first_name", "last_name", "access_card_id", "access_node_id",
		"device_id", "name", "action", "success", "created_at",
	}).AddRow("u-1", "Ada", "Lovelace", "c-1", "n-1", "d-1", "Laser Cutter", "login", true, time.Now())
}

func TestReportRepo_DeviceAccess_ActionFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE l.action = \$1 ORDER BY l.created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("login", 20, 0).
		WillReturnRows(deviceAccessRows())

	repo := NewReportRepo(db)
	rows, err := repo.DeviceAccess(context.Background(), ReportFilter{Action: "login", Page: 1, PerPage: 20})
	if err != nil {
		t.Fatalf("DeviceAccess: %v", err)
	}
	if len(rows) != 1 || rows[0].UserFirstName != "Ada" || !rows[0].Success {
		t.Errorf("unexpected rows: %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReportRepo_DeviceAccess_InvalidActionIgnored(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// an unknown action produces no WHERE clause at all
	mock.ExpectQuery(`ORDER BY l.created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(deviceAccessRows())

	repo := NewReportRepo(db)
	rows, err := repo.DeviceAccess(context.Background(), ReportFilter{Action: "bogus", Page: 1, PerPage: 20})
	if err != nil {
		t.Fatalf("DeviceAccess: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("unexpected rows: %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReportRepo_DeviceAccess_DateRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

	mock.ExpectQuery(`WHERE l.created_at >= \$1 AND l.created_at <= \$2`).
		WithArgs(start, end, 20, 0).
		WillReturnRows(deviceAccessRows())

	repo := NewReportRepo(db)
	_, err = repo.DeviceAccess(context.Background(), ReportFilter{
		StartDate: &start, EndDate: &end, Page: 1, PerPage: 20,
	})
	if err != nil {
		t.Fatalf("DeviceAccess: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReportRepo_UserAccess(t *testing.T) {
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

	repo := NewReportRepo(db)
	rows, err := repo.UserAccess(context.Background(), ReportFilter{UserID: "u-1", Page: 1, PerPage: 20})
	if err != nil {
		t.Fatalf("UserAccess: %v", err)
	}
	if len(rows) != 1 || rows[0].Action != "login" {
		t.Errorf("unexpected rows: %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
