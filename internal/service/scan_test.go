package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/makerspace-access/internal/models"
)

func nodeRows(id string, deviceID *string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "type", "name", "mac_address", "status", "device_id",
		"last_accessed_user_id", "last_accessed_at", "created_at",
	}).AddRow(id, "machine", "Laser Cutter Node", "aa:bb:cc:dd:ee:ff", "enabled",
		deviceID, nil, nil, time.Now())
}

func TestScan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	deviceID := "d-1"
	mock.ExpectQuery(`FROM access_nodes WHERE id = \$1`).
		WithArgs("n-1").
		WillReturnRows(nodeRows("n-1", &deviceID))
	mock.ExpectQuery(`JOIN access_cards c ON a.access_card_id = c.id`).
		WithArgs(12345).
		WillReturnRows(assignmentRows("a-1", "c-1", "u-1"))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO access_node_logs`).
		WithArgs(sqlmock.AnyArg(), "n-1", "c-1", "u-1", "d-1", "login", true, "node-op").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE access_nodes SET last_accessed_user_id`).
		WithArgs("u-1", sqlmock.AnyArg(), "n-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewScanService(db)
	entry, err := svc.Scan(context.Background(), "node-op", "n-1", 12345, models.ScanLogin)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !entry.Success || entry.UserID != "u-1" || entry.AccessCardID != "c-1" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.DeviceID == nil || *entry.DeviceID != "d-1" {
		t.Errorf("expected device d-1 on entry, got %v", entry.DeviceID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScan_UnknownCard_NothingLogged(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM access_nodes WHERE id = \$1`).
		WithArgs("n-1").
		WillReturnRows(nodeRows("n-1", nil))
	mock.ExpectQuery(`JOIN access_cards c ON a.access_card_id = c.id`).
		WithArgs(99999).
		WillReturnRows(emptyAssignmentRows())

	svc := NewScanService(db)
	_, err = svc.Scan(context.Background(), "node-op", "n-1", 99999, models.ScanLogin)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	// no transaction and no log row on a denied scan
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScan_UnknownNode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM access_nodes WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	svc := NewScanService(db)
	_, err = svc.Scan(context.Background(), "node-op", "missing", 12345, models.ScanLogin)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScan_InvalidAction(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	svc := NewScanService(db)
	_, err = svc.Scan(context.Background(), "node-op", "n-1", 12345, models.ScanAction("wave"))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got: %v", err)
	}
}

// The assignment lookup never reads the card's own status, so a lost or
// inactive card with a live assignment row still scans through. A status
// check would have to join the status column in; it does not today.
func TestScan_DoesNotCheckCardStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM access_nodes WHERE id = \$1`).
		WithArgs("n-1").
		WillReturnRows(nodeRows("n-1", nil))
	// only the assignment columns come back; status is not part of the query
	mock.ExpectQuery(`JOIN access_cards c ON a.access_card_id = c.id`).
		WithArgs(12345).
		WillReturnRows(assignmentRows("a-1", "c-1", "u-1"))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO access_node_logs`).
		WithArgs(sqlmock.AnyArg(), "n-1", "c-1", "u-1", nil, "logout", true, "node-op").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE access_nodes SET last_accessed_user_id`).
		WithArgs("u-1", sqlmock.AnyArg(), "n-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewScanService(db)
	entry, err := svc.Scan(context.Background(), "node-op", "n-1", 12345, models.ScanLogout)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !entry.Success {
		t.Errorf("expected granted scan, got %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
