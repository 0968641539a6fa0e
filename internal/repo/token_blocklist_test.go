package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestTokenBlocklistRepo_IsRevoked(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT 1 FROM token_blocklist WHERE jti = \$1`).
		WithArgs("revoked-jti").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM token_blocklist WHERE jti = \$1`).
		WithArgs("live-jti").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	repo := NewTokenBlocklistRepo(db)

	revoked, err := repo.IsRevoked(context.Background(), "revoked-jti")
	if err != nil || !revoked {
		t.Errorf("expected revoked=true, got %v, %v", revoked, err)
	}
	revoked, err = repo.IsRevoked(context.Background(), "live-jti")
	if err != nil || revoked {
		t.Errorf("expected revoked=false, got %v, %v", revoked, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTokenBlocklistRepo_RevokeTwiceIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO token_blocklist`).
		WithArgs("some-jti").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO token_blocklist`).
		WithArgs("some-jti").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewTokenBlocklistRepo(db)
	if err := repo.Revoke(context.Background(), "some-jti"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := repo.Revoke(context.Background(), "some-jti"); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTokenBlocklistRepo_DeleteOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cutoff := time.Now().AddDate(0, 0, -40)
	mock.ExpectExec(`DELETE FROM token_blocklist WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewTokenBlocklistRepo(db)
	n, err := repo.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 deleted, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
