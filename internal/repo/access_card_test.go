package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/crucial707/makerspace-access/internal/models"
)

func cardRows(id string, cardNumber int, status models.AccessCardStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "card_number", "facility_code", "card_type", "status",
		"last_updated_at", "last_updated_by_user_id", "created_at",
	}).AddRow(id, cardNumber, 77, 35, string(status), now, "admin-id", now)
}

func assignmentRows(id, cardID, userID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "access_card_id", "assigned_to_user_id", "assigned_by_user_id", "created_at",
	}).AddRow(id, cardID, userID, "admin-id", time.Now())
}

func TestAccessCardRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM access_cards WHERE id = \$1`).
		WithArgs("c-1").
		WillReturnRows(cardRows("c-1", 12345, models.CardActive))

	repo := NewAccessCardRepo(db)
	card, err := repo.GetByID(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if card.CardNumber != 12345 || card.Status != models.CardActive {
		t.Errorf("unexpected card: %+v", card)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAccessCardRepo_Create_DuplicateNumberIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO access_cards`).
		WithArgs(sqlmock.AnyArg(), 12345, 77, 35, "active", "admin-id").
		WillReturnError(&pq.Error{Code: "23505"})

	repo := NewAccessCardRepo(db)
	_, err = repo.Create(context.Background(), &models.AccessCard{
		CardNumber:          12345,
		FacilityCode:        77,
		CardType:            35,
		Status:              models.CardActive,
		LastUpdatedByUserID: "admin-id",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAccessCardRepo_SetStatus_MissingCard(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE access_cards SET status`).
		WithArgs("lost", "admin-id", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAccessCardRepo(db)
	err = repo.SetStatus(context.Background(), "missing", models.CardLost, "admin-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserAccessCardRepo_GetAssignmentByCardNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`JOIN access_cards c ON a.access_card_id = c.id`).
		WithArgs(12345).
		WillReturnRows(assignmentRows("a-1", "c-1", "u-1"))

	repo := NewUserAccessCardRepo(db)
	a, err := repo.GetAssignmentByCardNumber(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetAssignmentByCardNumber: %v", err)
	}
	if a.AccessCardID != "c-1" || a.AssignedToUserID != "u-1" {
		t.Errorf("unexpected assignment: %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserAccessCardRepo_GetAssignmentByCardNumber_Unassigned(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`JOIN access_cards c ON a.access_card_id = c.id`).
		WithArgs(99999).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewUserAccessCardRepo(db)
	_, err = repo.GetAssignmentByCardNumber(context.Background(), 99999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserAccessCardRepo_Delete_NoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM user_access_cards WHERE access_card_id`).
		WithArgs("c-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserAccessCardRepo(db)
	err = repo.Delete(context.Background(), "c-1", "u-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserAccessCardRepo_Create_SecondAssignIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// unique index on access_card_id rejects the second assignment
	mock.ExpectQuery(`INSERT INTO user_access_cards`).
		WithArgs(sqlmock.AnyArg(), "c-1", "u-2", "admin-id").
		WillReturnError(&pq.Error{Code: "23505"})

	repo := NewUserAccessCardRepo(db)
	_, err = repo.Create(context.Background(), "c-1", "u-2", "admin-id")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
