package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/makerspace-access/internal/models"
)

func userRows(id, username string, status models.UserStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "first_name", "last_name", "password_hash", "role", "status",
		"emerge_access_level", "last_logged_in_at", "last_updated_at", "last_updated_by_user_id", "created_at",
	}).AddRow(id, username, "Ada", "Lovelace", "$2a$10$hash", "user", string(status),
		"business hours access", nil, now, "admin-id", now)
}

func TestUserRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "ada", "Ada", "Lovelace", "$2a$10$hash",
			"user", "active", "business hours access", "admin-id").
		WillReturnRows(userRows("u-1", "ada", models.UserActive))

	repo := NewUserRepo(db)
	user, err := repo.Create(context.Background(), &models.User{
		Username:            "ada",
		FirstName:           "Ada",
		LastName:            "Lovelace",
		PasswordHash:        "$2a$10$hash",
		Role:                models.RoleUser,
		Status:              models.UserActive,
		EmergeAccessLevel:   models.EmergeBusinessHours,
		LastUpdatedByUserID: "admin-id",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != "u-1" || user.Username != "ada" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewUserRepo(db)
	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_List_HidesArchivedByDefault(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE status != \$1 ORDER BY username LIMIT \$2 OFFSET \$3`).
		WithArgs("archived", 20, 0).
		WillReturnRows(userRows("u-1", "ada", models.UserActive))

	repo := NewUserRepo(db)
	users, err := repo.List(context.Background(), UserListFilter{Page: 1, PerPage: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].Username != "ada" {
		t.Errorf("unexpected users: %+v", users)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_List_StatusFilterIncludesArchived(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE status = \$1 ORDER BY username LIMIT \$2 OFFSET \$3`).
		WithArgs("archived", 20, 0).
		WillReturnRows(userRows("u-9", "gone", models.UserArchived))

	repo := NewUserRepo(db)
	users, err := repo.List(context.Background(), UserListFilter{Status: "archived", Page: 1, PerPage: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].Status != models.UserArchived {
		t.Errorf("unexpected users: %+v", users)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_List_PaginationOffset(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// page 3 at 10 per page starts at row 20
	mock.ExpectQuery(`FROM users`).
		WithArgs("archived", 10, 20).
		WillReturnRows(userRows("u-21", "user21", models.UserActive))

	repo := NewUserRepo(db)
	if _, err := repo.List(context.Background(), UserListFilter{Page: 3, PerPage: 10}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_List_OrderByLastNameDesc(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`ORDER BY last_name DESC`).
		WithArgs("archived", 20, 0).
		WillReturnRows(userRows("u-1", "ada", models.UserActive))

	repo := NewUserRepo(db)
	if _, err := repo.List(context.Background(), UserListFilter{OrderBy: "lastName", Desc: true, Page: 1, PerPage: 20}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
