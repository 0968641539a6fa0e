package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/makerspace-access/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	db DBTX
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// WithTx returns a copy of the repo bound to the given transaction.
func (r *UserRepo) WithTx(tx *sql.Tx) *UserRepo {
	return &UserRepo{db: tx}
}

const userColumns = `id, username, first_name, last_name, password_hash, role, status,
	emerge_access_level, last_logged_in_at, last_updated_at, last_updated_by_user_id, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.EmergeAccessLevel,
		&u.LastLoggedInAt,
		&u.LastUpdatedAt,
		&u.LastUpdatedByUserID,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// ==========================
// Create User
// ==========================
func (r *UserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, first_name, last_name, password_hash,
			role, status, emerge_access_level, last_updated_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		newID(),
		u.Username,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
		u.Role,
		u.Status,
		u.EmergeAccessLevel,
		u.LastUpdatedByUserID,
	)

	return scanUser(row)
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// ==========================
// Update User (full field set, single statement)
// ==========================
func (r *UserRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3, password_hash = $4,
			role = $5, status = $6, emerge_access_level = $7,
			last_updated_by_user_id = $8, last_updated_at = NOW()
		WHERE id = $9
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		u.Username,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
		u.Role,
		u.Status,
		u.EmergeAccessLevel,
		u.LastUpdatedByUserID,
		u.ID,
	)

	return scanUser(row)
}

// ==========================
// Touch Last Login
// ==========================
func (r *UserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_logged_in_at = $1 WHERE id = $2`, at, id)
	return err
}

// UserListFilter holds the optional list filters. Invalid enum values are
// dropped by the handler before they reach here.
type UserListFilter struct {
	Role    string
	Status  string
	OrderBy string
	Desc    bool
	Page    int
	PerPage int
}

// ==========================
// List Users (archived hidden unless a status filter is set)
// ==========================
func (r *UserRepo) List(ctx context.Context, f UserListFilter) ([]models.User, error) {
	var where []string
	var args []interface{}

	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	} else {
		args = append(args, string(models.UserArchived))
		where = append(where, fmt.Sprintf("status != $%d", len(args)))
	}

	orderBy := "username"
	switch f.OrderBy {
	case "firstName":
		orderBy = "first_name"
	case "lastName":
		orderBy = "last_name"
	case "date":
		orderBy = "created_at"
	case "updatedDate":
		orderBy = "last_updated_at"
	}
	if f.Desc {
		orderBy += " DESC"
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY ` + orderBy

	args = append(args, f.PerPage)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, (f.Page-1)*f.PerPage)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
