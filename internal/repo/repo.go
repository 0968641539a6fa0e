package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same repo methods can
// run standalone or inside a service-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Storage-level error taxonomy. Callers check with errors.Is.
var (
	// ErrNotFound is returned when a referenced id does not resolve.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a uniqueness constraint is violated.
	ErrConflict = errors.New("record conflict")
)

// pqUniqueViolation is the Postgres error code for unique_violation.
const pqUniqueViolation = "23505"

// mapError translates driver errors into the repo taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrConflict
	}
	return err
}

// newID generates the 36-character id used by every entity and log row.
func newID() string {
	return uuid.NewString()
}
