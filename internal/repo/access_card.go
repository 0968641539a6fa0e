package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/crucial707/makerspace-access/internal/models"
)

// ==========================
// AccessCardRepo
// ==========================
type AccessCardRepo struct {
	db DBTX
}

func NewAccessCardRepo(db *sql.DB) *AccessCardRepo {
	return &AccessCardRepo{db: db}
}

func (r *AccessCardRepo) WithTx(tx *sql.Tx) *AccessCardRepo {
	return &AccessCardRepo{db: tx}
}

const cardColumns = `id, card_number, facility_code, card_type, status,
	last_updated_at, last_updated_by_user_id, created_at`

func scanCard(row interface{ Scan(...interface{}) error }) (*models.AccessCard, error) {
	c := &models.AccessCard{}
	err := row.Scan(
		&c.ID,
		&c.CardNumber,
		&c.FacilityCode,
		&c.CardType,
		&c.Status,
		&c.LastUpdatedAt,
		&c.LastUpdatedByUserID,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// ==========================
// Create Access Card
// ==========================
func (r *AccessCardRepo) Create(ctx context.Context, c *models.AccessCard) (*models.AccessCard, error) {
	query := `
		INSERT INTO access_cards (id, card_number, facility_code, card_type, status, last_updated_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + cardColumns

	row := r.db.QueryRowContext(ctx, query,
		newID(),
		c.CardNumber,
		c.FacilityCode,
		c.CardType,
		c.Status,
		c.LastUpdatedByUserID,
	)

	return scanCard(row)
}

// ==========================
// Get By ID
// ==========================
func (r *AccessCardRepo) GetByID(ctx context.Context, id string) (*models.AccessCard, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM access_cards WHERE id = $1`, id)
	return scanCard(row)
}

// ==========================
// Get By Card Number
// ==========================
func (r *AccessCardRepo) GetByCardNumber(ctx context.Context, cardNumber int) (*models.AccessCard, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM access_cards WHERE card_number = $1`, cardNumber)
	return scanCard(row)
}

// ==========================
// Update Access Card (full field set, single statement)
// ==========================
func (r *AccessCardRepo) Update(ctx context.Context, c *models.AccessCard) (*models.AccessCard, error) {
	query := `
		UPDATE access_cards
		SET card_number = $1, facility_code = $2, card_type = $3, status = $4,
			last_updated_by_user_id = $5, last_updated_at = NOW()
		WHERE id = $6
		RETURNING ` + cardColumns

	row := r.db.QueryRowContext(ctx, query,
		c.CardNumber,
		c.FacilityCode,
		c.CardType,
		c.Status,
		c.LastUpdatedByUserID,
		c.ID,
	)

	return scanCard(row)
}

// ==========================
// Set Status (used by cascades; keeps last_updated_by in step)
// ==========================
func (r *AccessCardRepo) SetStatus(ctx context.Context, id string, status models.AccessCardStatus, byUserID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE access_cards SET status = $1, last_updated_by_user_id = $2, last_updated_at = NOW() WHERE id = $3`,
		status, byUserID, id)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CardListFilter holds the optional list filters.
type CardListFilter struct {
	CardType     int
	FacilityCode int
	Status       string
	OrderBy      string
	Desc         bool
	Page         int
	PerPage      int
}

// ==========================
// List Access Cards (archived hidden unless a status filter is set)
// ==========================
func (r *AccessCardRepo) List(ctx context.Context, f CardListFilter) ([]models.AccessCard, error) {
	var where []string
	var args []interface{}

	if f.CardType != 0 {
		args = append(args, f.CardType)
		where = append(where, fmt.Sprintf("card_type = $%d", len(args)))
	}
	if f.FacilityCode != 0 {
		args = append(args, f.FacilityCode)
		where = append(where, fmt.Sprintf("facility_code = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	} else {
		args = append(args, string(models.CardArchived))
		where = append(where, fmt.Sprintf("status != $%d", len(args)))
	}

	orderBy := "card_number"
	switch f.OrderBy {
	case "date":
		orderBy = "created_at"
	case "updatedDate":
		orderBy = "last_updated_at"
	case "cardType":
		orderBy = "card_type"
	case "facilityCode":
		orderBy = "facility_code"
	}
	if f.Desc {
		orderBy += " DESC"
	}

	query := `SELECT ` + cardColumns + ` FROM access_cards WHERE ` + strings.Join(where, " AND ") +
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

	var cards []models.AccessCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

// ==========================
// UserAccessCardRepo (current assignment join table)
// ==========================
type UserAccessCardRepo struct {
	db DBTX
}

func NewUserAccessCardRepo(db *sql.DB) *UserAccessCardRepo {
	return &UserAccessCardRepo{db: db}
}

func (r *UserAccessCardRepo) WithTx(tx *sql.Tx) *UserAccessCardRepo {
	return &UserAccessCardRepo{db: tx}
}

const userCardColumns = `id, access_card_id, assigned_to_user_id, assigned_by_user_id, created_at`

func scanUserCard(row interface{ Scan(...interface{}) error }) (*models.UserAccessCard, error) {
	a := &models.UserAccessCard{}
	err := row.Scan(&a.ID, &a.AccessCardID, &a.AssignedToUserID, &a.AssignedByUserID, &a.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// Create inserts the assignment row. The unique index on access_card_id turns
// a concurrent double-assign into ErrConflict at commit time.
func (r *UserAccessCardRepo) Create(ctx context.Context, cardID, userID, byUserID string) (*models.UserAccessCard, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO user_access_cards (id, access_card_id, assigned_to_user_id, assigned_by_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userCardColumns,
		newID(), cardID, userID, byUserID)
	return scanUserCard(row)
}

// GetByCardID returns the live assignment for a card, if any.
func (r *UserAccessCardRepo) GetByCardID(ctx context.Context, cardID string) (*models.UserAccessCard, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userCardColumns+` FROM user_access_cards WHERE access_card_id = $1`, cardID)
	return scanUserCard(row)
}

// GetAssignmentByCardNumber resolves the live assignment for a card number in
// one lookup. ErrNotFound covers both an unknown card and an unassigned one —
// the scan path treats the two the same way.
func (r *UserAccessCardRepo) GetAssignmentByCardNumber(ctx context.Context, cardNumber int) (*models.UserAccessCard, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT a.id, a.access_card_id, a.assigned_to_user_id, a.assigned_by_user_id, a.created_at
		FROM user_access_cards a
		JOIN access_cards c ON a.access_card_id = c.id
		WHERE c.card_number = $1`,
		cardNumber)
	return scanUserCard(row)
}

// ListByUserID returns all live assignments held by a user.
func (r *UserAccessCardRepo) ListByUserID(ctx context.Context, userID string) ([]models.UserAccessCard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userCardColumns+` FROM user_access_cards WHERE assigned_to_user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserAccessCard
	for rows.Next() {
		a, err := scanUserCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Delete removes the assignment for (card, user). ErrNotFound when no row matches.
func (r *UserAccessCardRepo) Delete(ctx context.Context, cardID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_access_cards WHERE access_card_id = $1 AND assigned_to_user_id = $2`,
		cardID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByUserID removes every assignment held by a user (user archive cascade).
func (r *UserAccessCardRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_access_cards WHERE assigned_to_user_id = $1`, userID)
	return err
}
