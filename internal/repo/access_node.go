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
// AccessNodeRepo
// ==========================
type AccessNodeRepo struct {
	db DBTX
}

func NewAccessNodeRepo(db *sql.DB) *AccessNodeRepo {
	return &AccessNodeRepo{db: db}
}

func (r *AccessNodeRepo) WithTx(tx *sql.Tx) *AccessNodeRepo {
	return &AccessNodeRepo{db: tx}
}

const nodeColumns = `id, type, name, mac_address, status, device_id,
	last_accessed_user_id, last_accessed_at, created_at`

func scanNode(row interface{ Scan(...interface{}) error }) (*models.AccessNode, error) {
	n := &models.AccessNode{}
	err := row.Scan(
		&n.ID,
		&n.Type,
		&n.Name,
		&n.MacAddress,
		&n.Status,
		&n.DeviceID,
		&n.LastAccessedUserID,
		&n.LastAccessedAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return n, nil
}

// ==========================
// Create Access Node
// ==========================
func (r *AccessNodeRepo) Create(ctx context.Context, n *models.AccessNode) (*models.AccessNode, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO access_nodes (id, type, name, mac_address, status, device_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+nodeColumns,
		newID(), n.Type, n.Name, n.MacAddress, n.Status, n.DeviceID)
	return scanNode(row)
}

// ==========================
// Get By ID
// ==========================
func (r *AccessNodeRepo) GetByID(ctx context.Context, id string) (*models.AccessNode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM access_nodes WHERE id = $1`, id)
	return scanNode(row)
}

// ==========================
// Update Access Node (full field set, single statement)
// ==========================
func (r *AccessNodeRepo) Update(ctx context.Context, n *models.AccessNode) (*models.AccessNode, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE access_nodes
		SET type = $1, name = $2, mac_address = $3, status = $4, device_id = $5
		WHERE id = $6
		RETURNING `+nodeColumns,
		n.Type, n.Name, n.MacAddress, n.Status, n.DeviceID, n.ID)
	return scanNode(row)
}

// ==========================
// Set Status
// ==========================
func (r *AccessNodeRepo) SetStatus(ctx context.Context, id string, status models.AccessNodeStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE access_nodes SET status = $1 WHERE id = $2`, status, id)
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

// ==========================
// Touch Last Access (successful scan bookkeeping)
// ==========================
func (r *AccessNodeRepo) TouchLastAccess(ctx context.Context, id, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE access_nodes SET last_accessed_user_id = $1, last_accessed_at = $2 WHERE id = $3`,
		userID, at, id)
	return err
}

// NodeListFilter holds the optional list filters.
type NodeListFilter struct {
	Type    string
	Status  string
	OrderBy string
	Desc    bool
	Page    int
	PerPage int
}

// ==========================
// List Access Nodes (archived hidden unless a status filter is set)
// ==========================
func (r *AccessNodeRepo) List(ctx context.Context, f NodeListFilter) ([]models.AccessNode, error) {
	var where []string
	var args []interface{}

	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	} else {
		args = append(args, string(models.NodeArchived))
		where = append(where, fmt.Sprintf("status != $%d", len(args)))
	}

	orderBy := "name"
	switch f.OrderBy {
	case "date":
		orderBy = "created_at"
	case "type":
		orderBy = "type"
	case "status":
		orderBy = "status"
	case "macAddress":
		orderBy = "mac_address"
	}
	if f.Desc {
		orderBy += " DESC"
	}

	query := `SELECT ` + nodeColumns + ` FROM access_nodes WHERE ` + strings.Join(where, " AND ") +
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

	var nodes []models.AccessNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *n)
	}
	return nodes, rows.Err()
}
