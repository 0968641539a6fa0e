package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/crucial707/makerspace-access/internal/models"
)

// ==========================
// DeviceRepo
// ==========================
type DeviceRepo struct {
	db DBTX
}

func NewDeviceRepo(db *sql.DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

func (r *DeviceRepo) WithTx(tx *sql.Tx) *DeviceRepo {
	return &DeviceRepo{db: tx}
}

const deviceColumns = `id, type, name, status, created_at`

func scanDevice(row interface{ Scan(...interface{}) error }) (*models.Device, error) {
	d := &models.Device{}
	err := row.Scan(&d.ID, &d.Type, &d.Name, &d.Status, &d.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

// ==========================
// Create Device
// ==========================
func (r *DeviceRepo) Create(ctx context.Context, d *models.Device) (*models.Device, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO devices (id, type, name, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+deviceColumns,
		newID(), d.Type, d.Name, d.Status)
	return scanDevice(row)
}

// ==========================
// Get By ID
// ==========================
func (r *DeviceRepo) GetByID(ctx context.Context, id string) (*models.Device, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id)
	return scanDevice(row)
}

// ==========================
// Update Device (full field set, single statement)
// ==========================
func (r *DeviceRepo) Update(ctx context.Context, d *models.Device) (*models.Device, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE devices
		SET type = $1, name = $2, status = $3
		WHERE id = $4
		RETURNING `+deviceColumns,
		d.Type, d.Name, d.Status, d.ID)
	return scanDevice(row)
}

// ==========================
// Set Status
// ==========================
func (r *DeviceRepo) SetStatus(ctx context.Context, id string, status models.DeviceStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE devices SET status = $1 WHERE id = $2`, status, id)
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

// DeviceListFilter holds the optional list filters.
type DeviceListFilter struct {
	Type    string
	Status  string
	OrderBy string
	Desc    bool
	Page    int
	PerPage int
}

// ==========================
// List Devices (archived hidden unless a status filter is set)
// ==========================
func (r *DeviceRepo) List(ctx context.Context, f DeviceListFilter) ([]models.Device, error) {
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
		args = append(args, string(models.DeviceArchived))
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
	}
	if f.Desc {
		orderBy += " DESC"
	}

	query := `SELECT ` + deviceColumns + ` FROM devices WHERE ` + strings.Join(where, " AND ") +
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

	var devices []models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

// ==========================
// UserDeviceRepo (current assignment join table)
// ==========================
type UserDeviceRepo struct {
	db DBTX
}

func NewUserDeviceRepo(db *sql.DB) *UserDeviceRepo {
	return &UserDeviceRepo{db: db}
}

func (r *UserDeviceRepo) WithTx(tx *sql.Tx) *UserDeviceRepo {
	return &UserDeviceRepo{db: tx}
}

const userDeviceColumns = `id, device_id, assigned_to_user_id, assigned_by_user_id, assigned_at`

func scanUserDevice(row interface{ Scan(...interface{}) error }) (*models.UserDevice, error) {
	a := &models.UserDevice{}
	err := row.Scan(&a.ID, &a.DeviceID, &a.AssignedToUserID, &a.AssignedByUserID, &a.AssignedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// Create inserts the assignment row. The unique (user, device) index turns a
// concurrent double-assign into ErrConflict at commit time.
func (r *UserDeviceRepo) Create(ctx context.Context, deviceID, userID, byUserID string) (*models.UserDevice, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO user_devices (id, device_id, assigned_to_user_id, assigned_by_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userDeviceColumns,
		newID(), deviceID, userID, byUserID)
	return scanUserDevice(row)
}

// Get returns the live assignment for (device, user), if any.
func (r *UserDeviceRepo) Get(ctx context.Context, deviceID, userID string) (*models.UserDevice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userDeviceColumns+` FROM user_devices WHERE device_id = $1 AND assigned_to_user_id = $2`,
		deviceID, userID)
	return scanUserDevice(row)
}

// Delete removes the assignment for (device, user). ErrNotFound when no row matches.
func (r *UserDeviceRepo) Delete(ctx context.Context, deviceID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_devices WHERE device_id = $1 AND assigned_to_user_id = $2`,
		deviceID, userID)
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

// DeleteByUserID removes every device assignment held by a user (user archive cascade).
func (r *UserDeviceRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_devices WHERE assigned_to_user_id = $1`, userID)
	return err
}
