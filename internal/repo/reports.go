package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/makerspace-access/internal/models"
)

// ReportRepo is the read-only query engine over the audit logs. Every query
// joins the log table against users (and devices where relevant) so the rows
// carry display names and need no follow-up lookups.
type ReportRepo struct {
	db DBTX
}

func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// ReportFilter holds the optional, AND-combined report filters. An enum
// filter whose value is not in the enum's value set is dropped, not rejected.
type ReportFilter struct {
	UserID       string
	AccessCardID string
	AccessNodeID string
	DeviceID     string
	Action       string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PerPage      int
}

func (f ReportFilter) limitOffset() (int, int) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return f.PerPage, (page - 1) * f.PerPage
}

// DeviceAccessRow is one scan event with user and device names joined in.
type DeviceAccessRow struct {
	UserID        string    `json:"userId"`
	UserFirstName string    `json:"userFirstName"`
	UserLastName  string    `json:"userLastName"`
	AccessCardID  string    `json:"accessCardId"`
	AccessNodeID  string    `json:"accessNodeId"`
	DeviceID      *string   `json:"deviceId,omitempty"`
	DeviceName    *string   `json:"deviceName,omitempty"`
	Action        string    `json:"action"`
	Success       bool      `json:"success"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DeviceAccess lists scan events from access_node_logs, newest first.
func (r *ReportRepo) DeviceAccess(ctx context.Context, f ReportFilter) ([]DeviceAccessRow, error) {
	var where []string
	var args []interface{}

	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("l.user_id = $%d", len(args)))
	}
	if f.AccessCardID != "" {
		args = append(args, f.AccessCardID)
		where = append(where, fmt.Sprintf("l.access_card_id = $%d", len(args)))
	}
	if f.AccessNodeID != "" {
		args = append(args, f.AccessNodeID)
		where = append(where, fmt.Sprintf("l.access_node_id = $%d", len(args)))
	}
	if f.DeviceID != "" {
		args = append(args, f.DeviceID)
		where = append(where, fmt.Sprintf("l.device_id = $%d", len(args)))
	}
	if f.Action != "" && models.ValidScanAction(f.Action) {
		args = append(args, f.Action)
		where = append(where, fmt.Sprintf("l.action = $%d", len(args)))
	}
	where, args = appendDateRange(where, args, f)

	query := `
		SELECT l.user_id, u.first_name, u.last_name, l.access_card_id, l.access_node_id,
			l.device_id, d.name, l.action, l.success, l.created_at
		FROM access_node_logs l
		JOIN users u ON l.user_id = u.id
		LEFT JOIN devices d ON l.device_id = d.id`
	query += whereClause(where)
	query += ` ORDER BY l.created_at DESC`
	query, args = paginate(query, args, f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DeviceAccessRow
	for rows.Next() {
		var row DeviceAccessRow
		if err := rows.Scan(&row.UserID, &row.UserFirstName, &row.UserLastName,
			&row.AccessCardID, &row.AccessNodeID, &row.DeviceID, &row.DeviceName,
			&row.Action, &row.Success, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CardEditRow is one card audit entry with the assignee's name joined in.
type CardEditRow struct {
	AccessCardID     string    `json:"accessCardId"`
	Status           string    `json:"status"`
	AssignedToUserID *string   `json:"assignedToUserId,omitempty"`
	UserFirstName    *string   `json:"userFirstName,omitempty"`
	UserLastName     *string   `json:"userLastName,omitempty"`
	CreatedByUserID  string    `json:"createdByUserId"`
	CreatedAt        time.Time `json:"createdAt"`
}

// AccessCardEdits lists card status/assignment changes, newest first.
func (r *ReportRepo) AccessCardEdits(ctx context.Context, f ReportFilter) ([]CardEditRow, error) {
	var where []string
	var args []interface{}

	if f.AccessCardID != "" {
		args = append(args, f.AccessCardID)
		where = append(where, fmt.Sprintf("l.access_card_id = $%d", len(args)))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("l.assigned_to_user_id = $%d", len(args)))
	}
	if f.Action != "" && models.ValidAccessCardStatus(f.Action) {
		args = append(args, f.Action)
		where = append(where, fmt.Sprintf("l.status = $%d", len(args)))
	}
	where, args = appendDateRange(where, args, f)

	query := `
		SELECT l.access_card_id, l.status, l.assigned_to_user_id, u.first_name, u.last_name,
			l.created_by_user_id, l.created_at
		FROM access_card_logs l
		LEFT JOIN users u ON l.assigned_to_user_id = u.id`
	query += whereClause(where)
	query += ` ORDER BY l.created_at DESC`
	query, args = paginate(query, args, f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CardEditRow
	for rows.Next() {
		var row CardEditRow
		if err := rows.Scan(&row.AccessCardID, &row.Status, &row.AssignedToUserID,
			&row.UserFirstName, &row.UserLastName, &row.CreatedByUserID, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// UserEditRow is one user edit entry with both names joined in.
type UserEditRow struct {
	UserID            string    `json:"userId"`
	UserFirstName     string    `json:"userFirstName"`
	UserLastName      string    `json:"userLastName"`
	Role              string    `json:"role"`
	Status            string    `json:"status"`
	EmergeAccessLevel string    `json:"eMergeAccessLevel"`
	UpdatedByUserID   string    `json:"updatedByUserId"`
	CreatedAt         time.Time `json:"createdAt"`
}

// UserEdits lists administrative user edits, newest first.
func (r *ReportRepo) UserEdits(ctx context.Context, f ReportFilter) ([]UserEditRow, error) {
	var where []string
	var args []interface{}

	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("l.user_id = $%d", len(args)))
	}
	if f.Action != "" && models.ValidUserStatus(f.Action) {
		args = append(args, f.Action)
		where = append(where, fmt.Sprintf("l.status = $%d", len(args)))
	}
	where, args = appendDateRange(where, args, f)

	query := `
		SELECT l.user_id, u.first_name, u.last_name, l.role, l.status,
			l.emerge_access_level, l.updated_by_user_id, l.created_at
		FROM user_edit_logs l
		JOIN users u ON l.user_id = u.id`
	query += whereClause(where)
	query += ` ORDER BY l.created_at DESC`
	query, args = paginate(query, args, f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserEditRow
	for rows.Next() {
		var row UserEditRow
		if err := rows.Scan(&row.UserID, &row.UserFirstName, &row.UserLastName,
			&row.Role, &row.Status, &row.EmergeAccessLevel, &row.UpdatedByUserID, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// UserAccessRow is one sign-in/out entry with the user's name joined in.
type UserAccessRow struct {
	UserID        string    `json:"userId"`
	UserFirstName string    `json:"userFirstName"`
	UserLastName  string    `json:"userLastName"`
	Action        string    `json:"action"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserAccess lists user sign-ins and sign-outs, newest first.
func (r *ReportRepo) UserAccess(ctx context.Context, f ReportFilter) ([]UserAccessRow, error) {
	var where []string
	var args []interface{}

	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("l.user_id = $%d", len(args)))
	}
	if f.Action != "" && models.ValidUserAccessAction(f.Action) {
		args = append(args, f.Action)
		where = append(where, fmt.Sprintf("l.action = $%d", len(args)))
	}
	where, args = appendDateRange(where, args, f)

	query := `
		SELECT l.user_id, u.first_name, u.last_name, l.action, l.created_at
		FROM user_access_logs l
		JOIN users u ON l.user_id = u.id`
	query += whereClause(where)
	query += ` ORDER BY l.created_at DESC`
	query, args = paginate(query, args, f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserAccessRow
	for rows.Next() {
		var row UserAccessRow
		if err := rows.Scan(&row.UserID, &row.UserFirstName, &row.UserLastName,
			&row.Action, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func appendDateRange(where []string, args []interface{}, f ReportFilter) ([]string, []interface{}) {
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where = append(where, fmt.Sprintf("l.created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where = append(where, fmt.Sprintf("l.created_at <= $%d", len(args)))
	}
	return where, args
}

func whereClause(where []string) string {
	if len(where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(where, " AND ")
}

func paginate(query string, args []interface{}, f ReportFilter) (string, []interface{}) {
	limit, offset := f.limitOffset()
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))
	return query, args
}
