package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/makerspace-access/internal/models"
)

// AuditLogRepo owns the append operation for every audit log table. Rows are
// immutable once written; there are no update or delete methods on purpose.
// Appends that belong to an entity mutation must run on the same transaction
// via WithTx so the log and the mutation commit together.
type AuditLogRepo struct {
	db DBTX
}

func NewAuditLogRepo(db *sql.DB) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

func (r *AuditLogRepo) WithTx(tx *sql.Tx) *AuditLogRepo {
	return &AuditLogRepo{db: tx}
}

// AppendCardLog snapshots a card's status and assignment after a mutation.
func (r *AuditLogRepo) AppendCardLog(ctx context.Context, l *models.AccessCardLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_card_logs (id, access_card_id, status, assigned_to_user_id, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5)`,
		newID(), l.AccessCardID, l.Status, l.AssignedToUserID, l.CreatedByUserID)
	return mapError(err)
}

// AppendDeviceAssignmentLog records a device assignment or unassignment.
func (r *AuditLogRepo) AppendDeviceAssignmentLog(ctx context.Context, l *models.DeviceAssignmentLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO device_assignment_logs (id, device_id, assigned_to_user_id, assigned, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5)`,
		newID(), l.DeviceID, l.AssignedToUserID, l.Assigned, l.CreatedByUserID)
	return mapError(err)
}

// AppendUserEditLog snapshots a user's role, status and access level after an edit.
func (r *AuditLogRepo) AppendUserEditLog(ctx context.Context, l *models.UserEditLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_edit_logs (id, user_id, role, status, emerge_access_level, updated_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		newID(), l.UserID, l.Role, l.Status, l.EmergeAccessLevel, l.UpdatedByUserID)
	return mapError(err)
}

// AppendUserAccessLog records a user sign-in or sign-out.
func (r *AuditLogRepo) AppendUserAccessLog(ctx context.Context, userID string, action models.UserAccessAction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_access_logs (id, user_id, action)
		VALUES ($1, $2, $3)`,
		newID(), userID, action)
	return mapError(err)
}

// AppendNodeLog records the outcome of a card scan at a node.
func (r *AuditLogRepo) AppendNodeLog(ctx context.Context, l *models.AccessNodeLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_node_logs (id, access_node_id, access_card_id, user_id, device_id, action, success, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		newID(), l.AccessNodeID, l.AccessCardID, l.UserID, l.DeviceID, l.Action, l.Success, l.CreatedByUserID)
	return mapError(err)
}

// ListCardLogs returns a card's history, newest first.
func (r *AuditLogRepo) ListCardLogs(ctx context.Context, cardID string, limit, offset int) ([]models.AccessCardLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, access_card_id, status, assigned_to_user_id, created_by_user_id, created_at
		FROM access_card_logs
		WHERE access_card_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		cardID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AccessCardLog
	for rows.Next() {
		var l models.AccessCardLog
		if err := rows.Scan(&l.ID, &l.AccessCardID, &l.Status, &l.AssignedToUserID, &l.CreatedByUserID, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListUserEditLogs returns a user's edit history, newest first.
func (r *AuditLogRepo) ListUserEditLogs(ctx context.Context, userID string, limit, offset int) ([]models.UserEditLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, role, status, emerge_access_level, updated_by_user_id, created_at
		FROM user_edit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.UserEditLog
	for rows.Next() {
		var l models.UserEditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Role, &l.Status, &l.EmergeAccessLevel, &l.UpdatedByUserID, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListUserAccessLogs returns a user's sign-in history, newest first.
func (r *AuditLogRepo) ListUserAccessLogs(ctx context.Context, userID string, limit, offset int) ([]models.UserAccessLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, action, created_at
		FROM user_access_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.UserAccessLog
	for rows.Next() {
		var l models.UserAccessLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
