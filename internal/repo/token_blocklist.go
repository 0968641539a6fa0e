package repo

import (
	"context"
	"database/sql"
	"time"
)

// TokenBlocklistRepo stores revoked JWT ids. Entries only matter until the
// token itself expires; a nightly job prunes anything older than the
// configured retention.
type TokenBlocklistRepo struct {
	db DBTX
}

func NewTokenBlocklistRepo(db *sql.DB) *TokenBlocklistRepo {
	return &TokenBlocklistRepo{db: db}
}

// Revoke records a token id. Revoking the same jti twice is a no-op.
func (r *TokenBlocklistRepo) Revoke(ctx context.Context, jti string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO token_blocklist (jti) VALUES ($1) ON CONFLICT (jti) DO NOTHING`, jti)
	return err
}

// IsRevoked reports whether a token id has been revoked.
func (r *TokenBlocklistRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM token_blocklist WHERE jti = $1`, jti).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteOlderThan removes entries created before the cutoff and returns the
// number removed.
func (r *TokenBlocklistRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM token_blocklist WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
