package repository

import (
	"context"
	"database/sql"
	"time"
)

// SessionRepo persists issued access tokens. The token string itself is
// the primary key, so a session can be revoked by deleting its row. A
// token is only accepted when its signature verifies AND a live session
// row exists; deleting the row at logout invalidates the token even
// before its exp claim passes.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row for an issued token.
func (r *SessionRepo) Create(ctx context.Context, token string, userID uint64, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO session (token, user_id, created_at, expires_at) VALUES (?,?,?,?)",
		token, userID, time.Now().UTC(), expiresAt.UTC())
	return err
}

// Exists reports whether a live (non-expired) session row exists for the
// token. Expired-but-unswept rows are treated as absent so a token dies at
// its expiry even if the sweeper has not run yet.
func (r *SessionRepo) Exists(ctx context.Context, token string) (bool, error) {
	var expiresAt time.Time
	err := r.DB.QueryRowContext(ctx,
		"SELECT expires_at FROM session WHERE token=? LIMIT 1", token).Scan(&expiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return time.Now().UTC().Before(expiresAt), nil
}

// Delete removes the session row for a token. Deleting an unknown token is
// not an error; logout is idempotent.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM session WHERE token=?", token)
	return err
}

// DeleteExpired prunes session rows whose expiry has passed and returns
// the number of rows removed. Called periodically from a background
// sweeper in main.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM session WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
