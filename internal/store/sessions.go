package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session can still authenticate requests at now.
func (s *AuthSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

type Sessions struct {
	db *DB
}

func NewSessions(db *DB) *Sessions {
	return &Sessions{db: db}
}

func (r *Sessions) Create(ctx context.Context, s *AuthSession) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO auth_sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`),
		s.ID, s.UserID, millis(s.CreatedAt), millis(s.ExpiresAt))
	if err != nil {
		return fmt.Errorf("create auth session: %w", translate(err))
	}
	return nil
}

func (r *Sessions) ByID(ctx context.Context, id string) (*AuthSession, error) {
	var (
		s                AuthSession
		created, expires int64
		revoked          sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(
		`SELECT id, user_id, created_at, expires_at, revoked_at FROM auth_sessions WHERE id = ?`), id).
		Scan(&s.ID, &s.UserID, &created, &expires, &revoked)
	if err != nil {
		return nil, translate(err)
	}
	s.CreatedAt = fromMillis(created)
	s.ExpiresAt = fromMillis(expires)
	if revoked.Valid {
		t := fromMillis(revoked.Int64)
		s.RevokedAt = &t
	}
	return &s, nil
}

// Revoke marks the session revoked. Revoking twice keeps the first timestamp.
func (r *Sessions) Revoke(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE auth_sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`), millis(at), id)
	if err != nil {
		return fmt.Errorf("revoke auth session: %w", err)
	}
	return nil
}

// DeleteStale removes sessions that expired before cutoff or were revoked
// before cutoff.
func (r *Sessions) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`DELETE FROM auth_sessions WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)`),
		millis(cutoff), millis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete stale sessions: %w", err)
	}
	return res.RowsAffected()
}
