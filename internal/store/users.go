package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Users struct {
	db *DB
}

func NewUsers(db *DB) *Users {
	return &Users{db: db}
}

// Create inserts u and fills in its ID. A taken email yields ErrDuplicate.
func (r *Users) Create(ctx context.Context, u *User) error {
	now := time.Now()
	id, err := r.db.insertID(ctx, r.db,
		`INSERT INTO users (email, password_hash, first_name, last_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, nullString(u.FirstName), nullString(u.LastName), millis(now), millis(now))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	u.CreatedAt = fromMillis(millis(now))
	u.UpdatedAt = u.CreatedAt
	return nil
}

func (r *Users) ByID(ctx context.Context, id int64) (*User, error) {
	return r.one(ctx, `SELECT id, email, password_hash, first_name, last_name, created_at, updated_at FROM users WHERE id = ?`, id)
}

func (r *Users) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, `SELECT id, email, password_hash, first_name, last_name, created_at, updated_at FROM users WHERE email = ?`, email)
}

func (r *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE email = ?`), email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

func (r *Users) UpdateNames(ctx context.Context, id int64, first, last *string) error {
	return r.exec(ctx, `UPDATE users SET first_name = ?, last_name = ?, updated_at = ? WHERE id = ?`,
		nullString(first), nullString(last), millis(time.Now()), id)
}

func (r *Users) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, millis(time.Now()), id)
}

func (r *Users) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update user: %w", translate(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Users) one(ctx context.Context, query string, args ...any) (*User, error) {
	var (
		u                   User
		first, last         sql.NullString
		createdAt, updateAt int64
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), args...).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &first, &last, &createdAt, &updateAt)
	if err != nil {
		return nil, translate(err)
	}
	u.FirstName = stringPtr(first)
	u.LastName = stringPtr(last)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updateAt)
	return &u, nil
}
