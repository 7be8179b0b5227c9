package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Chat struct {
	ID        int64
	UserID    int64
	Title     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Message struct {
	ID            int64
	ChatID        int64
	Role          string
	Content       string
	ItineraryJSON *string
	CreatedAt     time.Time
}

type Chats struct {
	db *DB
}

func NewChats(db *DB) *Chats {
	return &Chats{db: db}
}

func (r *Chats) Create(ctx context.Context, userID int64, title *string) (*Chat, error) {
	now := time.Now()
	id, err := r.db.insertID(ctx, r.db,
		`INSERT INTO chats (user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		userID, nullString(title), millis(now), millis(now))
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	created := fromMillis(millis(now))
	return &Chat{ID: id, UserID: userID, Title: title, CreatedAt: created, UpdatedAt: created}, nil
}

// ForUser loads a chat only when it belongs to userID.
func (r *Chats) ForUser(ctx context.Context, id, userID int64) (*Chat, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(
		`SELECT id, user_id, title, created_at, updated_at FROM chats WHERE id = ? AND user_id = ?`), id, userID)
	return scanChat(row)
}

// ListForUser returns the user's chats, newest first.
func (r *Chats) ListForUser(ctx context.Context, userID int64) ([]Chat, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT id, user_id, title, created_at, updated_at FROM chats WHERE user_id = ? ORDER BY id DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var out []Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Chats) SetTitle(ctx context.Context, id int64, title string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE chats SET title = ?, updated_at = ? WHERE id = ?`), title, millis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set chat title: %w", err)
	}
	return nil
}

func (r *Chats) Touch(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE chats SET updated_at = ? WHERE id = ?`), millis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	return nil
}

// Delete removes the chat with its profile and messages in one transaction.
func (r *Chats) Delete(ctx context.Context, id, userID int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var owner int64
		err := tx.QueryRowContext(ctx, r.db.Rebind(`SELECT user_id FROM chats WHERE id = ?`), id).Scan(&owner)
		if err != nil {
			return translate(err)
		}
		if owner != userID {
			return ErrNotFound
		}
		for _, q := range []string{
			`DELETE FROM trip_profiles WHERE chat_id = ?`,
			`DELETE FROM chat_messages WHERE chat_id = ?`,
			`DELETE FROM chats WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, r.db.Rebind(q), id); err != nil {
				return fmt.Errorf("delete chat: %w", err)
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*Chat, error) {
	var (
		c                  Chat
		title              sql.NullString
		created, updatedAt int64
	)
	if err := row.Scan(&c.ID, &c.UserID, &title, &created, &updatedAt); err != nil {
		return nil, translate(err)
	}
	c.Title = stringPtr(title)
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}

type Messages struct {
	db *DB
}

func NewMessages(db *DB) *Messages {
	return &Messages{db: db}
}

// Add inserts m and fills in its ID and CreatedAt.
func (r *Messages) Add(ctx context.Context, m *Message) error {
	now := time.Now()
	id, err := r.db.insertID(ctx, r.db,
		`INSERT INTO chat_messages (chat_id, role, content, itinerary_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ChatID, m.Role, m.Content, nullString(m.ItineraryJSON), millis(now))
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	m.ID = id
	m.CreatedAt = fromMillis(millis(now))
	return nil
}

// ListByChat returns the conversation in insertion order.
func (r *Messages) ListByChat(ctx context.Context, chatID int64) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT id, chat_id, role, content, itinerary_json, created_at FROM chat_messages WHERE chat_id = ? ORDER BY id ASC`), chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m         Message
			itinerary sql.NullString
			created   int64
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &itinerary, &created); err != nil {
			return nil, err
		}
		m.ItineraryJSON = stringPtr(itinerary)
		m.CreatedAt = fromMillis(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Messages) UpdateContent(ctx context.Context, id int64, content string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE chat_messages SET content = ? WHERE id = ?`), content, id)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAfter drops every message of the chat newer than messageID.
func (r *Messages) DeleteAfter(ctx context.Context, chatID, messageID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`DELETE FROM chat_messages WHERE chat_id = ? AND id > ?`), chatID, messageID)
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}
	return res.RowsAffected()
}
