// Package auth issues and checks session tokens backed by auth_sessions rows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/internal/logging"
	"github.com/popalexr/Travel-Recommendation/internal/store"
)

var ErrSessionInactive = errors.New("session revoked or expired")

// SessionStore is the persistence the service needs.
type SessionStore interface {
	Create(ctx context.Context, s *store.AuthSession) error
	ByID(ctx context.Context, id string) (*store.AuthSession, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	sessions SessionStore
	tokens   *Tokens
	now      func() time.Time
}

func NewService(sessions SessionStore, tokens *Tokens) *Service {
	return &Service{sessions: sessions, tokens: tokens, now: time.Now}
}

// Session is a freshly started auth session and its signed token.
type Session struct {
	ID        string
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// Start opens a session for userID and signs its token.
func (s *Service) Start(ctx context.Context, userID int64) (*Session, error) {
	now := s.now()
	id := uuid.NewString()

	token, expires, err := s.tokens.Issue(userID, id, now)
	if err != nil {
		return nil, err
	}

	row := &store.AuthSession{ID: id, UserID: userID, CreatedAt: now, ExpiresAt: expires}
	if err := s.sessions.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	logging.FromContext(ctx).Debug("auth session started", zap.Int64("user_id", userID), zap.String("session_id", id))
	return &Session{ID: id, UserID: userID, Token: token, ExpiresAt: expires}, nil
}

// Authenticate accepts a token when it verifies, its session exists, belongs
// to the token's user and is still active.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Identity{}, err
	}

	session, err := s.sessions.ByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, ErrSessionInactive
		}
		return Identity{}, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != claims.UID || !session.Active(s.now()) {
		return Identity{}, ErrSessionInactive
	}

	return Identity{UserID: claims.UID, SessionID: session.ID}, nil
}

func (s *Service) Revoke(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID, s.now())
}

func (s *Service) TTL() time.Duration { return s.tokens.TTL() }

// Cleanup drops sessions that expired or were revoked more than retain ago.
func (s *Service) Cleanup(ctx context.Context, retain time.Duration) (int64, error) {
	return s.sessions.DeleteStale(ctx, s.now().Add(-retain))
}
