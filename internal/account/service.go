// Package account registers users, signs them in and edits their settings.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/internal/auth"
	"github.com/popalexr/Travel-Recommendation/internal/logging"
	"github.com/popalexr/Travel-Recommendation/internal/store"
)

// Error texts are returned to clients verbatim.
var (
	ErrEmailTaken         = errors.New("Email is already registered.")
	ErrInvalidCredentials = errors.New("Invalid email or password.")

	ErrNameTooLong         = errors.New("Name fields must be at most 80 characters.")
	ErrPasswordsRequired   = errors.New("Current and new passwords are required.")
	ErrWrongPassword       = errors.New("Current password is incorrect.")
	ErrNewPasswordTooShort = errors.New("New password must be at least 8 characters.")
	ErrUserNotFound        = errors.New("user not found")
)

// UserStore is the persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, u *store.User) error
	ByID(ctx context.Context, id int64) (*store.User, error)
	ByEmail(ctx context.Context, email string) (*store.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateNames(ctx context.Context, id int64, first, last *string) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// Profile is the public view of a user.
type Profile struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

func profileOf(u *store.User) Profile {
	return Profile{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

func (s *Service) Register(ctx context.Context, c Credentials) (Profile, error) {
	if err := validateRegister(c); err != nil {
		return Profile{}, err
	}

	email := NormalizeEmail(c.Email)
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return Profile{}, err
	}
	if exists {
		return Profile{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(c.Password)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}

	u := &store.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    cleanName(c.FirstName),
		LastName:     cleanName(c.LastName),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return Profile{}, ErrEmailTaken
		}
		return Profile{}, err
	}

	logging.FromContext(ctx).Info("user registered", zap.Int64("user_id", u.ID))
	return profileOf(u), nil
}

func (s *Service) Authenticate(ctx context.Context, c Credentials) (Profile, error) {
	if err := validateLogin(c); err != nil {
		return Profile{}, err
	}

	u, err := s.users.ByEmail(ctx, NormalizeEmail(c.Email))
	if errors.Is(err, store.ErrNotFound) {
		return Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return Profile{}, err
	}
	if !auth.CheckPasswordHash(c.Password, u.PasswordHash) {
		return Profile{}, ErrInvalidCredentials
	}
	return profileOf(u), nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	u, err := s.users.ByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Profile{}, ErrUserNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return profileOf(u), nil
}

// UpdateNames trims both names; blank names are cleared.
func (s *Service) UpdateNames(ctx context.Context, userID int64, first, last *string) (Profile, error) {
	first, last = cleanName(first), cleanName(last)
	if tooLong(first) || tooLong(last) {
		return Profile{}, ErrNameTooLong
	}

	if err := s.users.UpdateNames(ctx, userID, first, last); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}
	return s.Profile(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if strings.TrimSpace(current) == "" || strings.TrimSpace(next) == "" {
		return ErrPasswordsRequired
	}

	u, err := s.users.ByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if !auth.CheckPasswordHash(current, u.PasswordHash) {
		return ErrWrongPassword
	}

	next = strings.TrimSpace(next)
	if utf8.RuneCountInString(next) < minPasswordLen {
		return ErrNewPasswordTooShort
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func tooLong(s *string) bool {
	return s != nil && utf8.RuneCountInString(*s) > maxNameLen
}
