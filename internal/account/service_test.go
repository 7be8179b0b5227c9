package account

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popalexr/Travel-Recommendation/internal/store"
	"github.com/popalexr/Travel-Recommendation/internal/store/storetest"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(store.NewUsers(storetest.New(t)))
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, Credentials{Email: " Ana@Example.com ", Password: "password1", FirstName: strp("  Ana "), LastName: strp(" ")})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, "Ana", *p.FirstName)
	assert.Nil(t, p.LastName)

	_, err = svc.Register(ctx, Credentials{Email: "ANA@example.com", Password: "password2"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := svc.Authenticate(ctx, Credentials{Email: "ana@EXAMPLE.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.Authenticate(ctx, Credentials{Email: "ana@example.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, Credentials{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(context.Background(), Credentials{Email: "x", Password: "y"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Validation failed.", verr.Error())
	assert.Len(t, verr.Fields, 2)
}

func TestUpdateNames(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	p, err := svc.Register(ctx, Credentials{Email: "a@b.co", Password: "password1"})
	require.NoError(t, err)

	updated, err := svc.UpdateNames(ctx, p.ID, strp(" Ana "), strp("Pop"))
	require.NoError(t, err)
	assert.Equal(t, "Ana", *updated.FirstName)
	assert.Equal(t, "Pop", *updated.LastName)
	assert.Equal(t, "a@b.co", updated.Email)

	_, err = svc.UpdateNames(ctx, p.ID, strp(strings.Repeat("x", 81)), nil)
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = svc.UpdateNames(ctx, 999, nil, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	p, err := svc.Register(ctx, Credentials{Email: "a@b.co", Password: "password1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		current string
		next    string
		want    error
	}{
		{"missing current", "", "newpassword", ErrPasswordsRequired},
		{"blank new", "password1", "   ", ErrPasswordsRequired},
		{"wrong current", "password0", "newpassword", ErrWrongPassword},
		{"too short after trim", "password1", "  short  ", ErrNewPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.ChangePassword(ctx, p.ID, tt.current, tt.next), tt.want)
		})
	}

	require.NoError(t, svc.ChangePassword(ctx, p.ID, "password1", " newpassword "))
	_, err = svc.Authenticate(ctx, Credentials{Email: "a@b.co", Password: "newpassword"})
	assert.NoError(t, err)
}
