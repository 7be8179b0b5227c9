package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popalexr/Travel-Recommendation/internal/store"
	"github.com/popalexr/Travel-Recommendation/internal/store/storetest"
)

func newTestService(t *testing.T) (*Service, *store.DB) {
	t.Helper()
	db := storetest.New(t)
	return NewService(store.NewSessions(db), NewTokens("test-secret", time.Hour)), db
}

func TestServiceStartAndAuthenticate(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	uid := storetest.User(t, db, "a@example.com")

	session, err := svc.Start(ctx, uid)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	id, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: uid, SessionID: session.ID}, id)
}

func TestServiceRevokedSession(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	uid := storetest.User(t, db, "a@example.com")

	session, err := svc.Start(ctx, uid)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, session.ID))

	_, err = svc.Authenticate(ctx, session.Token)
	assert.True(t, errors.Is(err, ErrSessionInactive), "got %v", err)
}

func TestServiceUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)

	token, _, err := svc.tokens.Issue(7, "missing", time.Now())
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionInactive)
}

func TestServiceSessionOwnerMismatch(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	uid := storetest.User(t, db, "a@example.com")
	other := storetest.User(t, db, "b@example.com")

	session, err := svc.Start(ctx, uid)
	require.NoError(t, err)

	forged, _, err := svc.tokens.Issue(other, session.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, ErrSessionInactive)
}

func TestServiceCleanup(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	uid := storetest.User(t, db, "a@example.com")

	session, err := svc.Start(ctx, uid)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	n, err := svc.Cleanup(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.NewSessions(db).ByID(ctx, session.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
