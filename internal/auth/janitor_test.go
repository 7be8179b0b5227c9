package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/internal/store"
	"github.com/popalexr/Travel-Recommendation/internal/store/storetest"
)

func TestJanitorStartStop(t *testing.T) {
	svc, _ := newTestService(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	j, err := NewJanitor(svc, "@every 1h", zap.NewNop())
	require.NoError(t, err)

	j.Start()
	j.Stop()
}

func TestJanitorInvalidSchedule(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := NewJanitor(svc, "whenever", zap.NewNop())
	assert.Error(t, err)
}

func TestJanitorRunOnce(t *testing.T) {
	svc, db := newTestService(t)
	uid := storetest.User(t, db, "a@example.com")
	sessions := store.NewSessions(db)
	ctx := context.Background()

	past := time.Now().Add(-72 * time.Hour)
	require.NoError(t, sessions.Create(ctx, &store.AuthSession{ID: "stale", UserID: uid, CreatedAt: past, ExpiresAt: past.Add(time.Hour)}))

	j, err := NewJanitor(svc, "@every 1h", zap.NewNop())
	require.NoError(t, err)
	j.RunOnce()

	_, err = sessions.ByID(ctx, "stale")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
