package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	adapter, mr := SetupTestRedis(t)
	repo := NewSessionRepository(adapter)
	ctx := context.Background()

	s := &model.Session{ID: "abc", AgentName: "Chandan", IsAdmin: true, CreatedAt: baseTime, LastActiveAt: baseTime}
	require.NoError(t, repo.Save(ctx, s, time.Hour))
	assert.True(t, mr.Exists("session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Chandan", got.AgentName)
	assert.True(t, got.IsAdmin)

	t.Run("expired session is gone", func(t *testing.T) {
		mr.FastForward(2 * time.Hour)
		_, err := repo.Get(ctx, "abc")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, s, time.Hour))
		require.NoError(t, repo.Delete(ctx, "abc"))
		require.NoError(t, repo.Delete(ctx, "abc"))
		_, err := repo.Get(ctx, "abc")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestActivityRepository(t *testing.T) {
	adapter, mr := SetupTestRedis(t)
	repo := NewActivityRepository(adapter, 48*time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Increment(ctx, "2026-02-09", map[string]int64{"total": 1, "call_created": 1}))
	require.NoError(t, repo.Increment(ctx, "2026-02-09", map[string]int64{"total": 1, "call_updated": 1}))
	require.NoError(t, repo.Increment(ctx, "2026-02-09", nil))

	counters, err := repo.Get(ctx, "2026-02-09")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"total": 2, "call_created": 1, "call_updated": 1}, counters)
	assert.Equal(t, 48*time.Hour, mr.TTL("activity:2026-02-09"))

	empty, err := repo.Get(ctx, "2026-02-10")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
