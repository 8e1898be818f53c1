package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

func TestSnapshotCache_TTLWithControlledClock(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cache := NewSnapshotCache(func() time.Time { return now })
	ctx := context.Background()

	snap := domain.LeaderboardSnapshot{Source: "api", FetchedAt: now}
	require.NoError(t, cache.Set(ctx, "k", snap, time.Minute))

	got, remaining, hit := cache.Get(ctx, "k")
	require.True(t, hit)
	assert.Equal(t, "api", got.Source)
	assert.Equal(t, time.Minute, remaining)

	now = now.Add(30 * time.Second)
	_, remaining, hit = cache.Get(ctx, "k")
	require.True(t, hit)
	assert.Equal(t, 30*time.Second, remaining)

	now = now.Add(31 * time.Second)
	_, _, hit = cache.Get(ctx, "k")
	assert.False(t, hit)
}

func TestSnapshotCache_MissingKey(t *testing.T) {
	cache := NewSnapshotCache(nil)
	_, _, hit := cache.Get(context.Background(), "absent")
	assert.False(t, hit)
}

func TestFeedCache_AddressCaseInsensitive(t *testing.T) {
	now := time.Now()
	cache := NewFeedCache(func() time.Time { return now })
	ctx := context.Background()

	raw := []map[string]any{{"side": "buy"}}
	require.NoError(t, cache.Set(ctx, "0xABC", raw, time.Minute))

	got, hit := cache.Get(ctx, "0xabc")
	require.True(t, hit)
	assert.Equal(t, raw, got)
}

func TestSessionStore_ExpiryAndDelete(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(func() time.Time { return now })
	ctx := context.Background()

	sess := domain.Session{ID: "s1", UserID: "u1", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	now = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
