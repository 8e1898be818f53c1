package domain

import (
	"context"
	"time"
)

// SnapshotCache stores reconciled leaderboard snapshots with a TTL. Get
// reports the remaining TTL so the boundary can surface cache observability.
// Implementations replace values wholesale; there is no partial mutation.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (LeaderboardSnapshot, time.Duration, bool)
	Set(ctx context.Context, key string, snap LeaderboardSnapshot, ttl time.Duration) error
}

// TradeFeedCache stores the raw upstream trade payload per address so bursts
// of per-address queries do not re-fetch the feed. Canonical trades are still
// recomputed from the raw payload on every query.
type TradeFeedCache interface {
	Get(ctx context.Context, address string) ([]map[string]any, bool)
	Set(ctx context.Context, address string, raw []map[string]any, ttl time.Duration) error
}

// SessionStore persists login sessions.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// RateLimiter enforces per-key request limits over a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager provides distributed mutual exclusion, used to keep multiple
// instances from running the same refresh cycle concurrently.
type LockManager interface {
	// Acquire obtains the lock or returns ErrLockHeld. The returned unlock
	// function is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// SignalBus is ephemeral cross-instance pub/sub, used to fan snapshot
// refreshes out to every instance's WebSocket clients.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
