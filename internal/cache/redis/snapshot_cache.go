package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// SnapshotCache implements domain.SnapshotCache on Redis. The snapshot is
// stored as one JSON string; the remaining TTL is read back with the value in
// a single pipeline so the hit report stays consistent.
type SnapshotCache struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client, logger *slog.Logger) *SnapshotCache {
	return &SnapshotCache{
		rdb:    c.Underlying(),
		logger: logger.With(slog.String("component", "redis_snapshot_cache")),
	}
}

// Get returns the cached snapshot and its remaining TTL. Redis failures are
// reported as misses so a cache outage degrades to upstream fetches instead
// of failing requests.
func (sc *SnapshotCache) Get(ctx context.Context, key string) (domain.LeaderboardSnapshot, time.Duration, bool) {
	pipe := sc.rdb.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		if !errors.Is(err, redis.Nil) {
			sc.logger.WarnContext(ctx, "snapshot cache read failed", slog.String("error", err.Error()))
		}
		return domain.LeaderboardSnapshot{}, 0, false
	}

	data, err := getCmd.Bytes()
	if err != nil {
		return domain.LeaderboardSnapshot{}, 0, false
	}

	var snap domain.LeaderboardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		sc.logger.WarnContext(ctx, "snapshot cache decode failed", slog.String("error", err.Error()))
		return domain.LeaderboardSnapshot{}, 0, false
	}

	remaining := ttlCmd.Val()
	if remaining < 0 {
		remaining = 0
	}
	return snap, remaining, true
}

// Set stores the snapshot with the given TTL.
func (sc *SnapshotCache) Set(ctx context.Context, key string, snap domain.LeaderboardSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}
	if err := sc.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
