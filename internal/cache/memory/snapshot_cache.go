// Package memory implements the cache and session interfaces in process
// memory, used when no Redis address is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

type snapshotEntry struct {
	snap      domain.LeaderboardSnapshot
	expiresAt time.Time
}

// SnapshotCache implements domain.SnapshotCache in process memory with an
// injectable clock for deterministic expiry in tests.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]snapshotEntry
	clock   func() time.Time
}

// NewSnapshotCache creates a SnapshotCache. clock defaults to time.Now.
func NewSnapshotCache(clock func() time.Time) *SnapshotCache {
	if clock == nil {
		clock = time.Now
	}
	return &SnapshotCache{
		entries: make(map[string]snapshotEntry),
		clock:   clock,
	}
}

// Get returns the cached snapshot and its remaining TTL. Expired entries are
// removed lazily on access.
func (c *SnapshotCache) Get(_ context.Context, key string) (domain.LeaderboardSnapshot, time.Duration, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return domain.LeaderboardSnapshot{}, 0, false
	}

	now := c.clock()
	if !now.Before(entry.expiresAt) {
		c.mu.Lock()
		// Recheck under the write lock; Set may have replaced the entry.
		if cur, still := c.entries[key]; still && !now.Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return domain.LeaderboardSnapshot{}, 0, false
	}

	return entry.snap, entry.expiresAt.Sub(now), true
}

// Set stores the snapshot with the given TTL.
func (c *SnapshotCache) Set(_ context.Context, key string, snap domain.LeaderboardSnapshot, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = snapshotEntry{snap: snap, expiresAt: c.clock().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
