package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

type feedEntry struct {
	raw       []map[string]any
	expiresAt time.Time
}

// FeedCache implements domain.TradeFeedCache in process memory.
type FeedCache struct {
	mu      sync.RWMutex
	entries map[string]feedEntry
	clock   func() time.Time
}

// NewFeedCache creates a FeedCache. clock defaults to time.Now.
func NewFeedCache(clock func() time.Time) *FeedCache {
	if clock == nil {
		clock = time.Now
	}
	return &FeedCache{
		entries: make(map[string]feedEntry),
		clock:   clock,
	}
}

// Get returns the cached raw trades for the address.
func (c *FeedCache) Get(_ context.Context, address string) ([]map[string]any, bool) {
	key := strings.ToLower(address)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.clock().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.raw, true
}

// Set stores the raw trades for the address with the given TTL.
func (c *FeedCache) Set(_ context.Context, address string, raw []map[string]any, ttl time.Duration) error {
	key := strings.ToLower(address)

	c.mu.Lock()
	c.entries[key] = feedEntry{raw: raw, expiresAt: c.clock().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Compile-time interface check.
var _ domain.TradeFeedCache = (*FeedCache)(nil)
