package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// FeedCache implements domain.TradeFeedCache on Redis, storing the raw trade
// payload per lowercased address.
//
// Key schema:
//
//	feed:trades:{address} - JSON array of raw trade objects
type FeedCache struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewFeedCache creates a FeedCache backed by the given Client.
func NewFeedCache(c *Client, logger *slog.Logger) *FeedCache {
	return &FeedCache{
		rdb:    c.Underlying(),
		logger: logger.With(slog.String("component", "redis_feed_cache")),
	}
}

func feedKey(address string) string { return "feed:trades:" + strings.ToLower(address) }

// Get returns the cached raw trades for the address. Failures degrade to a
// miss.
func (fc *FeedCache) Get(ctx context.Context, address string) ([]map[string]any, bool) {
	data, err := fc.rdb.Get(ctx, feedKey(address)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			fc.logger.WarnContext(ctx, "feed cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		fc.logger.WarnContext(ctx, "feed cache decode failed", slog.String("error", err.Error()))
		return nil, false
	}
	return raw, true
}

// Set stores the raw trades for the address with the given TTL.
func (fc *FeedCache) Set(ctx context.Context, address string, raw []map[string]any, ttl time.Duration) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("redis: marshal trade feed for %s: %w", address, err)
	}
	if err := fc.rdb.Set(ctx, feedKey(address), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set trade feed for %s: %w", address, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.TradeFeedCache = (*FeedCache)(nil)
