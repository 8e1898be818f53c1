package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// SessionStore implements domain.SessionStore on Redis. Sessions expire via
// Redis TTL matching the session's ExpiresAt, so stale sessions clean
// themselves up.
//
// Key schema:
//
//	session:{id} - JSON-serialized Session
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore creates a SessionStore backed by the given Client.
func NewSessionStore(c *Client) *SessionStore {
	return &SessionStore{rdb: c.Underlying()}
}

func sessionKey(id string) string { return "session:" + id }

// Save stores the session until its expiry time.
func (ss *SessionStore) Save(ctx context.Context, s domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis: marshal session %s: %w", s.ID, err)
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("redis: session %s already expired", s.ID)
	}

	if err := ss.rdb.Set(ctx, sessionKey(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: save session %s: %w", s.ID, err)
	}
	return nil
}

// Get retrieves a session by ID. It returns domain.ErrNotFound when the
// session does not exist or has expired.
func (ss *SessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	data, err := ss.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("redis: get session %s: %w", id, err)
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Session{}, fmt.Errorf("redis: unmarshal session %s: %w", id, err)
	}
	return s, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (ss *SessionStore) Delete(ctx context.Context, id string) error {
	if err := ss.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: delete session %s: %w", id, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SessionStore = (*SessionStore)(nil)
