package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// SessionStore implements domain.SessionStore in process memory. Sessions
// disappear on restart, which is acceptable for single-instance deployments
// without Redis.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	clock    func() time.Time
}

// NewSessionStore creates a SessionStore. clock defaults to time.Now.
func NewSessionStore(clock func() time.Time) *SessionStore {
	if clock == nil {
		clock = time.Now
	}
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		clock:    clock,
	}
}

// Save stores the session.
func (s *SessionStore) Save(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return nil
}

// Get retrieves a session by ID, returning domain.ErrNotFound for missing or
// expired sessions. Expired sessions are removed on access.
func (s *SessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}

	if !s.clock().Before(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return domain.Session{}, domain.ErrNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Compile-time interface check.
var _ domain.SessionStore = (*SessionStore)(nil)
