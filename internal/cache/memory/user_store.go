package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// UserStore implements domain.UserStore in process memory, used when no
// Postgres DSN is configured. Accounts do not survive restarts.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[string]domain.User
	byIdentity map[string]string // "provider/subject" -> user ID
	clock      func() time.Time
}

// NewUserStore creates a UserStore. clock defaults to time.Now.
func NewUserStore(clock func() time.Time) *UserStore {
	if clock == nil {
		clock = time.Now
	}
	return &UserStore{
		byID:       make(map[string]domain.User),
		byIdentity: make(map[string]string),
		clock:      clock,
	}
}

func identityKey(provider, subject string) string { return provider + "/" + subject }

// UpsertByProvider creates or refreshes the account identified by
// (provider, subject).
func (s *UserStore) UpsertByProvider(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := identityKey(u.Provider, u.Subject)
	if id, ok := s.byIdentity[key]; ok {
		stored := s.byID[id]
		stored.DisplayName = u.DisplayName
		stored.Email = u.Email
		stored.AvatarURL = u.AvatarURL
		s.byID[id] = stored
		return stored, nil
	}

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = s.clock()
	s.byID[u.ID] = u
	s.byIdentity[key] = u.ID
	return u, nil
}

// GetByID returns the user with the given ID, or domain.ErrNotFound.
func (s *UserStore) GetByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// Compile-time interface check.
var _ domain.UserStore = (*UserStore)(nil)
