package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// SettingsStore implements domain.SettingsStore in process memory.
type SettingsStore struct {
	mu       sync.RWMutex
	settings map[string]domain.UserSettings
	clock    func() time.Time
}

// NewSettingsStore creates a SettingsStore. clock defaults to time.Now.
func NewSettingsStore(clock func() time.Time) *SettingsStore {
	if clock == nil {
		clock = time.Now
	}
	return &SettingsStore{
		settings: make(map[string]domain.UserSettings),
		clock:    clock,
	}
}

// Get returns the settings for the user, or domain.ErrNotFound.
func (s *SettingsStore) Get(_ context.Context, userID string) (domain.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out, ok := s.settings[userID]
	if !ok {
		return domain.UserSettings{}, domain.ErrNotFound
	}
	return out, nil
}

// Upsert replaces the user's settings blob wholesale.
func (s *SettingsStore) Upsert(_ context.Context, settings domain.UserSettings) error {
	settings.UpdatedAt = s.clock()

	s.mu.Lock()
	s.settings[settings.UserID] = settings
	s.mu.Unlock()
	return nil
}

// Compile-time interface check.
var _ domain.SettingsStore = (*SettingsStore)(nil)
