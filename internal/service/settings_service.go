package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// SettingsService is the thin pass-through over per-user settings storage.
// The settings blob is opaque to the backend.
type SettingsService struct {
	store domain.SettingsStore
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(store domain.SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the user's settings. A user who never saved settings gets an
// empty blob rather than an error.
func (s *SettingsService) Get(ctx context.Context, userID string) (domain.UserSettings, error) {
	settings, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.UserSettings{UserID: userID, Settings: map[string]any{}}, nil
		}
		return domain.UserSettings{}, fmt.Errorf("settings_service: get: %w", err)
	}
	return settings, nil
}

// Put replaces the user's settings blob wholesale.
func (s *SettingsService) Put(ctx context.Context, userID string, blob map[string]any) (domain.UserSettings, error) {
	if blob == nil {
		blob = map[string]any{}
	}
	settings := domain.UserSettings{UserID: userID, Settings: blob}
	if err := s.store.Upsert(ctx, settings); err != nil {
		return domain.UserSettings{}, fmt.Errorf("settings_service: upsert: %w", err)
	}
	return s.Get(ctx, userID)
}
