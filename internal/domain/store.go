package domain

import "context"

// UserStore persists OAuth-established accounts.
type UserStore interface {
	// UpsertByProvider creates or refreshes the account identified by
	// (provider, subject) and returns the stored record.
	UpsertByProvider(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}

// SettingsStore persists per-user settings blobs.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (UserSettings, error)
	Upsert(ctx context.Context, s UserSettings) error
}
