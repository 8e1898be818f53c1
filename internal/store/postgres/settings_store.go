package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// SettingsStore implements domain.SettingsStore using PostgreSQL. The
// settings blob is stored as JSONB and never interpreted server-side.
type SettingsStore struct {
	pool *pgxpool.Pool
}

// NewSettingsStore creates a new SettingsStore backed by the given pool.
func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

// Get returns the settings for the user, or domain.ErrNotFound when the user
// has never saved any.
func (s *SettingsStore) Get(ctx context.Context, userID string) (domain.UserSettings, error) {
	const query = `SELECT user_id, settings, updated_at FROM user_settings WHERE user_id = $1`

	var (
		out domain.UserSettings
		raw []byte
	)
	err := s.pool.QueryRow(ctx, query, userID).Scan(&out.UserID, &raw, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserSettings{}, domain.ErrNotFound
		}
		return domain.UserSettings{}, fmt.Errorf("postgres: get settings for %s: %w", userID, err)
	}

	if err := json.Unmarshal(raw, &out.Settings); err != nil {
		return domain.UserSettings{}, fmt.Errorf("postgres: decode settings for %s: %w", userID, err)
	}
	return out, nil
}

// Upsert replaces the user's settings blob wholesale.
func (s *SettingsStore) Upsert(ctx context.Context, settings domain.UserSettings) error {
	raw, err := json.Marshal(settings.Settings)
	if err != nil {
		return fmt.Errorf("postgres: encode settings for %s: %w", settings.UserID, err)
	}

	const query = `
		INSERT INTO user_settings (user_id, settings, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			settings   = EXCLUDED.settings,
			updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, settings.UserID, raw); err != nil {
		return fmt.Errorf("postgres: upsert settings for %s: %w", settings.UserID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SettingsStore = (*SettingsStore)(nil)
