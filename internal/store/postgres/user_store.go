package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// UserStore implements domain.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new UserStore backed by the given connection pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// UpsertByProvider creates or refreshes the account identified by
// (provider, subject). Profile fields are overwritten with the latest values
// from the identity provider on every login.
func (s *UserStore) UpsertByProvider(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	const query = `
		INSERT INTO users (id, provider, subject, display_name, email, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider, subject) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email        = EXCLUDED.email,
			avatar_url   = EXCLUDED.avatar_url
		RETURNING id, provider, subject, display_name, email, avatar_url, created_at`

	var stored domain.User
	err := s.pool.QueryRow(ctx, query,
		u.ID, u.Provider, u.Subject, u.DisplayName, u.Email, u.AvatarURL,
	).Scan(
		&stored.ID, &stored.Provider, &stored.Subject,
		&stored.DisplayName, &stored.Email, &stored.AvatarURL, &stored.CreatedAt,
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("postgres: upsert user %s/%s: %w", u.Provider, u.Subject, err)
	}
	return stored, nil
}

// GetByID returns the user with the given ID, or domain.ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, provider, subject, display_name, email, avatar_url, created_at
		FROM users WHERE id = $1`

	var u domain.User
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Provider, &u.Subject,
		&u.DisplayName, &u.Email, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("postgres: get user %s: %w", id, err)
	}
	return u, nil
}

// Compile-time interface check.
var _ domain.UserStore = (*UserStore)(nil)
