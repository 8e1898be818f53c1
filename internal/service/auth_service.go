package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Rogeraristi/polycopy-sub001/internal/auth"
	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// AuthService runs the OAuth login flow: provider redirect, code exchange,
// user upsert, and session issuance.
type AuthService struct {
	oauth    *auth.OAuthClient
	sessions *auth.SessionManager
	users    domain.UserStore
	logger   *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(oauth *auth.OAuthClient, sessions *auth.SessionManager, users domain.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		oauth:    oauth,
		sessions: sessions,
		users:    users,
		logger:   logger.With(slog.String("component", "auth_service")),
	}
}

// LoginURL returns the provider authorization URL and the state value the
// callback must echo.
func (s *AuthService) LoginURL() (loginURL, state string) {
	state = uuid.New().String()
	return s.oauth.AuthCodeURL(state), state
}

// Callback completes the login: exchanges the code, fetches the provider
// profile, upserts the local user, and issues a session token.
func (s *AuthService) Callback(ctx context.Context, code string) (token string, user domain.User, err error) {
	accessToken, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("auth_service: exchange code: %w", err)
	}

	profile, err := s.oauth.FetchProfile(ctx, accessToken)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("auth_service: fetch profile: %w", err)
	}

	user, err = s.users.UpsertByProvider(ctx, domain.User{
		Provider:    s.oauth.Provider(),
		Subject:     profile.Subject,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		AvatarURL:   profile.AvatarURL,
	})
	if err != nil {
		return "", domain.User{}, fmt.Errorf("auth_service: upsert user: %w", err)
	}

	token, _, err = s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("auth_service: issue session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("provider", user.Provider),
	)
	return token, user, nil
}

// Me resolves the session token to its user.
func (s *AuthService) Me(ctx context.Context, token string) (domain.User, error) {
	session, err := s.sessions.Verify(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return domain.User{}, fmt.Errorf("auth_service: load user: %w", err)
	}
	return user, nil
}

// VerifySession resolves a token to its session for middleware use.
func (s *AuthService) VerifySession(ctx context.Context, token string) (domain.Session, error) {
	return s.sessions.Verify(ctx, token)
}

// Logout revokes the session behind the token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}
