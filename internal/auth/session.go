// Package auth implements the OAuth login flow and signed session tokens.
package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

const (
	// pbkdf2Iterations is the OWASP-recommended minimum for HMAC-SHA256.
	pbkdf2Iterations = 480_000
	// signingKeyLen is the derived HMAC key length.
	signingKeyLen = 32
)

// sessionKeySalt namespaces the derived signing key so the same configured
// secret cannot be reused to forge tokens for another deployment role.
var sessionKeySalt = []byte("polycopy/session-token/v1")

// sessionClaims is the JWT payload of a session token. The token only
// references the server-side session; revoking the session invalidates the
// token regardless of its embedded expiry.
type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// SessionManager issues and verifies signed session tokens backed by a
// server-side session store.
type SessionManager struct {
	signingKey []byte
	ttl        time.Duration
	store      domain.SessionStore
	clock      func() time.Time
}

// NewSessionManager derives the token signing key from secret and returns a
// manager issuing sessions with the given TTL. clock defaults to time.Now.
func NewSessionManager(secret string, ttl time.Duration, store domain.SessionStore, clock func() time.Time) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("auth: session secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if clock == nil {
		clock = time.Now
	}

	key := pbkdf2.Key([]byte(secret), sessionKeySalt, pbkdf2Iterations, signingKeyLen, sha256.New)
	return &SessionManager{
		signingKey: key,
		ttl:        ttl,
		store:      store,
		clock:      clock,
	}, nil
}

// Issue creates a session for the user and returns the signed token that
// references it.
func (m *SessionManager) Issue(ctx context.Context, userID string) (string, domain.Session, error) {
	now := m.clock()
	session := domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Save(ctx, session); err != nil {
		return "", domain.Session{}, fmt.Errorf("auth: save session: %w", err)
	}

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		SessionID: session.ID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("auth: sign session token: %w", err)
	}
	return token, session, nil
}

// Verify checks the token signature and resolves the referenced session.
// Expired or revoked sessions return domain.ErrSessionExpired; anything else
// invalid returns domain.ErrUnauthorized.
func (m *SessionManager) Verify(ctx context.Context, token string) (domain.Session, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithTimeFunc(m.clock))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Session{}, domain.ErrSessionExpired
		}
		return domain.Session{}, fmt.Errorf("auth: %w: %v", domain.ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.SessionID == "" {
		return domain.Session{}, domain.ErrUnauthorized
	}

	session, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, domain.ErrSessionExpired
		}
		return domain.Session{}, fmt.Errorf("auth: load session: %w", err)
	}
	if !m.clock().Before(session.ExpiresAt) {
		return domain.Session{}, domain.ErrSessionExpired
	}
	return session, nil
}

// Revoke deletes the session referenced by the token. Invalid tokens revoke
// nothing and return no error; logout is idempotent.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithTimeFunc(m.clock))
	if err != nil || claims.SessionID == "" {
		return nil
	}
	return m.store.Delete(ctx, claims.SessionID)
}
