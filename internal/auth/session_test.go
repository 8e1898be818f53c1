package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/cache/memory"
	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

func newTestManager(t *testing.T, now *time.Time) *SessionManager {
	t.Helper()
	clock := func() time.Time { return *now }
	m, err := NewSessionManager("test-secret", time.Hour, memory.NewSessionStore(clock), clock)
	require.NoError(t, err)
	return m
}

func TestSessionManager_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, &now)
	ctx := context.Background()

	token, session, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user-1", session.UserID)

	got, err := m.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
}

func TestSessionManager_ExpiredToken(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, &now)
	ctx := context.Background()

	token, _, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = m.Verify(ctx, token)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestSessionManager_RevokedSession(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, &now)
	ctx := context.Background()

	token, _, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, token))
	_, err = m.Verify(ctx, token)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	// Revoking again is a no-op.
	assert.NoError(t, m.Revoke(ctx, token))
}

func TestSessionManager_TamperedToken(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, &now)
	ctx := context.Background()

	token, _, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	// A token signed under a different secret must be rejected.
	other, err := NewSessionManager("other-secret", time.Hour, memory.NewSessionStore(nil), func() time.Time { return now })
	require.NoError(t, err)
	_, err = other.Verify(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = m.Verify(ctx, token+"x")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewSessionManager_RequiresSecret(t *testing.T) {
	_, err := NewSessionManager("", time.Hour, memory.NewSessionStore(nil), nil)
	assert.Error(t, err)
}
