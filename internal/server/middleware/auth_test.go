package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

type stubVerifier struct {
	session domain.Session
	err     error
}

func (s *stubVerifier) VerifySession(context.Context, string) (domain.Session, error) {
	return s.session, s.err
}

func sessionProbe(t *testing.T) (http.Handler, *domain.Session, *bool) {
	t.Helper()
	var (
		got   domain.Session
		found bool
	)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = SessionFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &got, &found
}

func TestSession_AttachesVerifiedSession(t *testing.T) {
	verifier := &stubVerifier{session: domain.Session{
		ID:        "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	probe, got, found := sessionProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	Session(verifier)(probe).ServeHTTP(rec, req)

	require.True(t, *found)
	assert.Equal(t, "u1", got.UserID)
}

func TestSession_CookieTokenAccepted(t *testing.T) {
	verifier := &stubVerifier{session: domain.Session{ID: "s1", UserID: "u1"}}
	probe, _, found := sessionProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "some-token"})
	rec := httptest.NewRecorder()
	Session(verifier)(probe).ServeHTTP(rec, req)

	assert.True(t, *found)
}

func TestSession_InvalidTokenPassesThroughUnauthenticated(t *testing.T) {
	verifier := &stubVerifier{err: domain.ErrSessionExpired}
	probe, _, found := sessionProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	rec := httptest.NewRecorder()
	Session(verifier)(probe).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *found)
}

func TestRequireSession_RejectsAnonymous(t *testing.T) {
	called := false
	h := RequireSession(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireSession_AllowsAuthenticated(t *testing.T) {
	called := false
	h := RequireSession(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	ctx := context.WithValue(req.Context(), sessionContextKey, domain.Session{ID: "s1", UserID: "u1"})
	rec := httptest.NewRecorder()
	h(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
