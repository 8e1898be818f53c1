package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// sessionCookie mirrors the cookie name the auth handler sets on login.
const sessionCookie = "session_token"

type contextKey string

const sessionContextKey contextKey = "session"

// SessionVerifier resolves a presented token to a live session.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (domain.Session, error)
}

// Session returns middleware that resolves the request's session token, when
// one is presented and valid, and attaches the session to the request
// context. Requests without a valid session pass through unauthenticated;
// routes that require login are wrapped with RequireSession.
func Session(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token != "" {
				if session, err := verifier.VerifySession(r.Context(), token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), sessionContextKey, session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession wraps a handler so that only requests carrying a verified
// session (attached by Session) reach it.
func RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFrom(r.Context()); !ok {
			writeUnauthorized(w, "authentication required")
			return
		}
		next(w, r)
	}
}

// SessionFrom returns the verified session attached to the context, if any.
func SessionFrom(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(domain.Session)
	return session, ok
}

// extractToken looks for a token in the Authorization header (Bearer scheme)
// or in the session cookie.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// writeUnauthorized sends a 401 response with a JSON error body.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
