package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

const (
	stateCookie    = "oauth_state"
	sessionCookie  = "session_token"
	stateCookieAge = 10 * time.Minute
)

// AuthFlow defines the login-flow operations the handler delegates to.
type AuthFlow interface {
	LoginURL() (loginURL, state string)
	Callback(ctx context.Context, code string) (token string, user domain.User, err error)
	Me(ctx context.Context, token string) (domain.User, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves the OAuth login endpoints and session lifecycle.
type AuthHandler struct {
	flow       AuthFlow
	cookieTTL  time.Duration
	secureOnly bool
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler. cookieTTL bounds the session cookie
// lifetime and should match the session TTL; secureOnly marks cookies Secure
// for HTTPS deployments.
func NewAuthHandler(flow AuthFlow, cookieTTL time.Duration, secureOnly bool, logger *slog.Logger) *AuthHandler {
	if cookieTTL <= 0 {
		cookieTTL = 24 * time.Hour
	}
	return &AuthHandler{
		flow:       flow,
		cookieTTL:  cookieTTL,
		secureOnly: secureOnly,
		logger:     logHandler(logger, "auth"),
	}
}

// Login redirects the client to the identity provider, pinning the state
// nonce in a short-lived cookie for the callback to verify.
// GET /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	loginURL, state := h.flow.LoginURL()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int(stateCookieAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureOnly,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, loginURL, http.StatusFound)
}

// Callback completes the login: verifies the state nonce, exchanges the code
// for a session, and sets the session cookie.
// GET /api/auth/callback?code=&state=
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "missing code or state")
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value != state {
		writeError(w, http.StatusBadRequest, "state mismatch")
		return
	}
	h.clearCookie(w, stateCookie, "/api/auth")

	token, user, err := h.flow.Callback(r.Context(), code)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "login callback failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureOnly,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Me resolves the presented session token to its user.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing session token")
		return
	}

	user, err := h.flow.Me(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		h.logger.ErrorContext(r.Context(), "session lookup failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to resolve session")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Logout revokes the presented session and clears the cookie. Idempotent.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.flow.Logout(r.Context(), token); err != nil {
			h.logger.WarnContext(r.Context(), "logout revoke failed",
				slog.String("error", err.Error()),
			)
		}
	}
	h.clearCookie(w, sessionCookie, "/")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureOnly,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionToken extracts the session token from the Authorization header
// (Bearer scheme) or the session cookie.
func sessionToken(r *http.Request) string {
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
