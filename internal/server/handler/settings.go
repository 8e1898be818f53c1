package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
	"github.com/Rogeraristi/polycopy-sub001/internal/server/middleware"
)

// maxSettingsBody bounds the accepted settings blob size.
const maxSettingsBody = 64 << 10

// SettingsAccess defines the per-user settings operations.
type SettingsAccess interface {
	Get(ctx context.Context, userID string) (domain.UserSettings, error)
	Put(ctx context.Context, userID string, blob map[string]any) (domain.UserSettings, error)
}

// SettingsHandler serves the authenticated per-user settings pass-through.
// Routes must be mounted behind middleware.RequireSession.
type SettingsHandler struct {
	settings SettingsAccess
	logger   *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(settings SettingsAccess, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logHandler(logger, "settings"),
	}
}

// GetSettings returns the calling user's settings blob.
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	settings, err := h.settings.Get(r.Context(), session.UserID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get settings failed",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// PutSettings replaces the calling user's settings blob wholesale.
// PUT /api/settings
func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var blob map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSettingsBody))
	if err := dec.Decode(&blob); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}

	settings, err := h.settings.Put(r.Context(), session.UserID, blob)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "put settings failed",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
