package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// LeaderboardService exposes the reconciliation pipeline to the handler.
type LeaderboardService interface {
	Snapshot(ctx context.Context, refresh bool) (domain.LeaderboardSnapshot, domain.CacheInfo, error)
}

// LeaderboardHandler serves the reconciled leaderboard snapshot.
type LeaderboardHandler struct {
	leaderboard LeaderboardService
	logger      *slog.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(leaderboard LeaderboardService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
		logger:      logHandler(logger, "leaderboard"),
	}
}

// leaderboardResponse is the snapshot envelope with its cache outcome.
type leaderboardResponse struct {
	Snapshot domain.LeaderboardSnapshot `json:"snapshot"`
	Cache    domain.CacheInfo           `json:"cache"`
}

// GetLeaderboard returns the reconciled leaderboard snapshot. refresh=true
// bypasses the cache; debug=true keeps per-period source diagnostics in the
// payload.
// GET /api/analytics/leaderboard?refresh=&debug=
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	refresh := truthy(r, "refresh")
	debug := truthy(r, "debug")

	snap, cache, err := h.leaderboard.Snapshot(r.Context(), refresh)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "leaderboard snapshot failed",
			slog.Bool("refresh", refresh),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "leaderboard unavailable")
		return
	}

	if !debug {
		snap.Diagnostics = nil
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{
		Snapshot: snap,
		Cache:    cache,
	})
}
