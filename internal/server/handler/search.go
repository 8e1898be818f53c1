package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Rogeraristi/polycopy-sub001/internal/service"
)

// TraderSearcher resolves trader search queries, degrading to the cached
// leaderboard snapshot when the primary source fails.
type TraderSearcher interface {
	Search(ctx context.Context, q string, limit int) (service.SearchResult, error)
}

// SearchHandler serves the trader search endpoint.
type SearchHandler struct {
	traders TraderSearcher
	logger  *slog.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(traders TraderSearcher, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		traders: traders,
		logger:  logHandler(logger, "search"),
	}
}

// SearchTraders returns candidate trader profiles for a query.
// GET /api/traders/search?q=&limit=
func (h *SearchHandler) SearchTraders(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := parseLimit(r, 20)

	res, err := h.traders.Search(r.Context(), q, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "trader search failed",
			slog.String("query", q),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "trader search unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":    q,
		"results":  res.Results,
		"fallback": res.Fallback,
	})
}
