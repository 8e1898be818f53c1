package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// NewsProvider serves cached aggregated headlines.
type NewsProvider interface {
	Headlines(ctx context.Context, limit int) ([]domain.NewsHeadline, error)
}

// NewsHandler serves the aggregated-headlines endpoint.
type NewsHandler struct {
	news   NewsProvider
	logger *slog.Logger
}

// NewNewsHandler creates a NewsHandler.
func NewNewsHandler(news NewsProvider, logger *slog.Logger) *NewsHandler {
	return &NewsHandler{
		news:   news,
		logger: logHandler(logger, "news"),
	}
}

// GetNews returns the most recent aggregated headlines.
// GET /api/news?limit=
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 30)

	headlines, err := h.news.Headlines(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "headlines failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "news unavailable")
		return
	}
	if headlines == nil {
		headlines = []domain.NewsHeadline{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"headlines": headlines})
}
