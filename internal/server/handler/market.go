package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// MarketSource defines the upstream market metadata methods the handler
// requires. It is declared locally so the handler package does not depend on
// the concrete platform client.
type MarketSource interface {
	GetMarket(ctx context.Context, id string) (domain.Market, error)
	GetMarkets(ctx context.Context, limit, offset int) ([]domain.Market, error)
	SearchMarkets(ctx context.Context, query string, limit int) ([]domain.Market, error)
}

// MarketHandler is a thin proxy over the upstream market metadata API.
type MarketHandler struct {
	markets MarketSource
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given source and logger.
func NewMarketHandler(markets MarketSource, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logHandler(logger, "markets"),
	}
}

// listMarketsResponse wraps the list endpoint output with metadata.
type listMarketsResponse struct {
	Markets []domain.Market `json:"markets"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// ListMarkets returns upstream markets with pagination, or a search when the
// q parameter is present.
// GET /api/markets?limit=50&offset=0&q=
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	offset := parseOffset(r)

	var (
		markets []domain.Market
		err     error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		markets, err = h.markets.SearchMarkets(r.Context(), q, limit)
	} else {
		markets, err = h.markets.GetMarkets(r.Context(), limit, offset)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list markets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to list markets")
		return
	}
	if markets == nil {
		markets = []domain.Market{}
	}

	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets: markets,
		Limit:   limit,
		Offset:  offset,
	})
}

// GetMarket returns a single market by its ID.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	market, err := h.markets.GetMarket(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get market failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to get market")
		return
	}

	writeJSON(w, http.StatusOK, market)
}
