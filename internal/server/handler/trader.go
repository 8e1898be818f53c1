package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// TraderAnalytics defines the per-address derivations the handler serves.
type TraderAnalytics interface {
	Trades(ctx context.Context, address string, period domain.Period) ([]domain.CanonicalTrade, error)
	Pnl(ctx context.Context, address string, period domain.Period) (domain.PnlResult, error)
	Portfolio(ctx context.Context, address string, period domain.Period) (domain.PortfolioSnapshot, error)
	History(ctx context.Context, address string) ([]domain.HistoryPoint, error)
	Overview(ctx context.Context, address string, profile domain.TraderSearchResult) (domain.TraderOverview, error)
}

// ProfileResolver picks the best trader profile for a query string.
type ProfileResolver interface {
	Resolve(ctx context.Context, q string) (domain.TraderSearchResult, bool, error)
}

// TraderHandler serves per-address trade analytics views.
type TraderHandler struct {
	analytics TraderAnalytics
	resolver  ProfileResolver
	logger    *slog.Logger
}

// NewTraderHandler creates a TraderHandler.
func NewTraderHandler(analytics TraderAnalytics, resolver ProfileResolver, logger *slog.Logger) *TraderHandler {
	return &TraderHandler{
		analytics: analytics,
		resolver:  resolver,
		logger:    logHandler(logger, "trader"),
	}
}

// traderAddress validates and lowercases the address path parameter.
func traderAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	addr := pathParam(r, "address")
	if !common.IsHexAddress(addr) {
		writeError(w, http.StatusBadRequest, "invalid trader address")
		return "", false
	}
	return strings.ToLower(addr), true
}

// GetTrades returns the canonical trades for an address over a period.
// GET /api/analytics/trader/{address}/trades?period=&limit=
func (h *TraderHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	addr, ok := traderAddress(w, r)
	if !ok {
		return
	}
	period := parsePeriod(r)
	limit := parseLimit(r, 50)

	trades, err := h.analytics.Trades(r.Context(), addr, period)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "trades failed",
			slog.String("address", addr),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "trade feed unavailable")
		return
	}
	if len(trades) > limit {
		trades = trades[:limit]
	}
	if trades == nil {
		trades = []domain.CanonicalTrade{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address": addr,
		"period":  period,
		"trades":  trades,
	})
}

// GetPnl returns the derived PnL for an address over a period.
// GET /api/analytics/trader/{address}/pnl?period=
func (h *TraderHandler) GetPnl(w http.ResponseWriter, r *http.Request) {
	addr, ok := traderAddress(w, r)
	if !ok {
		return
	}
	period := parsePeriod(r)

	pnl, err := h.analytics.Pnl(r.Context(), addr, period)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "pnl failed",
			slog.String("address", addr),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "trade feed unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address": addr,
		"period":  period,
		"pnl":     pnl,
	})
}

// GetPortfolio returns the open-position snapshot for an address.
// GET /api/analytics/trader/{address}/portfolio?period=
func (h *TraderHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	addr, ok := traderAddress(w, r)
	if !ok {
		return
	}
	period := parsePeriod(r)

	snap, err := h.analytics.Portfolio(r.Context(), addr, period)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "portfolio failed",
			slog.String("address", addr),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "trade feed unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address":   addr,
		"period":    period,
		"portfolio": snap,
	})
}

// GetHistory returns the per-day cumulative PnL series for an address.
// GET /api/analytics/trader/{address}/history
func (h *TraderHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	addr, ok := traderAddress(w, r)
	if !ok {
		return
	}

	history, err := h.analytics.History(r.Context(), addr)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history failed",
			slog.String("address", addr),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "trade feed unavailable")
		return
	}
	if history == nil {
		history = []domain.HistoryPoint{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address": addr,
		"history": history,
	})
}

// GetOverview returns the combined profile + analytics view for an address.
// Profile resolution failures degrade to a minimal address-only profile.
// GET /api/users/{address}/overview
func (h *TraderHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	addr, ok := traderAddress(w, r)
	if !ok {
		return
	}

	profile := domain.TraderSearchResult{Address: addr, DisplayName: addr}
	if resolved, found, err := h.resolver.Resolve(r.Context(), addr); err == nil && found {
		profile = resolved
	} else if err != nil {
		h.logger.WarnContext(r.Context(), "profile resolution failed, using minimal profile",
			slog.String("address", addr),
			slog.String("error", err.Error()),
		)
	}

	overview, err := h.analytics.Overview(r.Context(), addr, profile)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "overview failed",
			slog.String("address", addr),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "trade feed unavailable")
		return
	}

	writeJSON(w, http.StatusOK, overview)
}
