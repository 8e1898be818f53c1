// Package service orchestrates platform clients, caches, and the derivation
// core behind the HTTP and WebSocket boundary.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/analytics"
	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
	"github.com/Rogeraristi/polycopy-sub001/internal/normalize"
)

// TradeFeed is the upstream per-address data source the analytics service
// derives everything from.
type TradeFeed interface {
	FetchTrades(ctx context.Context, address string, limit int) ([]map[string]any, error)
	FetchOpenOrders(ctx context.Context, address string) ([]map[string]any, error)
	FetchPortfolioValue(ctx context.Context, address string) (float64, error)
}

// AnalyticsService derives per-address trade analytics. Raw upstream payloads
// are cached briefly per address; canonical trades and all derived figures
// are recomputed from the raw payload on every query.
type AnalyticsService struct {
	feed      TradeFeed
	cache     domain.TradeFeedCache
	feedTTL   time.Duration
	feedLimit int
	clock     func() time.Time
	logger    *slog.Logger
}

// NewAnalyticsService creates an AnalyticsService. feedTTL bounds how long a
// raw trade payload is reused; clock defaults to time.Now.
func NewAnalyticsService(
	feed TradeFeed,
	cache domain.TradeFeedCache,
	feedTTL time.Duration,
	feedLimit int,
	clock func() time.Time,
	logger *slog.Logger,
) *AnalyticsService {
	if feedTTL <= 0 {
		feedTTL = time.Minute
	}
	if feedLimit <= 0 {
		feedLimit = 500
	}
	if clock == nil {
		clock = time.Now
	}
	return &AnalyticsService{
		feed:      feed,
		cache:     cache,
		feedTTL:   feedTTL,
		feedLimit: feedLimit,
		clock:     clock,
		logger:    logger.With(slog.String("component", "analytics_service")),
	}
}

// rawTrades returns the raw upstream trades for the address, served from the
// feed cache when fresh.
func (s *AnalyticsService) rawTrades(ctx context.Context, address string) ([]map[string]any, error) {
	if raw, hit := s.cache.Get(ctx, address); hit {
		return raw, nil
	}

	raw, err := s.feed.FetchTrades(ctx, address, s.feedLimit)
	if err != nil {
		return nil, fmt.Errorf("analytics_service: fetch trades: %w", err)
	}

	if cacheErr := s.cache.Set(ctx, address, raw, s.feedTTL); cacheErr != nil {
		s.logger.WarnContext(ctx, "trade feed cache write failed",
			slog.String("address", address),
			slog.String("error", cacheErr.Error()),
		)
	}
	return raw, nil
}

// Trades returns the canonical trades for the address filtered to the period.
func (s *AnalyticsService) Trades(ctx context.Context, address string, period domain.Period) ([]domain.CanonicalTrade, error) {
	raw, err := s.rawTrades(ctx, address)
	if err != nil {
		return nil, err
	}
	return normalize.Trades(raw, period, s.clock()), nil
}

// Pnl computes the realized PnL for the address over the period.
func (s *AnalyticsService) Pnl(ctx context.Context, address string, period domain.Period) (domain.PnlResult, error) {
	trades, err := s.Trades(ctx, address, period)
	if err != nil {
		return domain.PnlResult{}, err
	}
	return analytics.ComputePnl(trades), nil
}

// Portfolio computes the open-position snapshot for the address over the
// period. When the upstream portfolio-value endpoint answers, its figure
// replaces the locally derived one.
func (s *AnalyticsService) Portfolio(ctx context.Context, address string, period domain.Period) (domain.PortfolioSnapshot, error) {
	trades, err := s.Trades(ctx, address, period)
	if err != nil {
		return domain.PortfolioSnapshot{}, err
	}
	snap := analytics.ComputePortfolioSnapshot(trades)

	if value, err := s.feed.FetchPortfolioValue(ctx, address); err != nil {
		s.logger.DebugContext(ctx, "portfolio value fetch failed, using derived value",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
	} else if value > 0 {
		snap.PortfolioValue = value
	}
	return snap, nil
}

// History returns the per-day cumulative PnL series for the address.
func (s *AnalyticsService) History(ctx context.Context, address string) ([]domain.HistoryPoint, error) {
	trades, err := s.Trades(ctx, address, domain.PeriodAll)
	if err != nil {
		return nil, err
	}
	return analytics.BuildHistorySeries(trades), nil
}

// OpenOrders returns the raw open orders for the address.
func (s *AnalyticsService) OpenOrders(ctx context.Context, address string) ([]map[string]any, error) {
	orders, err := s.feed.FetchOpenOrders(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("analytics_service: fetch open orders: %w", err)
	}
	return orders, nil
}

// Overview assembles the combined per-address view. Open-order failures
// degrade to an empty list; the trade feed is fetched once and shared by
// every derived section.
func (s *AnalyticsService) Overview(ctx context.Context, address string, profile domain.TraderSearchResult) (domain.TraderOverview, error) {
	trades, err := s.Trades(ctx, address, domain.PeriodAll)
	if err != nil {
		return domain.TraderOverview{}, err
	}

	snap := analytics.ComputePortfolioSnapshot(trades)
	if value, err := s.feed.FetchPortfolioValue(ctx, address); err == nil && value > 0 {
		snap.PortfolioValue = value
	}

	orders, err := s.OpenOrders(ctx, address)
	if err != nil {
		s.logger.WarnContext(ctx, "open orders unavailable for overview",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		orders = []map[string]any{}
	}

	return domain.TraderOverview{
		Profile:    profile,
		Trades:     trades,
		Pnl:        analytics.ComputePnl(trades),
		Portfolio:  snap,
		OpenOrders: orders,
	}, nil
}
