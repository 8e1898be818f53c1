package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/cache/memory"
	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

type fakeFeed struct {
	trades     []map[string]any
	orders     []map[string]any
	orderErr   error
	value      float64
	valueErr   error
	tradeCalls int
	orderCalls int
}

func (f *fakeFeed) FetchTrades(context.Context, string, int) ([]map[string]any, error) {
	f.tradeCalls++
	return f.trades, nil
}

func (f *fakeFeed) FetchOpenOrders(context.Context, string) ([]map[string]any, error) {
	f.orderCalls++
	return f.orders, f.orderErr
}

func (f *fakeFeed) FetchPortfolioValue(context.Context, string) (float64, error) {
	return f.value, f.valueErr
}

func newTestAnalytics(feed *fakeFeed, now time.Time) *AnalyticsService {
	clock := func() time.Time { return now }
	return NewAnalyticsService(feed, memory.NewFeedCache(clock), time.Minute, 500, clock, discardLogger())
}

func TestAnalytics_TradesCachedWithinTTL(t *testing.T) {
	feed := &fakeFeed{trades: []map[string]any{
		{"side": "buy", "size": 10.0, "price": 2.0, "market": "m"},
	}}
	svc := newTestAnalytics(feed, time.Now())
	ctx := context.Background()

	first, err := svc.Trades(ctx, "0xA", domain.PeriodAll)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, domain.TradeSideBuy, first[0].Side)

	_, err = svc.Trades(ctx, "0xA", domain.PeriodAll)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.tradeCalls)
}

func TestAnalytics_PnlFromCashflow(t *testing.T) {
	feed := &fakeFeed{trades: []map[string]any{
		{"side": "buy", "size": 10.0, "price": 1.0, "market": "m"},
		{"side": "sell", "size": 10.0, "price": 1.5, "market": "m"},
	}}
	svc := newTestAnalytics(feed, time.Now())

	pnl, err := svc.Pnl(context.Background(), "0xA", domain.PeriodAll)
	require.NoError(t, err)
	assert.Equal(t, 5.0, pnl.Pnl)
	assert.Equal(t, domain.PnlCalcCashflowProxy, pnl.Calculation)
	assert.Equal(t, 2, pnl.TradeCount)
}

func TestAnalytics_PortfolioUsesUpstreamValueWhenAvailable(t *testing.T) {
	feed := &fakeFeed{
		trades: []map[string]any{
			{"side": "buy", "size": 10.0, "price": 2.0, "market": "m"},
		},
		value: 123.45,
	}
	svc := newTestAnalytics(feed, time.Now())

	snap, err := svc.Portfolio(context.Background(), "0xA", domain.PeriodAll)
	require.NoError(t, err)
	require.Len(t, snap.OpenPositions, 1)
	assert.Equal(t, 123.45, snap.PortfolioValue)
}

func TestAnalytics_OverviewDegradesOnOrderFailure(t *testing.T) {
	feed := &fakeFeed{
		trades: []map[string]any{
			{"side": "buy", "size": 1.0, "price": 1.0, "market": "m"},
		},
		orderErr: assert.AnError,
	}
	svc := newTestAnalytics(feed, time.Now())

	profile := domain.TraderSearchResult{Address: "0xa", DisplayName: "0xa"}
	overview, err := svc.Overview(context.Background(), "0xA", profile)
	require.NoError(t, err)
	assert.Len(t, overview.Trades, 1)
	assert.NotNil(t, overview.OpenOrders)
	assert.Equal(t, profile, overview.Profile)
}
