package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

const testAddr = "0x56687bf447db6ffa42ffe2204a05edaa20f55839"

type stubAnalytics struct {
	trades     []domain.CanonicalTrade
	pnl        domain.PnlResult
	portfolio  domain.PortfolioSnapshot
	history    []domain.HistoryPoint
	overview   domain.TraderOverview
	gotAddress string
	gotPeriod  domain.Period
	gotProfile domain.TraderSearchResult
}

func (s *stubAnalytics) Trades(_ context.Context, address string, period domain.Period) ([]domain.CanonicalTrade, error) {
	s.gotAddress = address
	s.gotPeriod = period
	return s.trades, nil
}

func (s *stubAnalytics) Pnl(_ context.Context, address string, period domain.Period) (domain.PnlResult, error) {
	s.gotAddress = address
	s.gotPeriod = period
	return s.pnl, nil
}

func (s *stubAnalytics) Portfolio(_ context.Context, address string, period domain.Period) (domain.PortfolioSnapshot, error) {
	s.gotAddress = address
	s.gotPeriod = period
	return s.portfolio, nil
}

func (s *stubAnalytics) History(_ context.Context, address string) ([]domain.HistoryPoint, error) {
	s.gotAddress = address
	return s.history, nil
}

func (s *stubAnalytics) Overview(_ context.Context, address string, profile domain.TraderSearchResult) (domain.TraderOverview, error) {
	s.gotAddress = address
	s.gotProfile = profile
	s.overview.Profile = profile
	return s.overview, nil
}

type stubResolver struct {
	profile domain.TraderSearchResult
	found   bool
	err     error
}

func (s *stubResolver) Resolve(context.Context, string) (domain.TraderSearchResult, bool, error) {
	return s.profile, s.found, s.err
}

func traderRequest(path, address string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.SetPathValue("address", address)
	return req
}

func TestGetTrades_RejectsNonHexAddress(t *testing.T) {
	h := NewTraderHandler(&stubAnalytics{}, &stubResolver{}, discardLogger())

	rec := httptest.NewRecorder()
	h.GetTrades(rec, traderRequest("/api/analytics/trader/bob/trades", "bob"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTrades_LowercasesAddressAndClipsLimit(t *testing.T) {
	trades := make([]domain.CanonicalTrade, 5)
	for i := range trades {
		trades[i] = domain.CanonicalTrade{MarketKey: "m", Side: domain.TradeSideBuy, Size: 1}
	}
	stub := &stubAnalytics{trades: trades}
	h := NewTraderHandler(stub, &stubResolver{}, discardLogger())

	upper := "0x56687BF447DB6FFA42FFE2204A05EDAA20F55839"
	rec := httptest.NewRecorder()
	h.GetTrades(rec, traderRequest("/api/analytics/trader/"+upper+"/trades?period=weekly&limit=2", upper))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testAddr, stub.gotAddress)
	assert.Equal(t, domain.PeriodWeekly, stub.gotPeriod)

	var resp struct {
		Address string                  `json:"address"`
		Trades  []domain.CanonicalTrade `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testAddr, resp.Address)
	assert.Len(t, resp.Trades, 2)
}

func TestGetPnl_DefaultsToAllPeriod(t *testing.T) {
	stub := &stubAnalytics{pnl: domain.PnlResult{Pnl: 12.5, Calculation: domain.PnlCalcCashflowProxy, TradeCount: 3}}
	h := NewTraderHandler(stub, &stubResolver{}, discardLogger())

	rec := httptest.NewRecorder()
	h.GetPnl(rec, traderRequest("/api/analytics/trader/"+testAddr+"/pnl", testAddr))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PeriodAll, stub.gotPeriod)

	var resp struct {
		Pnl domain.PnlResult `json:"pnl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12.5, resp.Pnl.Pnl)
}

func TestGetHistory_EmptySeriesIsNotNull(t *testing.T) {
	h := NewTraderHandler(&stubAnalytics{}, &stubResolver{}, discardLogger())

	rec := httptest.NewRecorder()
	h.GetHistory(rec, traderRequest("/api/analytics/trader/"+testAddr+"/history", testAddr))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"history":[]`)
}

func TestGetOverview_UsesResolvedProfile(t *testing.T) {
	stub := &stubAnalytics{}
	resolver := &stubResolver{
		profile: domain.TraderSearchResult{Address: testAddr, DisplayName: "alice"},
		found:   true,
	}
	h := NewTraderHandler(stub, resolver, discardLogger())

	rec := httptest.NewRecorder()
	h.GetOverview(rec, traderRequest("/api/users/"+testAddr+"/overview", testAddr))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", stub.gotProfile.DisplayName)
}

func TestGetOverview_FallsBackToMinimalProfile(t *testing.T) {
	stub := &stubAnalytics{}
	h := NewTraderHandler(stub, &stubResolver{}, discardLogger())

	rec := httptest.NewRecorder()
	h.GetOverview(rec, traderRequest("/api/users/"+testAddr+"/overview", testAddr))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testAddr, stub.gotProfile.Address)
	assert.Equal(t, testAddr, stub.gotProfile.DisplayName)
}
