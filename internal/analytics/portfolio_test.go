package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

func fp(v float64) *float64 { return &v }

func trade(market, side string, size float64, price *float64) domain.CanonicalTrade {
	return domain.CanonicalTrade{MarketKey: market, Side: side, Size: size, Price: price}
}

func TestComputePortfolioSnapshot_Empty(t *testing.T) {
	got := ComputePortfolioSnapshot(nil)
	assert.Empty(t, got.OpenPositions)
	assert.Equal(t, 0, got.MarketCount)
	assert.Equal(t, 0.0, got.NotionalVolume)
}

func TestComputePortfolioSnapshot_SingleBuy(t *testing.T) {
	got := ComputePortfolioSnapshot([]domain.CanonicalTrade{
		trade("m", domain.TradeSideBuy, 10, fp(2)),
	})
	require.Len(t, got.OpenPositions, 1)
	pos := got.OpenPositions[0]
	assert.Equal(t, "m", pos.Market)
	assert.Equal(t, "long", pos.Side)
	assert.Equal(t, 10.0, pos.Shares)
	require.NotNil(t, pos.AvgEntryPrice)
	assert.Equal(t, 2.0, *pos.AvgEntryPrice)
	assert.Equal(t, 1, got.MarketCount)
	assert.Equal(t, 20.0, got.NotionalVolume)
}

func TestComputePortfolioSnapshot_RoundTripGoesFlat(t *testing.T) {
	got := ComputePortfolioSnapshot([]domain.CanonicalTrade{
		trade("m", domain.TradeSideBuy, 10, fp(2)),
		trade("m", domain.TradeSideSell, 10, fp(3)),
	})
	// Net shares ~ 0: flat, excluded from open positions. Notional still
	// reflects both legs: 20 + 30.
	assert.Empty(t, got.OpenPositions)
	assert.Equal(t, 50.0, got.NotionalVolume)
	assert.Equal(t, 1, got.MarketCount)
}

func TestComputePortfolioSnapshot_ShortSide(t *testing.T) {
	got := ComputePortfolioSnapshot([]domain.CanonicalTrade{
		trade("m", domain.TradeSideSell, 4, fp(0.5)),
	})
	require.Len(t, got.OpenPositions, 1)
	pos := got.OpenPositions[0]
	assert.Equal(t, "short", pos.Side)
	assert.Equal(t, 4.0, pos.Shares)
	require.NotNil(t, pos.AvgEntryPrice)
	// netCost = -2, netShares = -4: average entry stays positive.
	assert.Equal(t, 0.5, *pos.AvgEntryPrice)
}

func TestComputePortfolioSnapshot_UnknownPriceMovesSharesNotCost(t *testing.T) {
	got := ComputePortfolioSnapshot([]domain.CanonicalTrade{
		trade("m", domain.TradeSideBuy, 10, fp(2)),
		trade("m", domain.TradeSideBuy, 10, nil),
	})
	require.Len(t, got.OpenPositions, 1)
	pos := got.OpenPositions[0]
	assert.Equal(t, 20.0, pos.Shares)
	require.NotNil(t, pos.AvgEntryPrice)
	// Cost basis only covers the priced leg: 20 / 20 shares = 1.
	assert.Equal(t, 1.0, *pos.AvgEntryPrice)
	// Unpriced trades contribute nothing to notional.
	assert.Equal(t, 20.0, got.NotionalVolume)
}

func TestComputePortfolioSnapshot_UnknownSideFoldsAsBuy(t *testing.T) {
	got := ComputePortfolioSnapshot([]domain.CanonicalTrade{
		trade("m", "mystery", 5, fp(1)),
	})
	require.Len(t, got.OpenPositions, 1)
	assert.Equal(t, "long", got.OpenPositions[0].Side)
	assert.Equal(t, 5.0, got.OpenPositions[0].Shares)
}

func TestComputePortfolioSnapshot_SellNegatesExtractedSize(t *testing.T) {
	// Signed size in the fold is the negation of the (non-negative)
	// extracted size for sells.
	sell := trade("m", domain.TradeSideSell, 7, nil)
	require.GreaterOrEqual(t, sell.Size, 0.0)
	assert.Equal(t, -7.0, signedSize(sell))
	buy := trade("m", domain.TradeSideBuy, 7, nil)
	assert.Equal(t, 7.0, signedSize(buy))
}

func TestComputePortfolioSnapshot_InsertionOrderStable(t *testing.T) {
	got := ComputePortfolioSnapshot([]domain.CanonicalTrade{
		trade("zeta", domain.TradeSideBuy, 1, fp(1)),
		trade("alpha", domain.TradeSideBuy, 1, fp(1)),
		trade("zeta", domain.TradeSideBuy, 1, fp(1)),
	})
	require.Len(t, got.OpenPositions, 2)
	assert.Equal(t, "zeta", got.OpenPositions[0].Market)
	assert.Equal(t, "alpha", got.OpenPositions[1].Market)
}

func TestComputePnl_RealizedFieldsWin(t *testing.T) {
	got := ComputePnl([]domain.CanonicalTrade{
		{RealizedPnl: fp(5)},
		{RealizedPnl: fp(-2)},
	})
	assert.Equal(t, 3.0, got.Pnl)
	assert.Equal(t, domain.PnlCalcRealizedFields, got.Calculation)
	assert.Equal(t, 2, got.TradeCount)
}

func TestComputePnl_MixedRealizedTradesContributeZero(t *testing.T) {
	got := ComputePnl([]domain.CanonicalTrade{
		{RealizedPnl: fp(5)},
		trade("m", domain.TradeSideSell, 100, fp(1)), // no realized field: contributes 0
	})
	assert.Equal(t, 5.0, got.Pnl)
	assert.Equal(t, domain.PnlCalcRealizedFields, got.Calculation)
	assert.Equal(t, 2, got.TradeCount)
}

func TestComputePnl_CashflowFallback(t *testing.T) {
	got := ComputePnl([]domain.CanonicalTrade{
		trade("m", domain.TradeSideBuy, 10, fp(1)),
		trade("m", domain.TradeSideSell, 10, fp(1.5)),
	})
	// -10 (spent) + 15 (received) = 5.
	assert.Equal(t, 5.0, got.Pnl)
	assert.Equal(t, domain.PnlCalcCashflowProxy, got.Calculation)
	assert.Equal(t, 2, got.TradeCount)
}

func TestComputePnl_FallbackSkipsUnpricedTrades(t *testing.T) {
	got := ComputePnl([]domain.CanonicalTrade{
		trade("m", domain.TradeSideBuy, 10, nil),
		trade("m", domain.TradeSideSell, 3, fp(2)),
	})
	assert.Equal(t, 6.0, got.Pnl)
	assert.Equal(t, domain.PnlCalcCashflowProxy, got.Calculation)
}
