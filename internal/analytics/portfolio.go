// Package analytics derives positions, PnL, and activity series from
// canonical trades. All functions are pure; callers own fetching and caching.
package analytics

import (
	"math"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
	"github.com/Rogeraristi/polycopy-sub001/internal/normalize"
)

// flatEpsilon is the net-share magnitude below which a position counts as
// closed and is excluded from open positions.
const flatEpsilon = 1e-6

// marketAggregate is the transient per-market fold state.
type marketAggregate struct {
	netShares  float64
	netCost    float64
	tradeCount int
	buys       int
	sells      int
}

// signedSize applies trade direction: sells negate, everything else —
// including unknown sides — counts as a buy. Folding unknown sides long is a
// deliberate lenient default carried over from the upstream feed's behavior;
// see DESIGN.md before changing it.
func signedSize(t domain.CanonicalTrade) float64 {
	if t.Side == domain.TradeSideSell {
		return -t.Size
	}
	return t.Size
}

// ComputePortfolioSnapshot folds trades into per-market aggregates and
// materializes the non-flat ones as open positions, in first-traded order.
// Notional volume is accumulated separately from the fold so it reflects
// gross traded notional regardless of net direction. A trade with an unknown
// price moves the share count but not the cost basis.
func ComputePortfolioSnapshot(trades []domain.CanonicalTrade) domain.PortfolioSnapshot {
	aggs := make(map[string]*marketAggregate)
	order := make([]string, 0)
	notional := 0.0

	for _, t := range trades {
		agg, ok := aggs[t.MarketKey]
		if !ok {
			agg = &marketAggregate{}
			aggs[t.MarketKey] = agg
			order = append(order, t.MarketKey)
		}

		signed := signedSize(t)
		agg.netShares += signed
		agg.tradeCount++
		switch t.Side {
		case domain.TradeSideSell:
			agg.sells++
		default:
			agg.buys++
		}

		if t.Price != nil {
			agg.netCost += signed * *t.Price
			notional += math.Abs(t.Size * *t.Price)
		}
	}

	open := make([]domain.OpenPosition, 0, len(order))
	portfolioValue := 0.0
	for _, market := range order {
		agg := aggs[market]
		if math.Abs(agg.netShares) <= flatEpsilon {
			continue
		}

		side := "long"
		if agg.netShares < 0 {
			side = "short"
		}

		// Division is safe here: flat aggregates were excluded above.
		avg := normalize.Round(agg.netCost/agg.netShares, 6)
		portfolioValue += math.Abs(agg.netShares) * avg

		open = append(open, domain.OpenPosition{
			Market:        market,
			Side:          side,
			Shares:        normalize.Round(math.Abs(agg.netShares), 6),
			AvgEntryPrice: &avg,
		})
	}

	return domain.PortfolioSnapshot{
		OpenPositions:  open,
		MarketCount:    len(aggs),
		NotionalVolume: normalize.Round(notional, 4),
		PortfolioValue: normalize.Round(portfolioValue, 4),
	}
}

// ComputePnl derives a PnL figure for a batch of trades. When at least one
// trade carries an explicit realized-PnL field, the result is the sum of
// those fields (trades without one contribute zero) and is tagged as such.
// Otherwise the result is the net cash flow — money spent on buys negative,
// money received from sells positive — which approximates realized PnL only
// for fully round-tripped positions. The tag lets consumers discount the
// proxy; never present it as true realized PnL.
func ComputePnl(trades []domain.CanonicalTrade) domain.PnlResult {
	hasRealized := false
	realizedSum := 0.0
	for _, t := range trades {
		if t.RealizedPnl != nil {
			hasRealized = true
			realizedSum += *t.RealizedPnl
		}
	}

	if hasRealized {
		return domain.PnlResult{
			Pnl:         normalize.Round(realizedSum, 4),
			Calculation: domain.PnlCalcRealizedFields,
			TradeCount:  len(trades),
		}
	}

	cashflow := 0.0
	for _, t := range trades {
		if t.Price == nil {
			continue
		}
		// Unknown sides spend like buys, matching the position fold.
		if t.Side == domain.TradeSideSell {
			cashflow += t.Size * *t.Price
		} else {
			cashflow -= t.Size * *t.Price
		}
	}

	return domain.PnlResult{
		Pnl:         normalize.Round(cashflow, 4),
		Calculation: domain.PnlCalcCashflowProxy,
		TradeCount:  len(trades),
	}
}
