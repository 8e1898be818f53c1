package domain

// PnL calculation provenance tags. The cash-flow proxy is a known-imprecise
// heuristic (it treats open exposure as realized flow), so consumers must be
// able to tell the two apart and discount the fallback figure.
const (
	PnlCalcRealizedFields = "sum_of_trade_realized_pnl_fields"
	PnlCalcCashflowProxy  = "fallback_net_cashflow_proxy"
)

// OpenPosition is a per-market net position materialized from a trade fold
// when the net share count is not flat.
type OpenPosition struct {
	Market string `json:"market"`
	// Side is "long" when net shares are positive, "short" when negative.
	Side   string  `json:"side"`
	Shares float64 `json:"shares"`
	// AvgEntryPrice is net cost divided by net shares; zero when none of the
	// position's trades carried a price.
	AvgEntryPrice *float64 `json:"avgEntryPrice,omitempty"`
}

// PortfolioSnapshot is the derived view of one address's open positions.
// NotionalVolume is accumulated from raw traded notional independently of the
// position fold, so it reflects gross activity regardless of net direction.
type PortfolioSnapshot struct {
	OpenPositions  []OpenPosition `json:"openPositions"`
	MarketCount    int            `json:"marketCount"`
	NotionalVolume float64        `json:"notionalVolume"`
	PortfolioValue float64        `json:"portfolioValue"`
}

// PnlResult carries a derived PnL figure together with the calculation tag
// that tells the consumer how trustworthy the number is.
type PnlResult struct {
	Pnl         float64 `json:"pnl"`
	Calculation string  `json:"calculation"`
	TradeCount  int     `json:"tradeCount"`
}

// HistoryPoint is one bucket of a trader's activity series: cumulative
// cash-flow PnL, trade count, and notional volume as of the bucket day.
type HistoryPoint struct {
	TimestampMillis int64   `json:"timestamp"`
	Pnl             float64 `json:"pnl"`
	TradeCount      int     `json:"tradeCount"`
	NotionalVolume  float64 `json:"notionalVolume"`
}
