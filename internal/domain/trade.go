package domain

import "time"

// Trade sides. Upstream payloads spell these dozens of ways; the normalizer
// maps anything containing "buy"/"sell" onto the two canonical values and
// passes every other value through lowercased, so Side is a plain string
// rather than a closed enum.
const (
	TradeSideBuy     = "buy"
	TradeSideSell    = "sell"
	TradeSideUnknown = "unknown"
)

// MarketKeyUnknown is the market key assigned when no market identifier
// alias could be extracted from a raw trade.
const MarketKeyUnknown = "unknown"

// CanonicalTrade is one trade record reduced to the fields the analytics
// derivers need, extracted from an arbitrarily-shaped upstream object.
// Nil pointer fields mean the value was absent or unparseable upstream.
// Canonical trades are derived per request and never persisted.
type CanonicalTrade struct {
	MarketKey       string   `json:"market"`
	Side            string   `json:"side"`
	Size            float64  `json:"size"`
	Price           *float64 `json:"price,omitempty"`
	TimestampMillis *int64   `json:"timestamp,omitempty"`

	// RealizedPnl is the explicit realized-PnL-like value some upstream
	// dialects attach to a fill. When at least one trade in a batch carries
	// it, PnL is summed from these fields instead of the cash-flow proxy.
	RealizedPnl *float64 `json:"realizedPnl,omitempty"`
}

// Period is a time-window key for trade filtering and leaderboard buckets.
type Period string

const (
	PeriodToday   Period = "today"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAll     Period = "all"
)

// Periods is the configured period order. Fallback selection and snapshot
// iteration follow this order.
var Periods = []Period{PeriodToday, PeriodWeekly, PeriodMonthly, PeriodAll}

// PeriodLabels maps every period key to its display label. Every configured
// period gets a label even when no data was found for it.
var PeriodLabels = map[Period]string{
	PeriodToday:   "Today",
	PeriodWeekly:  "This Week",
	PeriodMonthly: "This Month",
	PeriodAll:     "All Time",
}

// WindowMillis returns the lookback window for the period in milliseconds.
// ok is false for PeriodAll (and unrecognised periods), which disable
// filtering entirely.
func (p Period) WindowMillis() (int64, bool) {
	const day = 24 * int64(time.Hour/time.Millisecond)
	switch p {
	case PeriodToday:
		return day, true
	case PeriodWeekly:
		return 7 * day, true
	case PeriodMonthly:
		return 30 * day, true
	default:
		return 0, false
	}
}

// ParsePeriod maps a query-string value onto a Period, defaulting to
// PeriodAll for empty or unrecognised input.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodToday, PeriodWeekly, PeriodMonthly, PeriodAll:
		return Period(s)
	default:
		return PeriodAll
	}
}
