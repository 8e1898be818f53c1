package normalize

import (
	"strings"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// Field alias lists for the trade dialects seen across the upstream trade
// feed, the activity endpoint, and the on-chain fill dump. Order is the
// extraction precedence.
var (
	tradeTimestampKeys = []string{
		"timestamp", "time", "createdAt", "created_at", "matchTime",
		"match_time", "ts", "date", "blockTimestamp", "block_timestamp",
	}
	tradeSizeKeys = []string{
		"size", "amount", "shares", "quantity", "usdcSize", "usdc_size",
		"totalSize", "tokens",
	}
	tradePriceKeys = []string{
		"price", "avgPrice", "avg_price", "executionPrice", "fillPrice",
		"entryPrice",
	}
	tradeSideKeys   = []string{"side", "type", "action", "direction", "takerSide"}
	tradeMarketKeys = []string{
		"market", "marketId", "market_id", "conditionId", "condition_id",
		"marketSlug", "slug", "eventSlug", "asset", "ticker", "title",
		"question",
	}
	tradeNestedMarketKeys = []string{"id", "slug", "question"}
	tradeRealizedPnlKeys  = []string{"realizedPnl", "realized_pnl", "profit"}
)

// Epoch magnitude cutoffs for timestamp unit disambiguation.
const (
	epochSecondsMax = 1e11 // below this the value is treated as seconds
	epochMillisMax  = 1e14 // above this the value is treated as microseconds
)

// ExtractTimestamp resolves a trade's timestamp to epoch milliseconds. It
// tries the aliased fields in order, accepting string dates (RFC 3339 with
// and without zone) and numeric epochs in seconds, milliseconds, or
// microseconds, disambiguated by magnitude. Returns nil when nothing parses.
func ExtractTimestamp(raw map[string]any) *int64 {
	for _, k := range tradeTimestampKeys {
		v, present := raw[k]
		if !present {
			continue
		}
		if s, ok := v.(string); ok {
			if ms, ok := parseStringDate(s); ok {
				return &ms
			}
		}
		if f, ok := ToFinite(v); ok && f > 0 {
			ms := epochToMillis(f)
			return &ms
		}
	}
	return nil
}

func parseStringDate(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	// Numeric strings fall through to epoch handling.
	if f, ok := ToFinite(s); ok && f > 0 {
		return epochToMillis(f), true
	}
	return 0, false
}

func epochToMillis(f float64) int64 {
	switch {
	case f < epochSecondsMax:
		return int64(f * 1000)
	case f > epochMillisMax:
		return int64(f / 1000)
	default:
		return int64(f)
	}
}

// ExtractSize returns the first finite size-like candidate as a non-negative
// number, defaulting to 0 when nothing parses. Direction lives in the side
// field, never in the sign of the size.
func ExtractSize(raw map[string]any) float64 {
	if f, ok := FirstNumber(raw, tradeSizeKeys...); ok {
		if f < 0 {
			return -f
		}
		return f
	}
	return 0
}

// ExtractPrice returns the first finite price-like candidate, or nil.
func ExtractPrice(raw map[string]any) *float64 {
	if f, ok := FirstNumber(raw, tradePriceKeys...); ok {
		return &f
	}
	return nil
}

// ExtractSide maps a side-like field onto "buy"/"sell". Unrecognised values
// pass through lowercased rather than failing; downstream folds treat them as
// neither buy nor sell where that distinction matters.
func ExtractSide(raw map[string]any) string {
	s, ok := FirstString(raw, tradeSideKeys...)
	if !ok {
		return domain.TradeSideUnknown
	}
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "buy") || s == "b":
		return domain.TradeSideBuy
	case strings.Contains(s, "sell") || s == "s":
		return domain.TradeSideSell
	default:
		return s
	}
}

// ExtractMarketKey returns the first non-empty market identifier among the
// flat aliases and the nested market object, trimmed and lowercased, or
// "unknown" when no alias is present.
func ExtractMarketKey(raw map[string]any) string {
	if s, ok := FirstString(raw, tradeMarketKeys...); ok {
		return strings.ToLower(s)
	}
	if nested, ok := raw["market"].(map[string]any); ok {
		if s, ok := FirstString(nested, tradeNestedMarketKeys...); ok {
			return strings.ToLower(s)
		}
	}
	return domain.MarketKeyUnknown
}

// ExtractRealizedPnl returns the explicit realized-PnL-like field, or nil.
func ExtractRealizedPnl(raw map[string]any) *float64 {
	if f, ok := FirstNumber(raw, tradeRealizedPnlKeys...); ok {
		return &f
	}
	return nil
}

// Trade reduces one raw trade object to its canonical record. It never
// fails: missing or malformed fields become defaults or absences.
func Trade(raw map[string]any) domain.CanonicalTrade {
	return domain.CanonicalTrade{
		MarketKey:       ExtractMarketKey(raw),
		Side:            ExtractSide(raw),
		Size:            ExtractSize(raw),
		Price:           ExtractPrice(raw),
		TimestampMillis: ExtractTimestamp(raw),
		RealizedPnl:     ExtractRealizedPnl(raw),
	}
}

// Trades normalizes a raw batch and applies the period window. Trades whose
// timestamp could not be parsed are kept rather than dropped, so unexpected
// upstream timestamp formats degrade the filter, not the data.
func Trades(raws []map[string]any, period domain.Period, now time.Time) []domain.CanonicalTrade {
	out := make([]domain.CanonicalTrade, 0, len(raws))
	window, filtered := period.WindowMillis()
	cutoff := now.UnixMilli() - window
	for _, raw := range raws {
		t := Trade(raw)
		if filtered && t.TimestampMillis != nil && *t.TimestampMillis < cutoff {
			continue
		}
		out = append(out, t)
	}
	return out
}
