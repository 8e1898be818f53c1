package analytics

import (
	"sort"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
	"github.com/Rogeraristi/polycopy-sub001/internal/normalize"
)

// BuildHistorySeries buckets a trader's trades into UTC days and emits one
// point per active day with cumulative cash-flow PnL, trade count, and
// notional volume up to and including that day. Trades without a parseable
// timestamp cannot be placed on the axis and are skipped here, unlike the
// period filter which keeps them.
func BuildHistorySeries(trades []domain.CanonicalTrade) []domain.HistoryPoint {
	type dated struct {
		ts    int64
		trade domain.CanonicalTrade
	}

	items := make([]dated, 0, len(trades))
	for _, t := range trades {
		if t.TimestampMillis == nil {
			continue
		}
		items = append(items, dated{ts: *t.TimestampMillis, trade: t})
	}
	if len(items) == 0 {
		return []domain.HistoryPoint{}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].ts < items[j].ts })

	points := make([]domain.HistoryPoint, 0)
	var (
		cumPnl      float64
		cumTrades   int
		cumNotional float64
		currentDay  int64 = -1
	)

	flush := func() {
		if currentDay < 0 {
			return
		}
		points = append(points, domain.HistoryPoint{
			TimestampMillis: currentDay,
			Pnl:             normalize.Round(cumPnl, 4),
			TradeCount:      cumTrades,
			NotionalVolume:  normalize.Round(cumNotional, 4),
		})
	}

	for _, it := range items {
		day := time.UnixMilli(it.ts).UTC().Truncate(24 * time.Hour).UnixMilli()
		if day != currentDay {
			flush()
			currentDay = day
		}

		t := it.trade
		cumTrades++
		if t.Price != nil {
			notional := t.Size * *t.Price
			cumNotional += notional
			if t.Side == domain.TradeSideSell {
				cumPnl += notional
			} else {
				cumPnl -= notional
			}
		}
	}
	flush()

	return points
}
