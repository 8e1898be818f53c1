package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

func tsTrade(day string, side string, size, price float64) domain.CanonicalTrade {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	ms := t.UnixMilli()
	return domain.CanonicalTrade{
		MarketKey:       "m",
		Side:            side,
		Size:            size,
		Price:           &price,
		TimestampMillis: &ms,
	}
}

func TestBuildHistorySeries_Empty(t *testing.T) {
	assert.Empty(t, BuildHistorySeries(nil))
}

func TestBuildHistorySeries_CumulativePerDay(t *testing.T) {
	trades := []domain.CanonicalTrade{
		tsTrade("2024-01-02", domain.TradeSideSell, 10, 2), // day 2, +20
		tsTrade("2024-01-01", domain.TradeSideBuy, 10, 1),  // day 1, -10 (out of order on purpose)
		tsTrade("2024-01-02", domain.TradeSideBuy, 5, 2),   // day 2, -10
	}

	points := BuildHistorySeries(trades)
	require.Len(t, points, 2)

	day1, _ := time.Parse("2006-01-02", "2024-01-01")
	assert.Equal(t, day1.UnixMilli(), points[0].TimestampMillis)
	assert.Equal(t, -10.0, points[0].Pnl)
	assert.Equal(t, 1, points[0].TradeCount)
	assert.Equal(t, 10.0, points[0].NotionalVolume)

	day2, _ := time.Parse("2006-01-02", "2024-01-02")
	assert.Equal(t, day2.UnixMilli(), points[1].TimestampMillis)
	assert.Equal(t, 0.0, points[1].Pnl) // -10 +20 -10, cumulative
	assert.Equal(t, 3, points[1].TradeCount)
	assert.Equal(t, 40.0, points[1].NotionalVolume)
}

func TestBuildHistorySeries_SkipsUndatedTrades(t *testing.T) {
	price := 1.0
	trades := []domain.CanonicalTrade{
		{MarketKey: "m", Side: domain.TradeSideBuy, Size: 5, Price: &price}, // no timestamp
		tsTrade("2024-03-01", domain.TradeSideBuy, 1, 1),
	}
	points := BuildHistorySeries(trades)
	require.Len(t, points, 1)
	assert.Equal(t, 1, points[0].TradeCount)
}
