package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryArray_ContainerPrecedence(t *testing.T) {
	// First non-empty container wins; containers are not merged.
	payload := map[string]any{
		"data":    []any{},
		"leaders": []any{map[string]any{"address": "0xAA"}},
		"results": []any{map[string]any{"address": "0xBB"}, map[string]any{"address": "0xCC"}},
	}
	arr := EntryArray(payload)
	require.Len(t, arr, 1)

	// A bare array payload is accepted directly.
	bare := []any{map[string]any{"address": "0xDD"}}
	assert.Len(t, EntryArray(bare), 1)

	assert.Nil(t, EntryArray("not a payload"))
}

func TestEntries_RejectsRowsWithoutAddress(t *testing.T) {
	payload := []any{
		map[string]any{"pnl": 100.0, "volume": 500.0, "name": "ghost"}, // no address: rejected
		map[string]any{"address": "0xAbC1234567890dEf1234567890abcdef12345678", "pnl": 10.0},
		"not even an object",
	}
	entries := Entries(payload, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "0xabc1234567890def1234567890abcdef12345678", entries[0].Address)
}

func TestEntries_RankFallbackToArrayPosition(t *testing.T) {
	payload := []any{
		map[string]any{"address": "0xA1", "rank": 7.0},
		map[string]any{"address": "0xA2"},
	}
	entries := Entries(payload, 0)
	require.Len(t, entries, 2)
	assert.Equal(t, 7, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank) // 1-based position in the raw array
}

func TestEntries_RoiComputedOnlyWhenAbsent(t *testing.T) {
	payload := []any{
		map[string]any{"address": "0xA1", "pnl": 50.0, "volume": 200.0},
		map[string]any{"address": "0xA2", "pnl": 50.0, "volume": 200.0, "roi": 99.0},
		map[string]any{"address": "0xA3", "pnl": 50.0, "volume": 0.0},
		map[string]any{"address": "0xA4", "pnl": 50.0},
	}
	entries := Entries(payload, 0)
	require.Len(t, entries, 4)

	require.NotNil(t, entries[0].Roi)
	assert.Equal(t, 25.0, *entries[0].Roi) // 50/200*100

	require.NotNil(t, entries[1].Roi)
	assert.Equal(t, 99.0, *entries[1].Roi) // explicit value wins

	assert.Nil(t, entries[2].Roi) // zero volume: never divide
	assert.Nil(t, entries[3].Roi) // missing volume
}

func TestEntries_DisplayNameFallbackChain(t *testing.T) {
	addr := "0x1234567890abcdef1234567890abcdef12345678"
	payload := []any{
		map[string]any{"address": addr, "name": "Alice"},
		map[string]any{"address": addr, "user": map[string]any{"displayName": "Bob"}},
		map[string]any{"address": addr},
	}
	entries := Entries(payload, 0)
	require.Len(t, entries, 3)
	assert.Equal(t, "Alice", entries[0].DisplayName)
	assert.Equal(t, "Bob", entries[1].DisplayName)
	assert.Equal(t, "0x1234…5678", entries[2].DisplayName)
}

func TestEntries_TruncationIsFinalSlice(t *testing.T) {
	// The limit must be applied after mapping, because earlier raw rows can
	// be rejected for missing addresses.
	payload := []any{
		map[string]any{"pnl": 1.0}, // rejected
		map[string]any{"address": "0xA1"},
		map[string]any{"address": "0xA2"},
		map[string]any{"address": "0xA3"},
	}
	entries := Entries(payload, 2)
	require.Len(t, entries, 2)
	assert.Equal(t, "0xa1", entries[0].Address)
	assert.Equal(t, "0xa2", entries[1].Address)
}

func TestEntries_DialectAliases(t *testing.T) {
	// Flat dataset dump dialect: proxyWallet/profit/amountTraded naming.
	payload := map[string]any{
		"data": []any{
			map[string]any{
				"proxyWallet":  "0xFEED",
				"profit":       "123.4",
				"amountTraded": 1000.0,
				"numTrades":    17.0,
				"ens":          "whale.eth",
			},
		},
	}
	entries := Entries(payload, 0)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "0xfeed", e.Address)
	require.NotNil(t, e.Pnl)
	assert.Equal(t, 123.4, *e.Pnl)
	require.NotNil(t, e.Volume)
	assert.Equal(t, 1000.0, *e.Volume)
	require.NotNil(t, e.Trades)
	assert.Equal(t, 17, *e.Trades)
	assert.Equal(t, "whale.eth", e.DisplayName)
	assert.Equal(t, "whale.eth", e.Pseudonym)
	require.NotNil(t, e.Roi)
	assert.Equal(t, 12.34, *e.Roi)
}

func TestTruncateAddress(t *testing.T) {
	assert.Equal(t, "0x1234…5678", TruncateAddress("0x1234567890abcdef1234567890abcdef12345678"))
	assert.Equal(t, "0xshort", TruncateAddress("0xshort"))
}
