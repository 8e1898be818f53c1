package search

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

func ip(v int) *int         { return &v }
func fp(v float64) *float64 { return &v }

const addrAlice = "0x1111111111111111111111111111111111111111"
const addrBob = "0x2222222222222222222222222222222222222222"

func TestScore_ExactAddressBeatsExactName(t *testing.T) {
	byAddress := domain.TraderSearchResult{Address: addrAlice, DisplayName: "someone"}
	byName := domain.TraderSearchResult{Address: addrBob, Username: addrAlice}

	// Mixed-case address queries still hit the address tier.
	query := "0x1111111111111111111111111111111111111111"
	assert.Greater(t, Score(query, byAddress), Score(query, byName))
}

func TestScore_TierOrdering(t *testing.T) {
	exact := Score("alice", domain.TraderSearchResult{Address: addrBob, Username: "alice"})
	prefix := Score("alice", domain.TraderSearchResult{Address: addrBob, Username: "alice_trades"})
	substr := Score("alice", domain.TraderSearchResult{Address: addrBob, Username: "not_alice"})
	none := Score("alice", domain.TraderSearchResult{Address: addrBob, Username: "bob"})

	assert.Greater(t, exact, prefix)
	assert.Greater(t, prefix, substr)
	assert.Greater(t, substr, 0.0)
	assert.Equal(t, 0.0, none)
}

func TestScore_BonusesOnlyWhenTierMatched(t *testing.T) {
	// Top rank and huge pnl, but no name or address overlap: must stay 0.
	c := domain.TraderSearchResult{
		Address:  addrBob,
		Username: "bob",
		Rank:     ip(1),
		Pnl:      fp(1_000_000),
	}
	assert.Equal(t, 0.0, Score("alice", c))
}

func TestScore_RankBonusDecaysAndCaps(t *testing.T) {
	base := domain.TraderSearchResult{Address: addrBob, Username: "alice"}

	rank1 := base
	rank1.Rank = ip(1)
	rank10 := base
	rank10.Rank = ip(10)
	rank99 := base
	rank99.Rank = ip(99)

	assert.Equal(t, 50.0, Score("alice", rank1)-Score("alice", base))
	assert.Equal(t, 41.0, Score("alice", rank10)-Score("alice", base))
	assert.Equal(t, 0.0, Score("alice", rank99)-Score("alice", base))
}

func TestScore_PnlBonusBounded(t *testing.T) {
	base := domain.TraderSearchResult{Address: addrBob, Username: "alice"}

	small := base
	small.Pnl = fp(5000)
	huge := base
	huge.Pnl = fp(10_000_000)
	deepLoss := base
	deepLoss.Pnl = fp(-10_000_000)

	assert.Equal(t, 5.0, Score("alice", small)-Score("alice", base))
	assert.Equal(t, 20.0, Score("alice", huge)-Score("alice", base))
	assert.Equal(t, -20.0, Score("alice", deepLoss)-Score("alice", base))
}

func TestBest_StableTies(t *testing.T) {
	first := domain.TraderSearchResult{Address: addrAlice, Username: "alice"}
	second := domain.TraderSearchResult{Address: addrBob, Username: "alice"}

	got, ok := Best("alice", []domain.TraderSearchResult{first, second})
	require.True(t, ok)
	assert.Equal(t, addrAlice, got.Address)
}

func TestBest_NoMatchBelowThreshold(t *testing.T) {
	candidates := []domain.TraderSearchResult{
		{Address: addrAlice, Username: "bob", Rank: ip(1), Pnl: fp(999999)},
	}
	_, ok := Best("zzz", candidates)
	assert.False(t, ok)

	_, ok = Best("alice", nil)
	assert.False(t, ok)
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, IsAuthFailure(domain.ErrUnauthorized))
	assert.True(t, IsAuthFailure(fmt.Errorf("polymarket: search profiles: %w", domain.ErrUnauthorized)))
	assert.True(t, IsAuthFailure(errors.New("unexpected status 403")))
	assert.True(t, IsAuthFailure(errors.New("Unauthorized: token rejected")))
	assert.False(t, IsAuthFailure(errors.New("connection refused")))
	assert.False(t, IsAuthFailure(nil))
}

func TestScanSnapshot_DedupAndOrder(t *testing.T) {
	snap := domain.LeaderboardSnapshot{
		DefaultPeriod: domain.PeriodWeekly,
		Periods: map[domain.Period][]domain.LeaderboardEntry{
			domain.PeriodWeekly: {
				{Address: addrAlice, DisplayName: "Alice One", Rank: 1},
				{Address: addrBob, DisplayName: "Bob", Rank: 2},
			},
			domain.PeriodAll: {
				// Same trader under a different casing: deduplicated.
				{Address: "0X1111111111111111111111111111111111111111", DisplayName: "alice-all", Rank: 9},
				{Address: "0x3333333333333333333333333333333333333333", Username: "alicette", Rank: 3},
			},
		},
	}

	got := ScanSnapshot("alice", snap, 0)
	require.Len(t, got, 2)
	// Default period scanned first, so the weekly row wins the dedup.
	assert.Equal(t, "Alice One", got[0].DisplayName)
	assert.Equal(t, "alicette", got[1].Username)
}

func TestScanSnapshot_LimitAndEmptyQuery(t *testing.T) {
	snap := domain.LeaderboardSnapshot{
		DefaultPeriod: domain.PeriodWeekly,
		Periods: map[domain.Period][]domain.LeaderboardEntry{
			domain.PeriodWeekly: {
				{Address: addrAlice, DisplayName: "trader a"},
				{Address: addrBob, DisplayName: "trader b"},
			},
		},
	}

	assert.Len(t, ScanSnapshot("trader", snap, 1), 1)
	assert.Empty(t, ScanSnapshot("   ", snap, 0))
}
