// Package search scores candidate trader profiles against a free-text or
// address query. Scoring is additive: one match-tier weight plus small rank
// and pnl adjustments. A candidate with no tier match never wins.
package search

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// Match tier weights, strictly descending so a stronger tier always beats a
// weaker tier regardless of bonuses.
const (
	scoreExactAddress = 1000
	scoreExactName    = 500
	scorePrefix       = 250
	scoreSubstring    = 100

	// rankBonusCeiling caps the linear rank decay: rank 1 earns the full
	// bonus, rank 51+ earns nothing.
	rankBonusCeiling = 50.0

	// pnlBonusBound clamps the pnl adjustment to ±20 so extreme pnl values
	// cannot jump a match tier.
	pnlBonusBound = 20.0
	pnlBonusScale = 1000.0
)

// Score computes the heuristic score of one candidate for the given query.
// The query should already be trimmed; matching is case-insensitive. A zero
// score means no tier matched.
func Score(query string, candidate domain.TraderSearchResult) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	tier := matchTier(q, candidate)
	if tier == 0 {
		return 0
	}

	// Bonuses only apply once a tier matched; an unmatched candidate must
	// stay at zero to keep the "best <= 0 means no match" threshold sound.
	return tier + rankBonus(candidate.Rank) + pnlBonus(candidate.Pnl)
}

func matchTier(q string, c domain.TraderSearchResult) float64 {
	address := strings.ToLower(c.Address)
	if common.IsHexAddress(q) && q == address {
		return scoreExactAddress
	}

	names := []string{
		strings.ToLower(c.Username),
		strings.ToLower(c.Pseudonym),
		strings.ToLower(c.DisplayName),
	}

	for _, name := range names {
		if name != "" && name == q {
			return scoreExactName
		}
	}
	for _, name := range names {
		if name != "" && strings.HasPrefix(name, q) {
			return scorePrefix
		}
	}
	for _, name := range names {
		if name != "" && strings.Contains(name, q) {
			return scoreSubstring
		}
	}
	if strings.Contains(address, q) {
		return scoreSubstring
	}
	return 0
}

// rankBonus decays linearly from the ceiling at rank 1 to zero at rank 51.
func rankBonus(rank *int) float64 {
	if rank == nil || *rank < 1 {
		return 0
	}
	bonus := rankBonusCeiling - float64(*rank-1)
	if bonus < 0 {
		return 0
	}
	return bonus
}

// pnlBonus rewards profitable traders and penalizes losing ones, bounded so
// pnl can only nudge candidates within a tier.
func pnlBonus(pnl *float64) float64 {
	if pnl == nil {
		return 0
	}
	bonus := *pnl / pnlBonusScale
	if bonus > pnlBonusBound {
		return pnlBonusBound
	}
	if bonus < -pnlBonusBound {
		return -pnlBonusBound
	}
	return bonus
}

// Best selects the highest-scoring candidate for the query. Ties keep the
// earliest candidate in list order. Returns false when no candidate scored
// above zero, meaning no tier matched at all.
func Best(query string, candidates []domain.TraderSearchResult) (domain.TraderSearchResult, bool) {
	bestIdx := -1
	bestScore := 0.0
	for i, c := range candidates {
		if s := Score(query, c); s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return domain.TraderSearchResult{}, false
	}
	return candidates[bestIdx], true
}
