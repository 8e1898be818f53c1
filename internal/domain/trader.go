package domain

// TraderSearchResult is one candidate trader profile, either from the primary
// search source or reconstructed from a leaderboard snapshot in fallback
// mode. Results are deduplicated by lowercased address within one response.
type TraderSearchResult struct {
	Address     string   `json:"address"`
	DisplayName string   `json:"displayName"`
	Username    string   `json:"username,omitempty"`
	Pseudonym   string   `json:"pseudonym,omitempty"`
	Rank        *int     `json:"rank,omitempty"`
	Roi         *float64 `json:"roi,omitempty"`
	Pnl         *float64 `json:"pnl,omitempty"`
	Volume      *float64 `json:"volume,omitempty"`
	Trades      *int     `json:"trades,omitempty"`
	AvatarURL   string   `json:"avatarUrl,omitempty"`
}

// TraderOverview bundles every per-address analytics view into one response:
// resolved profile, canonical trades, derived PnL and portfolio, and the raw
// open orders.
type TraderOverview struct {
	Profile    TraderSearchResult `json:"profile"`
	Trades     []CanonicalTrade   `json:"trades"`
	Pnl        PnlResult          `json:"pnl"`
	Portfolio  PortfolioSnapshot  `json:"portfolio"`
	OpenOrders []map[string]any   `json:"openOrders"`
}

// FromLeaderboardEntry converts a reconciled leaderboard row into a search
// candidate for the degraded fallback path.
func FromLeaderboardEntry(e LeaderboardEntry) TraderSearchResult {
	rank := e.Rank
	return TraderSearchResult{
		Address:     e.Address,
		DisplayName: e.DisplayName,
		Username:    e.Username,
		Pseudonym:   e.Pseudonym,
		Rank:        &rank,
		Roi:         e.Roi,
		Pnl:         e.Pnl,
		Volume:      e.Volume,
		Trades:      e.Trades,
		AvatarURL:   e.AvatarURL,
	}
}
