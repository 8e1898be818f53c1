package domain

import "time"

// LeaderboardEntry is one row of a reconciled leaderboard period. Address is
// always present and lowercased; every numeric field is nil when no upstream
// dialect supplied it.
type LeaderboardEntry struct {
	Address     string   `json:"address"`
	DisplayName string   `json:"displayName"`
	Rank        int      `json:"rank"`
	Roi         *float64 `json:"roi,omitempty"`
	Pnl         *float64 `json:"pnl,omitempty"`
	Volume      *float64 `json:"volume,omitempty"`
	Trades      *int     `json:"trades,omitempty"`
	Username    string   `json:"username,omitempty"`
	Pseudonym   string   `json:"pseudonym,omitempty"`
	AvatarURL   string   `json:"avatarUrl,omitempty"`
}

// PeriodDiagnostics records which source won a period's fetch and how many
// entries it produced. This is part of the pipeline contract, not incidental
// logging: the boundary surfaces it under debug=true.
type PeriodDiagnostics struct {
	Source  string `json:"source"`
	Count   int    `json:"count"`
	Details string `json:"details,omitempty"`
}

// LeaderboardSnapshot is the wholesale result of one reconciliation cycle.
// It is replaced as a unit on every successful refresh and never mutated in
// place, which is what makes the lock-free cache contract safe.
type LeaderboardSnapshot struct {
	Periods       map[Period][]LeaderboardEntry `json:"periods"`
	Labels        map[Period]string             `json:"labels"`
	DefaultPeriod Period                        `json:"defaultPeriod"`
	Diagnostics   map[Period]PeriodDiagnostics  `json:"diagnostics,omitempty"`
	FetchedAt     time.Time                     `json:"fetchedAt"`
	Source        string                        `json:"source"`
}

// TotalEntries returns the number of entries across all period buckets.
func (s LeaderboardSnapshot) TotalEntries() int {
	n := 0
	for _, entries := range s.Periods {
		n += len(entries)
	}
	return n
}

// CacheInfo reports the cache outcome of a snapshot request so callers can
// observe hit rates and remaining freshness.
type CacheInfo struct {
	Hit        bool  `json:"hit"`
	TTLSeconds int64 `json:"ttlSeconds"`
}
