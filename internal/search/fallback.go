package search

import (
	"errors"
	"strings"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// authFailureMarkers are the status codes and keywords that identify an
// upstream auth rejection inside an otherwise opaque error message.
var authFailureMarkers = []string{"401", "403", "unauthorized", "forbidden"}

// IsAuthFailure reports whether err looks like an upstream authentication or
// authorization rejection, either as a typed sentinel or by message pattern.
func IsAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range authFailureMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// ScanSnapshot is the degraded search path: substring-match the query against
// address, display name, username and pseudonym across every period of the
// snapshot, deduplicated by lowercased address, in snapshot iteration order.
// Results are not rescored.
func ScanSnapshot(query string, snap domain.LeaderboardSnapshot, limit int) []domain.TraderSearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	seen := make(map[string]bool)
	var results []domain.TraderSearchResult

	scan := func(entries []domain.LeaderboardEntry) {
		for _, e := range entries {
			addr := strings.ToLower(e.Address)
			if seen[addr] {
				continue
			}
			if !entryMatches(q, e) {
				continue
			}
			seen[addr] = true
			results = append(results, domain.FromLeaderboardEntry(e))
			if limit > 0 && len(results) >= limit {
				return
			}
		}
	}

	// The default period first, then the remaining periods in configured
	// order, so the most relevant bucket wins the dedup.
	if entries, ok := snap.Periods[snap.DefaultPeriod]; ok {
		scan(entries)
	}
	for _, period := range domain.Periods {
		if limit > 0 && len(results) >= limit {
			break
		}
		if period == snap.DefaultPeriod {
			continue
		}
		if entries, ok := snap.Periods[period]; ok {
			scan(entries)
		}
	}
	return results
}

func entryMatches(q string, e domain.LeaderboardEntry) bool {
	for _, field := range []string{e.Address, e.DisplayName, e.Username, e.Pseudonym} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
