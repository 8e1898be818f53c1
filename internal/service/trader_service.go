package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
	"github.com/Rogeraristi/polycopy-sub001/internal/normalize"
	"github.com/Rogeraristi/polycopy-sub001/internal/search"
)

// ProfileSearcher is the primary trader-search source.
type ProfileSearcher interface {
	SearchProfiles(ctx context.Context, q string, limit int) (any, error)
}

// SnapshotProvider supplies the most recent leaderboard snapshot for the
// degraded search fallback.
type SnapshotProvider interface {
	Cached(ctx context.Context) (domain.LeaderboardSnapshot, bool)
}

// TraderService resolves trader profiles from the primary search source,
// degrading to a leaderboard-snapshot scan when the source fails or returns
// nothing.
type TraderService struct {
	searcher  ProfileSearcher
	snapshots SnapshotProvider
	logger    *slog.Logger
}

// NewTraderService creates a TraderService.
func NewTraderService(searcher ProfileSearcher, snapshots SnapshotProvider, logger *slog.Logger) *TraderService {
	return &TraderService{
		searcher:  searcher,
		snapshots: snapshots,
		logger:    logger.With(slog.String("component", "trader_service")),
	}
}

// SearchResult carries the candidates plus which path produced them.
type SearchResult struct {
	Results  []domain.TraderSearchResult `json:"results"`
	Fallback bool                        `json:"fallback"`
}

// Search returns candidate traders for the query. Primary-source failures
// (including upstream auth rejections) and empty primary results fall back to
// scanning the cached leaderboard snapshot; the fallback is a degraded mode,
// not an error.
func (s *TraderService) Search(ctx context.Context, q string, limit int) (SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return SearchResult{Results: []domain.TraderSearchResult{}}, nil
	}

	candidates, err := s.primarySearch(ctx, q, limit)
	if err != nil {
		if !search.IsAuthFailure(err) {
			s.logger.WarnContext(ctx, "primary trader search failed",
				slog.String("query", q),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.WarnContext(ctx, "primary trader search unauthorized, using snapshot fallback",
				slog.String("query", q),
			)
		}
	}
	if err == nil && len(candidates) > 0 {
		return SearchResult{Results: candidates}, nil
	}

	snap, ok := s.snapshots.Cached(ctx)
	if !ok {
		return SearchResult{Results: []domain.TraderSearchResult{}, Fallback: true}, nil
	}
	results := search.ScanSnapshot(q, snap, limit)
	if results == nil {
		results = []domain.TraderSearchResult{}
	}
	return SearchResult{Results: results, Fallback: true}, nil
}

// Resolve picks the best-scoring candidate for the query, or reports no
// match.
func (s *TraderService) Resolve(ctx context.Context, q string) (domain.TraderSearchResult, bool, error) {
	res, err := s.Search(ctx, q, 0)
	if err != nil {
		return domain.TraderSearchResult{}, false, err
	}
	best, ok := search.Best(q, res.Results)
	return best, ok, nil
}

func (s *TraderService) primarySearch(ctx context.Context, q string, limit int) ([]domain.TraderSearchResult, error) {
	payload, err := s.searcher.SearchProfiles(ctx, q, limit)
	if err != nil {
		return nil, err
	}

	entries := normalize.Entries(payload, limit)
	results := make([]domain.TraderSearchResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, domain.FromLeaderboardEntry(e))
	}
	return results, nil
}
