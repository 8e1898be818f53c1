package service

import (
	"context"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
	"github.com/Rogeraristi/polycopy-sub001/internal/leaderboard"
)

// LeaderboardService exposes the reconciliation pipeline to the boundary.
type LeaderboardService struct {
	pipeline *leaderboard.Pipeline
}

// NewLeaderboardService creates a LeaderboardService over the pipeline.
func NewLeaderboardService(pipeline *leaderboard.Pipeline) *LeaderboardService {
	return &LeaderboardService{pipeline: pipeline}
}

// Snapshot returns the reconciled leaderboard, honoring the cache contract:
// refresh forces a cache bypass, and the returned CacheInfo reports hit state
// and remaining TTL.
func (s *LeaderboardService) Snapshot(ctx context.Context, refresh bool) (domain.LeaderboardSnapshot, domain.CacheInfo, error) {
	return s.pipeline.Snapshot(ctx, refresh)
}

// Cached returns the freshest snapshot available without touching upstream.
func (s *LeaderboardService) Cached(ctx context.Context) (domain.LeaderboardSnapshot, bool) {
	return s.pipeline.Cached(ctx)
}
