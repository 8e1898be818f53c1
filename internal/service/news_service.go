package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// HeadlineSource fetches merged third-party headlines.
type HeadlineSource interface {
	FetchHeadlines(ctx context.Context, limit int) ([]domain.NewsHeadline, error)
}

// NewsService serves aggregated headlines with a short in-process cache so
// bursts of requests do not hammer the upstream feeds.
type NewsService struct {
	source HeadlineSource
	ttl    time.Duration
	clock  func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	cached    []domain.NewsHeadline
	fetchedAt time.Time
}

// NewNewsService creates a NewsService. clock defaults to time.Now.
func NewNewsService(source HeadlineSource, ttl time.Duration, clock func() time.Time, logger *slog.Logger) *NewsService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if clock == nil {
		clock = time.Now
	}
	return &NewsService{
		source: source,
		ttl:    ttl,
		clock:  clock,
		logger: logger.With(slog.String("component", "news_service")),
	}
}

// Headlines returns the cached headlines, refetching when stale. A failed
// refetch serves the previous headlines when any exist.
func (s *NewsService) Headlines(ctx context.Context, limit int) ([]domain.NewsHeadline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if s.cached != nil && now.Sub(s.fetchedAt) < s.ttl {
		return clip(s.cached, limit), nil
	}

	headlines, err := s.source.FetchHeadlines(ctx, 0)
	if err != nil {
		if s.cached != nil {
			s.logger.WarnContext(ctx, "headline refresh failed, serving stale",
				slog.String("error", err.Error()),
			)
			return clip(s.cached, limit), nil
		}
		return nil, fmt.Errorf("news_service: fetch headlines: %w", err)
	}

	s.cached = headlines
	s.fetchedAt = now
	return clip(headlines, limit), nil
}

func clip(headlines []domain.NewsHeadline, limit int) []domain.NewsHeadline {
	if limit > 0 && len(headlines) > limit {
		return headlines[:limit]
	}
	return headlines
}
