// Package leaderboard reconciles multiple unreliable upstream leaderboard
// sources into one cached, multi-period snapshot.
package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
	"github.com/Rogeraristi/polycopy-sub001/internal/normalize"
)

// Source modes. Auto tries the structured API first and falls back to the
// page scrape per period; the other two restrict the per-period tier to a
// single source kind.
const (
	SourceModeAuto   = "auto"
	SourceModeAPI    = "api"
	SourceModeScrape = "scrape"
)

// PeriodSource fetches the structured leaderboard API payload for one period.
type PeriodSource interface {
	FetchPeriod(ctx context.Context, period domain.Period, limit int) (any, error)
}

// Scraper extracts the embedded JSON payload from the leaderboard webpage,
// either for a specific period or unparameterized.
type Scraper interface {
	ScrapePeriod(ctx context.Context, period domain.Period) (any, error)
	ScrapeGeneric(ctx context.Context) (any, error)
}

// RestProber walks a fixed list of candidate REST paths and returns the first
// payload that normalizes to a non-empty result. A 404 advances to the next
// candidate; other failures are logged and skipped.
type RestProber interface {
	ProbeCandidates(ctx context.Context, limit int) (payload any, path string, err error)
}

// DatasetSource fetches the flat third-party dataset dump (tertiary tier).
type DatasetSource interface {
	FetchDataset(ctx context.Context, limit int) (any, error)
}

// Config holds the pipeline's reconciliation parameters.
type Config struct {
	CacheKey      string
	Limit         int
	TTL           time.Duration
	DefaultPeriod domain.Period
	SourceMode    string
}

// Pipeline owns one refresh cycle: concurrent per-period fetch with ordered
// fallback precedence, global fallback tiers, rank reassignment, label
// completion, and the cache-with-TTL contract.
type Pipeline struct {
	cfg     Config
	api     PeriodSource
	scraper Scraper
	prober  RestProber
	dataset DatasetSource
	cache   domain.SnapshotCache
	archive *SnapshotArchiver
	clock   func() time.Time
	logger  *slog.Logger

	// last holds the most recent successful snapshot so a failed refresh
	// degrades to stale-but-available instead of an empty response. Replaced
	// wholesale, never mutated.
	last atomic.Pointer[domain.LeaderboardSnapshot]

	onRefresh atomic.Pointer[func(domain.LeaderboardSnapshot)]

	// refreshLock, when set, keeps multiple instances from running the same
	// scheduled refresh cycle concurrently. Request-path refreshes bypass it.
	refreshLock domain.LockManager
}

// refreshLockKey and refreshLockTTL guard the scheduled refresh across
// instances. The TTL bounds how long a crashed holder blocks the others.
const (
	refreshLockKey = "leaderboard:refresh"
	refreshLockTTL = time.Minute
)

// New creates a Pipeline. archive may be nil; clock defaults to time.Now.
func New(
	cfg Config,
	api PeriodSource,
	scraper Scraper,
	prober RestProber,
	dataset DatasetSource,
	cache domain.SnapshotCache,
	archive *SnapshotArchiver,
	clock func() time.Time,
	logger *slog.Logger,
) *Pipeline {
	if cfg.Limit <= 0 {
		cfg.Limit = 25
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.DefaultPeriod == "" {
		cfg.DefaultPeriod = domain.PeriodWeekly
	}
	if cfg.SourceMode == "" {
		cfg.SourceMode = SourceModeAuto
	}
	if cfg.CacheKey == "" {
		cfg.CacheKey = "leaderboard:snapshot"
	}
	if clock == nil {
		clock = time.Now
	}
	return &Pipeline{
		cfg:     cfg,
		api:     api,
		scraper: scraper,
		prober:  prober,
		dataset: dataset,
		cache:   cache,
		archive: archive,
		clock:   clock,
		logger:  logger.With(slog.String("component", "leaderboard_pipeline")),
	}
}

// SetRefreshLock installs a distributed lock around scheduled refreshes.
// Must be called before RunLoop.
func (p *Pipeline) SetRefreshLock(lm domain.LockManager) {
	p.refreshLock = lm
}

// SetOnRefresh registers a callback invoked after every successful refresh,
// e.g. to push the new snapshot over WebSocket. Safe for concurrent use.
func (p *Pipeline) SetOnRefresh(fn func(domain.LeaderboardSnapshot)) {
	p.onRefresh.Store(&fn)
}

// Snapshot returns the reconciled leaderboard, serving from cache inside the
// TTL window unless refresh forces a bypass. The returned CacheInfo reports
// the hit and remaining TTL. On refresh failure the previous snapshot is
// served stale; the error is only surfaced when there is nothing to serve.
func (p *Pipeline) Snapshot(ctx context.Context, refresh bool) (domain.LeaderboardSnapshot, domain.CacheInfo, error) {
	if !refresh {
		if snap, remaining, hit := p.cache.Get(ctx, p.cfg.CacheKey); hit {
			return snap, domain.CacheInfo{Hit: true, TTLSeconds: int64(remaining.Seconds())}, nil
		}
	}

	snap, err := p.Refresh(ctx)
	if err != nil {
		if prev := p.last.Load(); prev != nil {
			p.logger.WarnContext(ctx, "refresh failed, serving stale snapshot",
				slog.String("error", err.Error()),
				slog.Time("stale_fetched_at", prev.FetchedAt),
			)
			return *prev, domain.CacheInfo{Hit: false, TTLSeconds: 0}, nil
		}
		return snap, domain.CacheInfo{Hit: false, TTLSeconds: 0}, err
	}

	return snap, domain.CacheInfo{Hit: false, TTLSeconds: int64(p.cfg.TTL.Seconds())}, nil
}

// Cached returns the freshest snapshot available without touching upstream:
// the cache if unexpired, else the last successful refresh.
func (p *Pipeline) Cached(ctx context.Context) (domain.LeaderboardSnapshot, bool) {
	if snap, _, hit := p.cache.Get(ctx, p.cfg.CacheKey); hit {
		return snap, true
	}
	if prev := p.last.Load(); prev != nil {
		return *prev, true
	}
	return domain.LeaderboardSnapshot{}, false
}

// Refresh runs one full reconciliation cycle, bypassing the cache, and
// writes the result back on success.
func (p *Pipeline) Refresh(ctx context.Context) (domain.LeaderboardSnapshot, error) {
	snap, err := p.reconcile(ctx)
	if err != nil {
		return snap, err
	}

	if cacheErr := p.cache.Set(ctx, p.cfg.CacheKey, snap, p.cfg.TTL); cacheErr != nil {
		p.logger.WarnContext(ctx, "snapshot cache write failed", slog.String("error", cacheErr.Error()))
	}
	p.last.Store(&snap)

	if p.archive != nil {
		if archErr := p.archive.Archive(ctx, snap); archErr != nil {
			p.logger.WarnContext(ctx, "snapshot archive failed", slog.String("error", archErr.Error()))
		}
	}
	if fn := p.onRefresh.Load(); fn != nil && *fn != nil {
		(*fn)(snap)
	}

	return snap, nil
}

// RunLoop refreshes the snapshot on a repeating interval until the context is
// cancelled, keeping the cache warm for request handlers. A failed cycle
// leaves the previous snapshot in place until the next tick.
func (p *Pipeline) RunLoop(ctx context.Context, interval time.Duration) error {
	p.scheduledRefresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("leaderboard refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			p.scheduledRefresh(ctx)
		}
	}
}

// scheduledRefresh runs one loop-driven refresh, holding the distributed
// lock when one is configured so parallel instances do not stampede the
// upstream sources.
func (p *Pipeline) scheduledRefresh(ctx context.Context) {
	if p.refreshLock != nil {
		unlock, err := p.refreshLock.Acquire(ctx, refreshLockKey, refreshLockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				p.logger.DebugContext(ctx, "refresh lock held elsewhere, skipping cycle")
			} else {
				p.logger.WarnContext(ctx, "refresh lock acquire failed", slog.String("error", err.Error()))
			}
			return
		}
		defer unlock()
	}

	if _, err := p.Refresh(ctx); err != nil {
		p.logger.ErrorContext(ctx, "leaderboard refresh failed", slog.String("error", err.Error()))
	}
}

// periodResult carries one period's winning fetch outcome.
type periodResult struct {
	entries []domain.LeaderboardEntry
	source  string
	details string
}

// reconcile executes the tiered fetch plan and assembles the snapshot.
func (p *Pipeline) reconcile(ctx context.Context) (domain.LeaderboardSnapshot, error) {
	periods := domain.Periods
	results := make([]periodResult, len(periods))

	// Tier 1: all periods concurrently; a slow period does not block the
	// others. Each fetch swallows its own upstream errors into diagnostics.
	g, gctx := errgroup.WithContext(ctx)
	for i, period := range periods {
		g.Go(func() error {
			results[i] = p.fetchPeriod(gctx, period)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; failures degrade per period

	total := 0
	for _, r := range results {
		total += len(r.entries)
	}

	overallSource := ""
	if total == 0 {
		// Tier 2: one generic scrape, then the fixed REST candidates. The
		// result lands in the default period bucket.
		if entries, src := p.globalSecondary(ctx); len(entries) > 0 {
			for i, period := range periods {
				if period == p.cfg.DefaultPeriod {
					results[i] = periodResult{entries: entries, source: src}
				}
			}
			total = len(entries)
			overallSource = src
		}
	}

	if total == 0 && p.dataset != nil {
		// Tier 3: flat dataset dump, weekly bucket only.
		payload, err := p.dataset.FetchDataset(ctx, p.cfg.Limit)
		if err != nil {
			p.logger.WarnContext(ctx, "dataset fallback failed", slog.String("error", err.Error()))
		} else if entries := normalize.Entries(payload, 0); len(entries) > 0 {
			for i, period := range periods {
				if period == domain.PeriodWeekly {
					results[i] = periodResult{entries: entries, source: "apify"}
				}
			}
			total = len(entries)
			overallSource = "apify"
		}
	}

	snap := p.assemble(periods, results, overallSource)

	if total == 0 {
		return snap, domain.ErrSourceExhausted
	}
	return snap, nil
}

// fetchPeriod is the per-period primary tier: structured API first when the
// source mode allows it, then the period-parameterized scrape. First
// non-empty result wins.
func (p *Pipeline) fetchPeriod(ctx context.Context, period domain.Period) periodResult {
	var details string

	if p.api != nil && p.cfg.SourceMode != SourceModeScrape {
		payload, err := p.api.FetchPeriod(ctx, period, p.cfg.Limit)
		if err != nil {
			details = "api: " + err.Error()
			p.logger.DebugContext(ctx, "period api fetch failed",
				slog.String("period", string(period)),
				slog.String("error", err.Error()),
			)
		} else if entries := normalize.Entries(payload, 0); len(entries) > 0 {
			return periodResult{entries: entries, source: "api"}
		}
	}

	if p.scraper != nil && p.cfg.SourceMode != SourceModeAPI {
		payload, err := p.scraper.ScrapePeriod(ctx, period)
		if err != nil {
			if details != "" {
				details += "; "
			}
			details += "scrape: " + err.Error()
			p.logger.DebugContext(ctx, "period scrape failed",
				slog.String("period", string(period)),
				slog.String("error", err.Error()),
			)
		} else if entries := normalize.Entries(payload, 0); len(entries) > 0 {
			return periodResult{entries: entries, source: "scrape"}
		}
	}

	return periodResult{details: details}
}

// globalSecondary is tier 2: generic scrape, then REST candidates.
func (p *Pipeline) globalSecondary(ctx context.Context) ([]domain.LeaderboardEntry, string) {
	if p.scraper != nil {
		payload, err := p.scraper.ScrapeGeneric(ctx)
		if err != nil {
			p.logger.WarnContext(ctx, "generic scrape failed", slog.String("error", err.Error()))
		} else if entries := normalize.Entries(payload, 0); len(entries) > 0 {
			return entries, "scrape"
		}
	}

	if p.prober != nil {
		payload, path, err := p.prober.ProbeCandidates(ctx, p.cfg.Limit)
		if err != nil {
			p.logger.WarnContext(ctx, "rest candidate probe failed", slog.String("error", err.Error()))
		} else if entries := normalize.Entries(payload, 0); len(entries) > 0 {
			p.logger.InfoContext(ctx, "rest candidate succeeded", slog.String("path", path))
			return entries, "rest:" + path
		}
	}

	return nil, ""
}

// assemble finalizes the snapshot: truncation, contiguous 1-based rank
// reassignment, label completion for every configured period, default period
// selection, and per-period diagnostics.
func (p *Pipeline) assemble(periods []domain.Period, results []periodResult, overallSource string) domain.LeaderboardSnapshot {
	snap := domain.LeaderboardSnapshot{
		Periods:     make(map[domain.Period][]domain.LeaderboardEntry),
		Labels:      make(map[domain.Period]string, len(periods)),
		Diagnostics: make(map[domain.Period]domain.PeriodDiagnostics, len(periods)),
		FetchedAt:   p.clock().UTC(),
	}

	sources := make(map[string]bool)
	for i, period := range periods {
		snap.Labels[period] = domain.PeriodLabels[period]

		r := results[i]
		snap.Diagnostics[period] = domain.PeriodDiagnostics{
			Source:  r.source,
			Count:   len(r.entries),
			Details: r.details,
		}
		if len(r.entries) == 0 {
			continue
		}

		entries := r.entries
		if len(entries) > p.cfg.Limit {
			entries = entries[:p.cfg.Limit]
		}
		// Final ranks are contiguous regardless of upstream rank gaps.
		ranked := make([]domain.LeaderboardEntry, len(entries))
		for j, e := range entries {
			e.Rank = j + 1
			ranked[j] = e
		}
		snap.Periods[period] = ranked
		sources[r.source] = true
	}

	snap.DefaultPeriod = p.cfg.DefaultPeriod
	if len(snap.Periods[snap.DefaultPeriod]) == 0 {
		for _, period := range periods {
			if len(snap.Periods[period]) > 0 {
				snap.DefaultPeriod = period
				break
			}
		}
	}

	switch {
	case overallSource != "":
		snap.Source = overallSource
	case len(sources) == 1:
		for s := range sources {
			snap.Source = s
		}
	case len(sources) > 1:
		snap.Source = "mixed"
	default:
		snap.Source = "none"
	}

	return snap
}
