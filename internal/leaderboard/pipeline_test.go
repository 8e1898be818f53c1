package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// --- test doubles -----------------------------------------------------------

type stubAPI struct {
	calls    int
	payloads map[domain.Period]any
	err      error
}

func (s *stubAPI) FetchPeriod(_ context.Context, period domain.Period, _ int) (any, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.payloads[period], nil
}

type stubScraper struct {
	periodPayload  any
	genericPayload any
	genericCalls   int
}

func (s *stubScraper) ScrapePeriod(context.Context, domain.Period) (any, error) {
	if s.periodPayload == nil {
		return nil, errors.New("scrape: empty page")
	}
	return s.periodPayload, nil
}

func (s *stubScraper) ScrapeGeneric(context.Context) (any, error) {
	s.genericCalls++
	if s.genericPayload == nil {
		return nil, errors.New("scrape: empty page")
	}
	return s.genericPayload, nil
}

type stubProber struct{ payload any }

func (s *stubProber) ProbeCandidates(context.Context, int) (any, string, error) {
	if s.payload == nil {
		return nil, "", errors.New("all candidates failed")
	}
	return s.payload, "/v1/leaderboard", nil
}

type stubDataset struct {
	payload any
	calls   int
}

func (s *stubDataset) FetchDataset(context.Context, int) (any, error) {
	s.calls++
	if s.payload == nil {
		return nil, errors.New("dataset unavailable")
	}
	return s.payload, nil
}

// fakeCache is a single-entry cache with a controllable clock.
type fakeCache struct {
	snap      domain.LeaderboardSnapshot
	expiresAt time.Time
	has       bool
	now       func() time.Time
}

func (c *fakeCache) Get(_ context.Context, _ string) (domain.LeaderboardSnapshot, time.Duration, bool) {
	if !c.has || c.now().After(c.expiresAt) {
		return domain.LeaderboardSnapshot{}, 0, false
	}
	return c.snap, c.expiresAt.Sub(c.now()), true
}

func (c *fakeCache) Set(_ context.Context, _ string, snap domain.LeaderboardSnapshot, ttl time.Duration) error {
	c.snap = snap
	c.expiresAt = c.now().Add(ttl)
	c.has = true
	return nil
}

func entriesPayload(addrs ...string) any {
	arr := make([]any, 0, len(addrs))
	for _, a := range addrs {
		arr = append(arr, map[string]any{"address": a, "pnl": 1.0})
	}
	return map[string]any{"data": arr}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestPipeline(cfg Config, api PeriodSource, scraper Scraper, prober RestProber, dataset DatasetSource, cache domain.SnapshotCache, now func() time.Time) *Pipeline {
	return New(cfg, api, scraper, prober, dataset, cache, nil, now, testLogger())
}

// --- tests ------------------------------------------------------------------

func TestRefresh_PerPeriodAPIWins(t *testing.T) {
	api := &stubAPI{payloads: map[domain.Period]any{
		domain.PeriodToday:   entriesPayload("0xA"),
		domain.PeriodWeekly:  entriesPayload("0xA", "0xB"),
		domain.PeriodMonthly: entriesPayload("0xC"),
		domain.PeriodAll:     entriesPayload("0xD"),
	}}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cache := &fakeCache{now: func() time.Time { return now }}

	p := newTestPipeline(Config{Limit: 10, TTL: time.Minute}, api, &stubScraper{}, &stubProber{}, &stubDataset{}, cache, func() time.Time { return now })

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "api", snap.Source)
	assert.Len(t, snap.Periods[domain.PeriodWeekly], 2)
	assert.Equal(t, domain.PeriodWeekly, snap.DefaultPeriod)
	assert.Equal(t, now, snap.FetchedAt)
	for _, period := range domain.Periods {
		assert.Contains(t, snap.Labels, period)
		assert.Equal(t, "api", snap.Diagnostics[period].Source)
	}
}

func TestRefresh_TertiaryDatasetFillsWeeklyOnly(t *testing.T) {
	// Every period fetch and the generic scrape come back empty; the flat
	// dataset dump is the last resort and lands in the weekly bucket.
	api := &stubAPI{err: errors.New("upstream down")}
	scraper := &stubScraper{}
	prober := &stubProber{}
	dataset := &stubDataset{payload: entriesPayload("0x1", "0x2", "0x3")}
	now := time.Now().UTC()
	cache := &fakeCache{now: func() time.Time { return now }}

	p := newTestPipeline(Config{Limit: 10, TTL: time.Minute}, api, scraper, prober, dataset, cache, func() time.Time { return now })

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Periods[domain.PeriodWeekly], 3)
	assert.Equal(t, "apify", snap.Source)
	assert.Equal(t, 1, scraper.genericCalls)
	require.Len(t, snap.Labels, 4)
	for _, period := range domain.Periods {
		assert.Contains(t, snap.Labels, period)
	}
	// Default period falls back to the first populated bucket.
	assert.Equal(t, domain.PeriodWeekly, snap.DefaultPeriod)
}

func TestRefresh_RanksReassignedContiguously(t *testing.T) {
	payload := map[string]any{"data": []any{
		map[string]any{"address": "0xA", "rank": 17.0},
		map[string]any{"address": "0xB", "rank": 90.0},
		map[string]any{"address": "0xC"},
	}}
	api := &stubAPI{payloads: map[domain.Period]any{domain.PeriodWeekly: payload}}
	now := time.Now().UTC()
	cache := &fakeCache{now: func() time.Time { return now }}

	p := newTestPipeline(Config{Limit: 2, TTL: time.Minute}, api, &stubScraper{}, &stubProber{}, &stubDataset{}, cache, func() time.Time { return now })

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)

	weekly := snap.Periods[domain.PeriodWeekly]
	require.Len(t, weekly, 2) // truncated to limit
	assert.Equal(t, 1, weekly[0].Rank)
	assert.Equal(t, 2, weekly[1].Rank)
}

func TestSnapshot_CacheContract(t *testing.T) {
	api := &stubAPI{payloads: map[domain.Period]any{domain.PeriodWeekly: entriesPayload("0xA")}}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cache := &fakeCache{now: clock}

	p := newTestPipeline(Config{Limit: 10, TTL: time.Minute}, api, &stubScraper{}, &stubProber{}, &stubDataset{}, cache, clock)

	_, info, err := p.Snapshot(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, info.Hit)
	firstCalls := api.calls

	// Second request inside the TTL window: no upstream fetch, hit reported.
	_, info, err = p.Snapshot(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, info.Hit)
	assert.Equal(t, firstCalls, api.calls)
	assert.Equal(t, int64(60), info.TTLSeconds)

	// Forced refresh bypasses the cache unconditionally.
	_, info, err = p.Snapshot(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, info.Hit)
	assert.Greater(t, api.calls, firstCalls)
}

func TestSnapshot_ExpiredCacheRefetches(t *testing.T) {
	api := &stubAPI{payloads: map[domain.Period]any{domain.PeriodWeekly: entriesPayload("0xA")}}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cache := &fakeCache{now: func() time.Time { return now }}

	p := newTestPipeline(Config{Limit: 10, TTL: time.Minute}, api, &stubScraper{}, &stubProber{}, &stubDataset{}, cache, clock)

	_, _, err := p.Snapshot(context.Background(), false)
	require.NoError(t, err)
	calls := api.calls

	now = now.Add(2 * time.Minute)
	_, info, err := p.Snapshot(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, info.Hit)
	assert.Greater(t, api.calls, calls)
}

func TestSnapshot_ExhaustionServesStaleThenError(t *testing.T) {
	api := &stubAPI{payloads: map[domain.Period]any{domain.PeriodWeekly: entriesPayload("0xA")}}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cache := &fakeCache{now: func() time.Time { return now }}

	p := newTestPipeline(Config{Limit: 10, TTL: time.Minute}, api, &stubScraper{}, &stubProber{}, &stubDataset{}, cache, clock)

	first, _, err := p.Snapshot(context.Background(), false)
	require.NoError(t, err)

	// All sources go dark and the cache expires: the previous snapshot is
	// served stale rather than failing the request.
	api.err = errors.New("upstream down")
	now = now.Add(2 * time.Minute)

	snap, info, err := p.Snapshot(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, info.Hit)
	assert.Equal(t, first.FetchedAt, snap.FetchedAt)
}

func TestRefresh_TotalExhaustionReturnsErrorWithLabels(t *testing.T) {
	api := &stubAPI{err: errors.New("down")}
	now := time.Now().UTC()
	cache := &fakeCache{now: func() time.Time { return now }}

	p := newTestPipeline(Config{Limit: 10, TTL: time.Minute}, api, &stubScraper{}, &stubProber{}, &stubDataset{}, cache, func() time.Time { return now })

	snap, err := p.Refresh(context.Background())
	require.ErrorIs(t, err, domain.ErrSourceExhausted)
	assert.Empty(t, snap.Periods)
	assert.Len(t, snap.Labels, 4)
	assert.Equal(t, "none", snap.Source)
	// Never crashes on all-empty: the configured default key survives.
	assert.Equal(t, domain.PeriodWeekly, snap.DefaultPeriod)
}
