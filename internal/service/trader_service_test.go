package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

type fakeSearcher struct {
	payload any
	err     error
	calls   int
}

func (f *fakeSearcher) SearchProfiles(context.Context, string, int) (any, error) {
	f.calls++
	return f.payload, f.err
}

type fakeSnapshots struct {
	snap domain.LeaderboardSnapshot
	ok   bool
}

func (f *fakeSnapshots) Cached(context.Context) (domain.LeaderboardSnapshot, bool) {
	return f.snap, f.ok
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func weeklySnapshot(entries ...domain.LeaderboardEntry) domain.LeaderboardSnapshot {
	return domain.LeaderboardSnapshot{
		DefaultPeriod: domain.PeriodWeekly,
		Periods:       map[domain.Period][]domain.LeaderboardEntry{domain.PeriodWeekly: entries},
	}
}

func TestTraderSearch_PrimaryWins(t *testing.T) {
	searcher := &fakeSearcher{payload: map[string]any{
		"profiles": nil,
		"data": []any{
			map[string]any{"address": "0xAAA", "name": "alice", "pnl": 10.0},
		},
	}}
	svc := NewTraderService(searcher, &fakeSnapshots{}, discardLogger())

	got, err := svc.Search(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.False(t, got.Fallback)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "0xaaa", got.Results[0].Address)
}

func TestTraderSearch_AuthFailureFallsBackToSnapshot(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("unexpected status 403")}
	snapshots := &fakeSnapshots{
		snap: weeklySnapshot(
			domain.LeaderboardEntry{Address: "0xAAA", DisplayName: "alice", Rank: 1},
			domain.LeaderboardEntry{Address: "0xBBB", DisplayName: "bob", Rank: 2},
		),
		ok: true,
	}
	svc := NewTraderService(searcher, snapshots, discardLogger())

	got, err := svc.Search(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.True(t, got.Fallback)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "0xAAA", got.Results[0].Address)
}

func TestTraderSearch_EmptyPrimaryFallsBack(t *testing.T) {
	searcher := &fakeSearcher{payload: map[string]any{"data": []any{}}}
	snapshots := &fakeSnapshots{
		snap: weeklySnapshot(domain.LeaderboardEntry{Address: "0xAAA", DisplayName: "alice"}),
		ok:   true,
	}
	svc := NewTraderService(searcher, snapshots, discardLogger())

	got, err := svc.Search(context.Background(), "ali", 10)
	require.NoError(t, err)
	assert.True(t, got.Fallback)
	assert.Len(t, got.Results, 1)
}

func TestTraderSearch_NoSnapshotDegradesToEmpty(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	svc := NewTraderService(searcher, &fakeSnapshots{}, discardLogger())

	got, err := svc.Search(context.Background(), "anyone", 10)
	require.NoError(t, err)
	assert.True(t, got.Fallback)
	assert.Empty(t, got.Results)
}

func TestTraderSearch_BlankQueryShortCircuits(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := NewTraderService(searcher, &fakeSnapshots{}, discardLogger())

	got, err := svc.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got.Results)
	assert.Zero(t, searcher.calls)
}

func TestTraderResolve_BestMatch(t *testing.T) {
	searcher := &fakeSearcher{payload: map[string]any{
		"data": []any{
			map[string]any{"address": "0xAAA", "name": "alice_trades"},
			map[string]any{"address": "0xBBB", "name": "alice"},
		},
	}}
	svc := NewTraderService(searcher, &fakeSnapshots{}, discardLogger())

	best, ok, err := svc.Resolve(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0xbbb", best.Address)
}

func TestTraderResolve_NoMatch(t *testing.T) {
	searcher := &fakeSearcher{payload: map[string]any{"data": []any{}}}
	svc := NewTraderService(searcher, &fakeSnapshots{}, discardLogger())

	_, ok, err := svc.Resolve(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}
