package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// archivePrefix is the object-key prefix for archived snapshots.
const archivePrefix = "leaderboard/"

// SnapshotArchiver writes successful leaderboard snapshots to object storage
// so historical rankings survive cache expiry, and prunes archives past the
// retention window.
type SnapshotArchiver struct {
	writer    domain.BlobWriter
	reader    domain.BlobReader  // optional, required for pruning
	deleter   domain.BlobDeleter // optional, required for pruning
	retention time.Duration
	clock     func() time.Time
	logger    *slog.Logger
}

// NewSnapshotArchiver creates a SnapshotArchiver backed by the given writer.
func NewSnapshotArchiver(writer domain.BlobWriter, logger *slog.Logger) *SnapshotArchiver {
	return &SnapshotArchiver{
		writer: writer,
		clock:  time.Now,
		logger: logger.With(slog.String("component", "snapshot_archiver")),
	}
}

// SetRetention enables pruning of archives older than the retention window.
// Both reader and deleter must be provided; retention <= 0 disables pruning.
func (a *SnapshotArchiver) SetRetention(reader domain.BlobReader, deleter domain.BlobDeleter, retention time.Duration) {
	a.reader = reader
	a.deleter = deleter
	a.retention = retention
}

// Archive uploads the snapshot as JSON, keyed by fetch time, then prunes
// expired archives when retention is configured. Prune failures are logged,
// not returned: a missed prune only delays cleanup until the next cycle.
func (a *SnapshotArchiver) Archive(ctx context.Context, snap domain.LeaderboardSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("archiver: marshal snapshot: %w", err)
	}

	path := fmt.Sprintf("%s%s/%s.json",
		archivePrefix,
		snap.FetchedAt.UTC().Format("2006-01-02"),
		snap.FetchedAt.UTC().Format("150405"),
	)
	if err := a.writer.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("archiver: upload snapshot to %s: %w", path, err)
	}

	a.logger.InfoContext(ctx, "snapshot archived",
		slog.String("path", path),
		slog.Int("entries", snap.TotalEntries()),
	)

	if a.retention > 0 && a.reader != nil && a.deleter != nil {
		if err := a.prune(ctx); err != nil {
			a.logger.WarnContext(ctx, "archive prune failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

// prune deletes archived snapshots whose last-modified time is past the
// retention window.
func (a *SnapshotArchiver) prune(ctx context.Context) error {
	cutoff := a.clock().Add(-a.retention)

	infos, err := a.reader.List(ctx, archivePrefix)
	if err != nil {
		return fmt.Errorf("archiver: list archives: %w", err)
	}

	pruned := 0
	for _, info := range infos {
		if !strings.HasPrefix(info.Path, archivePrefix) || !info.LastModified.Before(cutoff) {
			continue
		}
		if err := a.deleter.Delete(ctx, info.Path); err != nil {
			return fmt.Errorf("archiver: delete %s: %w", info.Path, err)
		}
		pruned++
	}

	if pruned > 0 {
		a.logger.InfoContext(ctx, "expired archives pruned",
			slog.Int("count", pruned),
			slog.Time("cutoff", cutoff),
		)
	}
	return nil
}
