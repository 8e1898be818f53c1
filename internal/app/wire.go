package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/Rogeraristi/polycopy-sub001/internal/blob/s3"
	"github.com/Rogeraristi/polycopy-sub001/internal/cache/memory"
	"github.com/Rogeraristi/polycopy-sub001/internal/cache/redis"
	"github.com/Rogeraristi/polycopy-sub001/internal/config"
	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
	"github.com/Rogeraristi/polycopy-sub001/internal/leaderboard"
	"github.com/Rogeraristi/polycopy-sub001/internal/platform/apify"
	"github.com/Rogeraristi/polycopy-sub001/internal/platform/news"
	"github.com/Rogeraristi/polycopy-sub001/internal/platform/polymarket"
	"github.com/Rogeraristi/polycopy-sub001/internal/store/postgres"
)

// Dependencies bundles every infrastructure-level dependency the application
// modes need. It is constructed by Wire and torn down by the returned cleanup
// function. Optional backends (Redis, Postgres, S3) fall back to in-memory
// implementations when disabled, so a bare `polycopy` run works with zero
// external services.
type Dependencies struct {
	// Caches and stores
	SnapshotCache domain.SnapshotCache
	FeedCache     domain.TradeFeedCache
	SessionStore  domain.SessionStore
	UserStore     domain.UserStore
	SettingsStore domain.SettingsStore

	// Redis-only extras (nil when Redis is disabled)
	RateLimiter domain.RateLimiter
	LockManager domain.LockManager
	SignalBus   domain.SignalBus

	// Upstream clients
	Gamma *polymarket.GammaClient
	Data  *polymarket.DataClient

	// News aggregation (nil when no feeds are configured)
	News *news.Client

	// Leaderboard reconciliation
	Pipeline *leaderboard.Pipeline
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Redis (optional; in-memory fallbacks otherwise) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.SnapshotCache = redis.NewSnapshotCache(redisClient, logger)
		deps.FeedCache = redis.NewFeedCache(redisClient, logger)
		deps.SessionStore = redis.NewSessionStore(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.LockManager = redis.NewLockManager(redisClient)
		deps.SignalBus = redis.NewSignalBus(redisClient)
	} else {
		deps.SnapshotCache = memory.NewSnapshotCache(time.Now)
		deps.FeedCache = memory.NewFeedCache(time.Now)
		deps.SessionStore = memory.NewSessionStore(time.Now)
	}

	// --- PostgreSQL (optional; in-memory user/settings stores otherwise) ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.UserStore = postgres.NewUserStore(pool)
		deps.SettingsStore = postgres.NewSettingsStore(pool)
	} else {
		deps.UserStore = memory.NewUserStore(time.Now)
		deps.SettingsStore = memory.NewSettingsStore(time.Now)
	}

	// --- S3 snapshot archive (optional) ---
	var archiver *leaderboard.SnapshotArchiver
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		archiver = leaderboard.NewSnapshotArchiver(s3blob.NewWriter(s3Client), logger)
		if cfg.S3.RetentionDays > 0 {
			reader := s3blob.NewReader(s3Client) // also implements BlobDeleter
			archiver.SetRetention(reader, reader, time.Duration(cfg.S3.RetentionDays)*24*time.Hour)
		}
	}

	// --- Upstream clients ---
	deps.Gamma = polymarket.NewGammaClient(cfg.Polymarket.GammaHost)
	deps.Data = polymarket.NewDataClient(cfg.Polymarket.DataHost)
	lbClient := polymarket.NewLeaderboardClient(cfg.Polymarket.LeaderboardHost, cfg.Polymarket.SiteHost)

	// Tertiary dataset tier only when a dataset is configured.
	var dataset leaderboard.DatasetSource
	if cfg.Apify.DatasetID != "" {
		dataset = apify.NewClient(cfg.Apify.BaseURL, cfg.Apify.DatasetID, cfg.Apify.Token)
	}

	if len(cfg.News.Feeds) > 0 {
		feeds := make([]news.Feed, 0, len(cfg.News.Feeds))
		for _, f := range cfg.News.Feeds {
			feeds = append(feeds, news.Feed{Name: f.Name, URL: f.URL})
		}
		deps.News = news.NewClient(feeds, logger)
	}

	// --- Leaderboard reconciliation pipeline ---
	deps.Pipeline = leaderboard.New(
		leaderboard.Config{
			Limit:         cfg.Leaderboard.Limit,
			TTL:           cfg.Leaderboard.TTL.Duration,
			DefaultPeriod: domain.ParsePeriod(cfg.Leaderboard.DefaultPeriod),
			SourceMode:    cfg.Leaderboard.SourceMode,
		},
		lbClient, // period API
		lbClient, // page scraper
		lbClient, // REST prober
		dataset,
		deps.SnapshotCache,
		archiver,
		nil,
		logger,
	)
	if deps.LockManager != nil {
		deps.Pipeline.SetRefreshLock(deps.LockManager)
	}

	return deps, cleanup, nil
}
