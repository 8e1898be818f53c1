// Package config defines the top-level configuration for the polycopy
// backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by POLYCOPY_* environment variables.
type Config struct {
	Polymarket  PolymarketConfig  `toml:"polymarket"`
	Apify       ApifyConfig       `toml:"apify"`
	News        NewsConfig        `toml:"news"`
	Redis       RedisConfig       `toml:"redis"`
	Postgres    PostgresConfig    `toml:"postgres"`
	S3          S3Config          `toml:"s3"`
	Auth        AuthConfig        `toml:"auth"`
	Analytics   AnalyticsConfig   `toml:"analytics"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
	Server      ServerConfig      `toml:"server"`
	WS          WSConfig          `toml:"ws"`
	Mode        string            `toml:"mode"`
	LogLevel    string            `toml:"log_level"`
}

// PolymarketConfig holds the upstream Polymarket API endpoints.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	DataHost  string `toml:"data_host"`
	// LeaderboardHost is the structured leaderboard API root; SiteHost is the
	// public website root used by the page-scrape fallback.
	LeaderboardHost string `toml:"leaderboard_host"`
	SiteHost        string `toml:"site_host"`
}

// ApifyConfig holds the tertiary leaderboard dataset parameters. The tier is
// skipped when DatasetID is empty.
type ApifyConfig struct {
	BaseURL   string `toml:"base_url"`
	DatasetID string `toml:"dataset_id"`
	Token     string `toml:"token"`
}

// NewsFeed is one named RSS source.
type NewsFeed struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// NewsConfig holds the headline aggregation parameters.
type NewsConfig struct {
	Feeds []NewsFeed `toml:"feeds"`
	TTL   duration   `toml:"ttl"`
}

// RedisConfig holds Redis connection parameters. When Enabled is false the
// caches and session store fall back to in-memory implementations.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters. When Enabled is
// false, users and settings live in memory.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters for the snapshot
// archiver. The archiver is skipped when Enabled is false.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	// RetentionDays prunes archived snapshots older than this many days.
	// Zero keeps archives forever.
	RetentionDays int `toml:"retention_days"`
}

// AuthConfig holds the identity provider and session parameters. Login routes
// are only registered when ClientID is set.
type AuthConfig struct {
	Provider      string   `toml:"provider"`
	ClientID      string   `toml:"client_id"`
	ClientSecret  string   `toml:"client_secret"`
	AuthURL       string   `toml:"auth_url"`
	TokenURL      string   `toml:"token_url"`
	UserInfoURL   string   `toml:"user_info_url"`
	RedirectURL   string   `toml:"redirect_url"`
	Scopes        []string `toml:"scopes"`
	SessionSecret string   `toml:"session_secret"`
	SessionTTL    duration `toml:"session_ttl"`
	SecureCookies bool     `toml:"secure_cookies"`
}

// AnalyticsConfig holds the per-address trade feed parameters.
type AnalyticsConfig struct {
	FeedTTL   duration `toml:"feed_ttl"`
	FeedLimit int      `toml:"feed_limit"`
}

// LeaderboardConfig holds the reconciliation pipeline parameters.
type LeaderboardConfig struct {
	Limit           int      `toml:"limit"`
	TTL             duration `toml:"ttl"`
	DefaultPeriod   string   `toml:"default_period"`
	SourceMode      string   `toml:"source_mode"`
	RefreshInterval duration `toml:"refresh_interval"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// RateLimitPerMinute caps requests per client IP per minute. Zero
	// disables limiting; the limiter also requires Redis.
	RateLimitPerMinute int `toml:"rate_limit_per_minute"`
}

// WSConfig holds WebSocket hub parameters.
type WSConfig struct {
	PollInterval duration `toml:"poll_interval"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost:       "https://gamma-api.polymarket.com",
			DataHost:        "https://data-api.polymarket.com",
			LeaderboardHost: "https://lb-api.polymarket.com",
			SiteHost:        "https://polymarket.com",
		},
		Apify: ApifyConfig{
			BaseURL: "https://api.apify.com",
		},
		News: NewsConfig{
			Feeds: []NewsFeed{
				{Name: "coindesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
				{Name: "cointelegraph", URL: "https://cointelegraph.com/rss"},
			},
			TTL: duration{10 * time.Minute},
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "polycopy",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "polycopy-snapshots",
			UseSSL:         false,
			ForcePathStyle: true,
			RetentionDays:  90,
		},
		Auth: AuthConfig{
			Provider:      "google",
			AuthURL:       "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:      "https://oauth2.googleapis.com/token",
			UserInfoURL:   "https://openidconnect.googleapis.com/v1/userinfo",
			Scopes:        []string{"openid", "profile", "email"},
			SessionTTL:    duration{24 * time.Hour},
			SecureCookies: false,
		},
		Analytics: AnalyticsConfig{
			FeedTTL:   duration{time.Minute},
			FeedLimit: 500,
		},
		Leaderboard: LeaderboardConfig{
			Limit:           25,
			TTL:             duration{5 * time.Minute},
			DefaultPeriod:   "weekly",
			SourceMode:      "auto",
			RefreshInterval: duration{5 * time.Minute},
		},
		Server: ServerConfig{
			Enabled:            true,
			Port:               8000,
			CORSOrigins:        []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimitPerMinute: 0,
		},
		WS: WSConfig{
			PollInterval: duration{15 * time.Second},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server":  true,
	"refresh": true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validPeriods enumerates the accepted leaderboard default periods.
var validPeriods = map[string]bool{
	"today":   true,
	"weekly":  true,
	"monthly": true,
	"all":     true,
}

// validSourceModes enumerates the accepted leaderboard source modes.
var validSourceModes = map[string]bool{
	"auto":   true,
	"api":    true,
	"scrape": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, refresh, full)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Polymarket endpoints
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.DataHost == "" {
		errs = append(errs, "polymarket: data_host must not be empty")
	}
	if c.Polymarket.LeaderboardHost == "" {
		errs = append(errs, "polymarket: leaderboard_host must not be empty")
	}
	if c.Polymarket.SiteHost == "" {
		errs = append(errs, "polymarket: site_host must not be empty")
	}

	// Apify — token and dataset go together.
	if c.Apify.DatasetID != "" && c.Apify.BaseURL == "" {
		errs = append(errs, "apify: base_url must not be empty when dataset_id is set")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.RetentionDays < 0 {
			errs = append(errs, "s3: retention_days must be >= 0")
		}
	}

	// Auth — login is optional, but a configured client must be complete.
	if c.Auth.ClientID != "" {
		if c.Auth.ClientSecret == "" {
			errs = append(errs, "auth: client_secret is required when client_id is set")
		}
		if c.Auth.AuthURL == "" || c.Auth.TokenURL == "" || c.Auth.UserInfoURL == "" {
			errs = append(errs, "auth: auth_url, token_url, and user_info_url must all be set")
		}
		if c.Auth.RedirectURL == "" {
			errs = append(errs, "auth: redirect_url is required when client_id is set")
		}
		if c.Auth.SessionSecret == "" {
			errs = append(errs, "auth: session_secret is required when client_id is set")
		}
	}

	// Analytics
	if c.Analytics.FeedLimit < 1 {
		errs = append(errs, "analytics: feed_limit must be >= 1")
	}

	// Leaderboard
	if c.Leaderboard.Limit < 1 {
		errs = append(errs, "leaderboard: limit must be >= 1")
	}
	if !validPeriods[strings.ToLower(c.Leaderboard.DefaultPeriod)] {
		errs = append(errs, fmt.Sprintf("leaderboard: unknown default_period %q (valid: today, weekly, monthly, all)", c.Leaderboard.DefaultPeriod))
	}
	if !validSourceModes[strings.ToLower(c.Leaderboard.SourceMode)] {
		errs = append(errs, fmt.Sprintf("leaderboard: unknown source_mode %q (valid: auto, api, scrape)", c.Leaderboard.SourceMode))
	}
	if c.Leaderboard.RefreshInterval.Duration < time.Second {
		errs = append(errs, "leaderboard: refresh_interval must be at least 1s")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimitPerMinute < 0 {
			errs = append(errs, "server: rate_limit_per_minute must be >= 0")
		}
	}

	// News
	for i, feed := range c.News.Feeds {
		if feed.URL == "" {
			errs = append(errs, fmt.Sprintf("news: feeds[%d] is missing a url", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
