package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYCOPY_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYCOPY_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "POLYCOPY_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.DataHost, "POLYCOPY_POLYMARKET_DATA_HOST")
	setStr(&cfg.Polymarket.LeaderboardHost, "POLYCOPY_POLYMARKET_LEADERBOARD_HOST")
	setStr(&cfg.Polymarket.SiteHost, "POLYCOPY_POLYMARKET_SITE_HOST")

	// ── Apify ──
	setStr(&cfg.Apify.BaseURL, "POLYCOPY_APIFY_BASE_URL")
	setStr(&cfg.Apify.DatasetID, "POLYCOPY_APIFY_DATASET_ID")
	setStr(&cfg.Apify.Token, "POLYCOPY_APIFY_TOKEN")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "POLYCOPY_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYCOPY_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYCOPY_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYCOPY_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYCOPY_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYCOPY_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYCOPY_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "POLYCOPY_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "POLYCOPY_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "POLYCOPY_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "POLYCOPY_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "POLYCOPY_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "POLYCOPY_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "POLYCOPY_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "POLYCOPY_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "POLYCOPY_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "POLYCOPY_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "POLYCOPY_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "POLYCOPY_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "POLYCOPY_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "POLYCOPY_S3_REGION")
	setStr(&cfg.S3.Bucket, "POLYCOPY_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "POLYCOPY_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "POLYCOPY_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "POLYCOPY_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "POLYCOPY_S3_FORCE_PATH_STYLE")
	setInt(&cfg.S3.RetentionDays, "POLYCOPY_S3_RETENTION_DAYS")

	// ── Auth ──
	setStr(&cfg.Auth.Provider, "POLYCOPY_AUTH_PROVIDER")
	setStr(&cfg.Auth.ClientID, "POLYCOPY_AUTH_CLIENT_ID")
	setStr(&cfg.Auth.ClientSecret, "POLYCOPY_AUTH_CLIENT_SECRET")
	setStr(&cfg.Auth.AuthURL, "POLYCOPY_AUTH_AUTH_URL")
	setStr(&cfg.Auth.TokenURL, "POLYCOPY_AUTH_TOKEN_URL")
	setStr(&cfg.Auth.UserInfoURL, "POLYCOPY_AUTH_USER_INFO_URL")
	setStr(&cfg.Auth.RedirectURL, "POLYCOPY_AUTH_REDIRECT_URL")
	setStringSlice(&cfg.Auth.Scopes, "POLYCOPY_AUTH_SCOPES")
	setStr(&cfg.Auth.SessionSecret, "POLYCOPY_AUTH_SESSION_SECRET")
	setDuration(&cfg.Auth.SessionTTL, "POLYCOPY_AUTH_SESSION_TTL")
	setBool(&cfg.Auth.SecureCookies, "POLYCOPY_AUTH_SECURE_COOKIES")

	// ── Analytics ──
	setDuration(&cfg.Analytics.FeedTTL, "POLYCOPY_ANALYTICS_FEED_TTL")
	setInt(&cfg.Analytics.FeedLimit, "POLYCOPY_ANALYTICS_FEED_LIMIT")

	// ── Leaderboard ──
	setInt(&cfg.Leaderboard.Limit, "POLYCOPY_LEADERBOARD_LIMIT")
	setDuration(&cfg.Leaderboard.TTL, "POLYCOPY_LEADERBOARD_TTL")
	setStr(&cfg.Leaderboard.DefaultPeriod, "POLYCOPY_LEADERBOARD_DEFAULT_PERIOD")
	setStr(&cfg.Leaderboard.SourceMode, "POLYCOPY_LEADERBOARD_SOURCE_MODE")
	setDuration(&cfg.Leaderboard.RefreshInterval, "POLYCOPY_LEADERBOARD_REFRESH_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "POLYCOPY_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "POLYCOPY_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYCOPY_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimitPerMinute, "POLYCOPY_SERVER_RATE_LIMIT_PER_MINUTE")

	// ── WS ──
	setDuration(&cfg.WS.PollInterval, "POLYCOPY_WS_POLL_INTERVAL")

	// ── Top-level ──
	setStr(&cfg.Mode, "POLYCOPY_MODE")
	setStr(&cfg.LogLevel, "POLYCOPY_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
