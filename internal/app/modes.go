package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Rogeraristi/polycopy-sub001/internal/auth"
	"github.com/Rogeraristi/polycopy-sub001/internal/server"
	"github.com/Rogeraristi/polycopy-sub001/internal/server/handler"
	"github.com/Rogeraristi/polycopy-sub001/internal/server/middleware"
	"github.com/Rogeraristi/polycopy-sub001/internal/server/ws"
	"github.com/Rogeraristi/polycopy-sub001/internal/service"
)

// ServerMode starts the HTTP/WebSocket API, the WebSocket hub, and the
// scheduled leaderboard refresh loop, then blocks until the context is
// cancelled.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	if !a.cfg.Server.Enabled {
		a.logger.WarnContext(ctx, "server.enabled is false, but server mode always serves the API")
	}

	g, ctx := errgroup.WithContext(ctx)

	// Services.
	analytics := service.NewAnalyticsService(
		deps.Data,
		deps.FeedCache,
		a.cfg.Analytics.FeedTTL.Duration,
		a.cfg.Analytics.FeedLimit,
		nil,
		a.logger,
	)
	lbSvc := service.NewLeaderboardService(deps.Pipeline)
	traderSvc := service.NewTraderService(deps.Gamma, lbSvc, a.logger)
	settingsSvc := service.NewSettingsService(deps.SettingsStore)

	var newsSvc *service.NewsService
	if deps.News != nil {
		newsSvc = service.NewNewsService(deps.News, a.cfg.News.TTL.Duration, nil, a.logger)
	}

	// OAuth login and per-user settings require a configured provider.
	var authSvc *service.AuthService
	if a.cfg.Auth.ClientID != "" {
		sessions, err := auth.NewSessionManager(
			a.cfg.Auth.SessionSecret,
			a.cfg.Auth.SessionTTL.Duration,
			deps.SessionStore,
			nil,
		)
		if err != nil {
			return fmt.Errorf("server mode: session manager: %w", err)
		}
		oauth := auth.NewOAuthClient(auth.OAuthConfig{
			Provider:     a.cfg.Auth.Provider,
			ClientID:     a.cfg.Auth.ClientID,
			ClientSecret: a.cfg.Auth.ClientSecret,
			AuthURL:      a.cfg.Auth.AuthURL,
			TokenURL:     a.cfg.Auth.TokenURL,
			UserInfoURL:  a.cfg.Auth.UserInfoURL,
			RedirectURL:  a.cfg.Auth.RedirectURL,
			Scopes:       a.cfg.Auth.Scopes,
		})
		authSvc = service.NewAuthService(oauth, sessions, deps.UserStore, a.logger)
	} else {
		a.logger.InfoContext(ctx, "auth.client_id not set, login and settings endpoints disabled")
	}

	// WebSocket hub: watched-trader trade polling plus leaderboard pushes on
	// every successful refresh.
	hub := ws.NewHub(analytics, deps.SignalBus, a.cfg.WS.PollInterval.Duration, a.logger)
	deps.Pipeline.SetOnRefresh(hub.BroadcastSnapshot)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	// Scheduled leaderboard refresh.
	g.Go(func() error {
		return deps.Pipeline.RunLoop(ctx, a.cfg.Leaderboard.RefreshInterval.Duration)
	})

	handlers := server.Handlers{
		Health:      handler.NewHealthHandler(a.logger),
		Markets:     handler.NewMarketHandler(deps.Gamma, a.logger),
		Leaderboard: handler.NewLeaderboardHandler(lbSvc, a.logger),
		Trader:      handler.NewTraderHandler(analytics, traderSvc, a.logger),
		Search:      handler.NewSearchHandler(traderSvc, a.logger),
	}
	if newsSvc != nil {
		handlers.News = handler.NewNewsHandler(newsSvc, a.logger)
	}
	var verifier middleware.SessionVerifier
	if authSvc != nil {
		verifier = authSvc
		handlers.Auth = handler.NewAuthHandler(
			authSvc,
			a.cfg.Auth.SessionTTL.Duration,
			a.cfg.Auth.SecureCookies,
			a.logger,
		)
		handlers.Settings = handler.NewSettingsHandler(settingsSvc, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:               a.cfg.Server.Port,
		CORSOrigins:        a.cfg.Server.CORSOrigins,
		RateLimitPerMinute: a.cfg.Server.RateLimitPerMinute,
	}, handlers, hub, verifier, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.InfoContext(ctx, "HTTP server shutting down")
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

// RefreshMode runs one forced leaderboard refresh and exits. Useful for cron
// schedules and for warming the cache before a deploy.
func (a *App) RefreshMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting refresh mode")

	snap, err := deps.Pipeline.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh mode: %w", err)
	}

	for period, entries := range snap.Periods {
		a.logger.InfoContext(ctx, "period refreshed",
			slog.String("period", string(period)),
			slog.Int("entries", len(entries)),
		)
	}
	a.logger.InfoContext(ctx, "leaderboard refreshed",
		slog.Int("total_entries", snap.TotalEntries()),
		slog.String("source", snap.Source),
		slog.Time("fetched_at", snap.FetchedAt),
	)
	return nil
}
