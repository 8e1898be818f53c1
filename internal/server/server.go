// Package server is the HTTP and WebSocket boundary: route registration,
// middleware chain, and graceful lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
	"github.com/Rogeraristi/polycopy-sub001/internal/server/handler"
	"github.com/Rogeraristi/polycopy-sub001/internal/server/middleware"
	"github.com/Rogeraristi/polycopy-sub001/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string

	// RateLimitPerMinute caps requests per client IP per minute when a rate
	// limiter is provided. Zero disables limiting.
	RateLimitPerMinute int
}

// Handlers aggregates all HTTP handlers that the server needs to register.
// Auth and Settings may be nil when no identity provider is configured.
type Handlers struct {
	Health      *handler.HealthHandler
	Markets     *handler.MarketHandler
	Leaderboard *handler.LeaderboardHandler
	Trader      *handler.TraderHandler
	Search      *handler.SearchHandler
	News        *handler.NewsHandler
	Auth        *handler.AuthHandler
	Settings    *handler.SettingsHandler
}

// Server is the headless HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (session resolution, rate limiting, logging, CORS)
// and attaches the WebSocket hub. verifier and limiter are optional.
func NewServer(
	cfg Config,
	handlers Handlers,
	wsHub *ws.Hub,
	verifier middleware.SessionVerifier,
	limiter domain.RateLimiter,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Market metadata proxy.
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)

	// Leaderboard snapshot.
	mux.HandleFunc("GET /api/analytics/leaderboard", handlers.Leaderboard.GetLeaderboard)

	// Per-address analytics views.
	mux.HandleFunc("GET /api/analytics/trader/{address}/trades", handlers.Trader.GetTrades)
	mux.HandleFunc("GET /api/analytics/trader/{address}/pnl", handlers.Trader.GetPnl)
	mux.HandleFunc("GET /api/analytics/trader/{address}/portfolio", handlers.Trader.GetPortfolio)
	mux.HandleFunc("GET /api/analytics/trader/{address}/history", handlers.Trader.GetHistory)
	mux.HandleFunc("GET /api/users/{address}/overview", handlers.Trader.GetOverview)

	// Trader search with snapshot fallback.
	mux.HandleFunc("GET /api/traders/search", handlers.Search.SearchTraders)

	// Aggregated headlines.
	if handlers.News != nil {
		mux.HandleFunc("GET /api/news", handlers.News.GetNews)
	}

	// Login flow and per-user settings.
	if handlers.Auth != nil {
		mux.HandleFunc("GET /api/auth/login", handlers.Auth.Login)
		mux.HandleFunc("GET /api/auth/callback", handlers.Auth.Callback)
		mux.HandleFunc("GET /api/auth/me", handlers.Auth.Me)
		mux.HandleFunc("POST /api/auth/logout", handlers.Auth.Logout)
	}
	if handlers.Settings != nil {
		mux.HandleFunc("GET /api/settings", middleware.RequireSession(handlers.Settings.GetSettings))
		mux.HandleFunc("PUT /api/settings", middleware.RequireSession(handlers.Settings.PutSettings))
	}

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	if verifier != nil {
		h = middleware.Session(verifier)(h)
	}
	if limiter != nil && cfg.RateLimitPerMinute > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimitPerMinute, time.Minute)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
