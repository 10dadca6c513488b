// Package server provides HTTP server initialization and lifecycle management
// for the MemoryKeeper coaching API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/scrypster/memorykeeper/internal/config"
	"github.com/scrypster/memorykeeper/internal/engine"
	"github.com/scrypster/memorykeeper/web/handlers"
)

// NewRouter builds the routed handler for coach. The hub must be running for
// coach sockets to work.
func NewRouter(cfg *config.Config, coach *engine.Coach, hub *handlers.CoachHub, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	coachHandlers := handlers.NewCoachHandlers(coach, hub, logger)
	rateLimiter := handlers.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(handlers.SecurityHeaders)
	r.Use(handlers.RateLimitMiddleware(rateLimiter))

	// Health endpoint, no auth required
	r.Get("/health", coachHandlers.Health)

	r.Group(func(r chi.Router) {
		r.Use(handlers.RequireAuth(cfg.Server.APIToken))
		coachHandlers.RegisterRoutes(r)
		r.Method(http.MethodGet, "/ws/coach/{userID}", hub)
	})

	return r
}

// Start initializes and starts the HTTP server. It returns the actual
// address being listened on (useful for testing with port 0). The server
// and the coach hub shut down when ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, coach *engine.Coach, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := handlers.NewCoachHub(coach, OriginPatterns(cfg.Server.AllowOrigins), logger)
	go hub.Run()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      NewRouter(cfg, coach, hub, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		hub.Stop()
		return "", fmt.Errorf("listen on %s: %w", server.Addr, err)
	}

	actualAddr := listener.Addr().String()
	logger.Info("coach server listening", zap.String("addr", actualAddr))

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown error", zap.Error(err))
		}
		hub.Stop()
	}()

	return actualAddr, nil
}

// OriginPatterns splits a comma-separated origin list.
func OriginPatterns(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
		})
	}
}
