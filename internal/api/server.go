// Package api serves the report, heroes, user statistics and sample ingestion over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/rs/cors"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// NewRouter creates and configures the chi router with all middleware and routes.
func NewRouter(svc contract.StatsService, cfg *contract.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5))

	if len(cfg.CORSOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type"},
			ExposedHeaders:   []string{"X-Process-Time", "X-Request-Id"},
			AllowCredentials: false,
		})
		r.Use(c.Handler)
	}

	if cfg.RateLimit > 0 {
		r.Use(RateLimitMiddleware(cfg.RateLimit, cfg.RateWindow))
	}

	h := &handler{svc: svc}

	r.Get("/health", h.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/report", h.getReport)
		r.Get("/report/text", h.getReportText)
		r.Get("/heroes", h.getHeroes)
		r.Get("/users/{name}/stats", h.getUserStats)
		r.Post("/samples", h.postSample)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})
	return r
}

// Serve runs the HTTP API until ctx is canceled, then shuts down gracefully.
func Serve(ctx context.Context, svc contract.StatsService, cfg *contract.Config) error {
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      NewRouter(svc, cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting hunterstats API", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}
