// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/halvard/ansuz/internal/api"
	"github.com/halvard/ansuz/internal/mcpserver"
	"github.com/halvard/ansuz/internal/models"
	"github.com/halvard/ansuz/internal/remote"
	"github.com/halvard/ansuz/internal/sse"
	"github.com/halvard/ansuz/internal/zettelstore"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Open the record store.
	provider, err := remote.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init record store: %w", err)
	}
	defer provider.Close()

	store := remote.NewStore(provider, logger,
		remote.WithRetryPolicy(cfg.Store.MaxAttempts, cfg.Store.BackoffUnit),
		remote.WithTimeouts(cfg.Store.RequestTimeout, cfg.Store.ResourceTimeout),
	)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Orchestrator: owns the in-memory collection, pushes changes to SSE.
	notes := zettelstore.New(store, logger,
		zettelstore.WithDebounce(cfg.Store.Debounce),
		zettelstore.WithEventFunc(func(kind zettelstore.EventKind, n models.Note) {
			broker.PublishNoteEvent(string(kind), n.ID.String())
		}),
	)

	// Initial load.
	if err := notes.LoadAll(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	// Build API service and router.
	svc := api.NewService(notes)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the record database for out-of-process changes and pull them in.
	g.Go(func() error {
		return remote.Watch(gCtx, cfg.Store.Path, logger, func() {
			if err := notes.LoadAll(gCtx); err != nil {
				logger.Warn("reload after remote change failed", slog.String("error", err.Error()))
			}
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server sharing the same record store.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	provider, err := remote.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init record store: %w", err)
	}
	defer provider.Close()

	store := remote.NewStore(provider, logger,
		remote.WithRetryPolicy(cfg.Store.MaxAttempts, cfg.Store.BackoffUnit),
		remote.WithTimeouts(cfg.Store.RequestTimeout, cfg.Store.ResourceTimeout),
	)
	notes := zettelstore.New(store, logger, zettelstore.WithDebounce(cfg.Store.Debounce))
	if err := notes.LoadAll(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	return mcpserver.New(notes).ServeStdio()
}
