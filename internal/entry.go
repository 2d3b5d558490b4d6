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

	"github.com/lfroes/notas/internal/api"
	"github.com/lfroes/notas/internal/mcpserver"
	"github.com/lfroes/notas/internal/notestore"
	"github.com/lfroes/notas/internal/search"
	"github.com/lfroes/notas/internal/sse"
	"github.com/lfroes/notas/internal/storage"
)

// openProvider builds the persistence backend selected by the config.
// For the file backend it also returns the *storage.File so the caller
// can start the external-edit watcher.
func openProvider(cfg *Config) (storage.Provider, *storage.File, error) {
	switch cfg.Store.Backend {
	case BackendSQLite:
		db, err := storage.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return db, nil, nil
	default:
		f, err := storage.NewFile(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return f, f, nil
	}
}

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
		slog.String("store_backend", cfg.Store.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	provider, snapshotFile, err := openProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	// SSE broker; the store publishes every committed change through it.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	store, err := notestore.New(provider,
		notestore.WithLogger(logger),
		notestore.WithOnChange(broker.PublishChange),
	)
	if err != nil {
		return fmt.Errorf("init note store: %w", err)
	}

	engine, err := search.NewEngine(store)
	if err != nil {
		return fmt.Errorf("init search engine: %w", err)
	}

	apiRouter := api.NewRouter(store, engine, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Watch the snapshot for external edits (file backend only).
	if snapshotFile != nil {
		g.Go(func() error {
			if err := notestore.Watch(gCtx, store, snapshotFile, logger); err != nil {
				logger.Warn("snapshot watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

// RunMCP starts the MCP server on stdio over the configured store.
// Logs go to stderr so stdout stays clean for the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
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
	slog.SetDefault(logger)

	provider, _, err := openProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	store, err := notestore.New(provider, notestore.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("init note store: %w", err)
	}

	engine, err := search.NewEngine(store)
	if err != nil {
		return fmt.Errorf("init search engine: %w", err)
	}

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(store, engine).ServeStdio()
}
