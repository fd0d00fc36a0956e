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

	"github.com/mjashby/forage/internal/api"
	"github.com/mjashby/forage/internal/catalog"
	"github.com/mjashby/forage/internal/history"
	"github.com/mjashby/forage/internal/kv"
	"github.com/mjashby/forage/internal/match"
	"github.com/mjashby/forage/internal/mcpserver"
	"github.com/mjashby/forage/internal/rows"
	"github.com/mjashby/forage/internal/settings"
	"github.com/mjashby/forage/internal/sse"
	"github.com/mjashby/forage/internal/tracker"
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

	// Initialize structured JSON logger. In MCP mode stdout carries the
	// protocol, so logs go to stderr.
	logOut := os.Stdout
	if app.mcpMode {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("catalog_url", cfg.Catalog.URL),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Int("weekly_goal", cfg.Goal.WeeklyFoods),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize SQLite key-value store.
	store, err := kv.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	// Fetch and import the food catalog.
	var source rows.Source
	if cfg.Catalog.URL != "" {
		source = rows.HTTP{URL: cfg.Catalog.URL}
	} else {
		source = rows.File{Path: cfg.Catalog.Path}
	}

	records, err := source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	cat, stats := catalog.Import(records, logger)
	if cat.Len() == 0 {
		return fmt.Errorf("catalog is empty after import")
	}
	logger.Info("Catalog imported",
		slog.Int("imported", stats.Imported),
		slog.Int("skipped", stats.Skipped),
		slog.Int("duplicates", stats.Duplicates))

	ix := match.NewIndex(cat)

	// Load settings and consumption history bound to the catalog.
	set, err := settings.Load(store, logger)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	log, err := history.Load(store, cat)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	// MCP mode: serve tools over stdio, no HTTP server or broker.
	if app.mcpMode {
		svc := tracker.NewService(cat, ix, log, set, cfg.Goal.WeeklyFoods, nil, logger)
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := tracker.NewService(cat, ix, log, set, cfg.Goal.WeeklyFoods, broker.PublishChange, logger)
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

	// Watch the catalog file and reload on change.
	if cfg.Catalog.Watch {
		g.Go(func() error {
			reload := func() error {
				recs, err := source.Fetch(gCtx)
				if err != nil {
					return fmt.Errorf("fetch catalog: %w", err)
				}
				st, err := svc.ReloadCatalog(gCtx, recs)
				if err != nil {
					return err
				}
				logger.Info("Catalog reloaded",
					slog.Int("imported", st.Imported),
					slog.Int("skipped", st.Skipped),
					slog.Int("duplicates", st.Duplicates))
				return nil
			}
			if err := rows.Watch(gCtx, cfg.Catalog.Path, logger, reload); err != nil {
				logger.Warn("catalog watcher stopped", slog.String("error", err.Error()))
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
