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

	"github.com/cortex-os/cortex/internal/api"
	"github.com/cortex-os/cortex/internal/applier"
	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/confwatch"
	"github.com/cortex-os/cortex/internal/connectivity"
	"github.com/cortex-os/cortex/internal/mcpserver"
	"github.com/cortex-os/cortex/internal/remote"
	"github.com/cortex-os/cortex/internal/sse"
	"github.com/cortex-os/cortex/internal/store"
	"github.com/cortex-os/cortex/internal/syncengine"
	"github.com/cortex-os/cortex/pkg/config"
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

	// Initialize structured JSON logger with a runtime-adjustable level.
	level := &slog.LevelVar{}
	level.Set(cfg.App.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("remote_base_url", cfg.Remote.BaseURL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Durable store.
	st, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer st.Close()

	// Remote API client. An empty base URL means permanently offline.
	var rc remote.Client
	if cfg.Remote.BaseURL != "" {
		rc = remote.NewHTTPClient(cfg.Remote.BaseURL, cfg.Remote.Token, cfg.Remote.Timeout)
	}

	// In-memory state hydrated from the store.
	state := appstate.New()
	if err := state.Hydrate(st); err != nil {
		return fmt.Errorf("hydrate state: %w", err)
	}
	logger.Info("State hydrated",
		slog.Int("pending_changes", state.SyncState().PendingChanges))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	ap := applier.New(st, rc, state, logger)

	engine := syncengine.New(st, rc, state, logger,
		syncengine.WithItemTimeout(cfg.Sync.ItemTimeout),
		syncengine.WithPullLimit(cfg.Sync.PullLimit),
		syncengine.WithOnStart(broker.PublishSyncStarted),
		syncengine.WithOnComplete(func(res syncengine.Result) {
			broker.PublishSyncCompleted(res)
			broker.PublishStateChanged(state.SyncState())
		}),
	)

	ctrl := connectivity.New(state, engine, rc, logger,
		connectivity.WithOnChange(func(bool) {
			broker.PublishStateChanged(state.SyncState())
		}),
	)

	// Build API router.
	apiRouter := api.NewRouter(state, ap, engine, ctrl, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Periodic queue drain while online.
	engine.StartAutoSync(gCtx, cfg.Sync.Interval)
	defer engine.StopAutoSync()

	// Connectivity probing needs a remote to ping.
	if rc != nil {
		g.Go(func() error {
			return ctrl.Probe(gCtx, cfg.Sync.ProbeInterval)
		})
	}

	// Config watcher keeps the log level adjustable at runtime.
	if app.configPath != "" {
		g.Go(func() error {
			return confwatch.Watch(gCtx, app.configPath, level, logger, func(path string) (slog.Level, error) {
				fresh := NewDefaultConfig()
				if err := config.Load(path, fresh); err != nil {
					return level.Level(), err
				}
				return fresh.App.LogLevel, nil
			})
		})
	}

	// MCP server on stdio, when enabled.
	if cfg.MCP.Enabled {
		mcpSrv := mcpserver.New(state, ap)
		g.Go(func() error {
			if err := mcpSrv.ServeStdio(); err != nil {
				logger.Error("MCP server error", slog.String("error", err.Error()))
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
		broker.Close()

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
