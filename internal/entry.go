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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/arnstead/skald/internal/api"
	"github.com/arnstead/skald/internal/kbservice"
	"github.com/arnstead/skald/internal/mcpserver"
	"github.com/arnstead/skald/internal/rawcache"
	"github.com/arnstead/skald/internal/source"
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
		slog.String("source_owner", cfg.Source.Owner),
		slog.String("source_repo", cfg.Source.Repo),
		slog.String("local_path", cfg.Source.LocalPath),
		slog.String("log_level", cfg.App.LogLevel.String()))

	provider, rc, err := buildSource(cfg, logger)
	if err != nil {
		return err
	}
	if closer, ok := provider.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	svc := kbservice.New(provider, rc, cfg.Source.DefaultCategory, logger)

	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// Build the index up front; a failure is not fatal, the first request
	// retries the load.
	if err := svc.Reload(ctx); err != nil {
		logger.Warn("initial index build failed", slog.String("error", err.Error()))
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
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
	r.Mount("/api", api.NewRouter(svc))

	// In local mode also serve the raw files under their repo-relative
	// paths, so the same-origin fallback fetch works against this server.
	local, isLocal := baseProvider(provider).(*source.Local)
	if isLocal {
		r.Handle("/"+rc.DocsPath+"/*", http.FileServer(http.Dir(local.Root())))
	}

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch local content for changes and rebuild the index.
	if isLocal {
		g.Go(func() error {
			if err := kbservice.Watch(gCtx, svc, local.Root(), logger); err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
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

// buildSource assembles the content provider and repository context from
// the configuration: a local directory when local_path is set, otherwise
// an HTTP client for the hosted repository, optionally wrapped with the
// SQLite raw-content cache.
func buildSource(cfg *Config, logger *slog.Logger) (source.Provider, *source.Context, error) {
	src := cfg.Source

	if src.LocalPath != "" {
		owner, repo := src.Owner, src.Repo
		if owner == "" {
			owner = "local"
		}
		if repo == "" {
			repo = filepath.Base(src.LocalPath)
		}
		rc, err := source.NewContext(owner, repo, src.DocsPath, src.Branch)
		if err != nil {
			return nil, nil, fmt.Errorf("init source context: %w", err)
		}
		local, err := source.NewLocal(src.LocalPath)
		if err != nil {
			return nil, nil, fmt.Errorf("init local source: %w", err)
		}
		return local, rc, nil
	}

	rc, err := source.NewContext(src.Owner, src.Repo, src.DocsPath, src.Branch)
	if err != nil {
		return nil, nil, fmt.Errorf("init source context: %w", err)
	}

	var clientOpts []source.ClientOption
	if src.APIBaseURL != "" {
		clientOpts = append(clientOpts, source.WithAPIBase(src.APIBaseURL))
	}
	if src.RawBaseURL != "" {
		clientOpts = append(clientOpts, source.WithRawBase(src.RawBaseURL))
	}
	if src.FallbackBaseURL != "" {
		clientOpts = append(clientOpts, source.WithFallbackBase(src.FallbackBaseURL))
	}

	var provider source.Provider = source.NewClient(source.NewProcessCache(), clientOpts...)

	if cfg.Cache.RawPath != "" {
		store, err := rawcache.Open(cfg.Cache.RawPath)
		if err != nil {
			return nil, nil, fmt.Errorf("init raw cache: %w", err)
		}
		provider = &closingProvider{Provider: source.WithRawCache(provider, store, logger), store: store}
	}

	return provider, rc, nil
}

// closingProvider ties the raw-cache store lifetime to the provider.
type closingProvider struct {
	source.Provider
	store *rawcache.Store
}

func (p *closingProvider) Close() error {
	return p.store.Close()
}

// baseProvider unwraps cache decorators to reach the underlying provider.
func baseProvider(p source.Provider) source.Provider {
	for {
		switch v := p.(type) {
		case *closingProvider:
			p = v.Provider
		case *source.CachedProvider:
			p = v.Underlying()
		default:
			return p
		}
	}
}
