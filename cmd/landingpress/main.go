// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/landingpress/internal/cache"
	"github.com/olegiv/landingpress/internal/config"
	"github.com/olegiv/landingpress/internal/handler"
	"github.com/olegiv/landingpress/internal/imaging"
	"github.com/olegiv/landingpress/internal/logging"
	"github.com/olegiv/landingpress/internal/scheduler"
	"github.com/olegiv/landingpress/internal/store"
	"github.com/olegiv/landingpress/internal/stripe"
	"github.com/olegiv/landingpress/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "LandingPress - landing page server with checkout\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_ADMIN_EMAIL             Dashboard admin email (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_ADMIN_PASSWORD          Dashboard admin password or argon2id hash (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_DB_PATH                 SQLite database path (default: ./data/landingpress.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_CONTENT_PATH            Landing content JSON path (default: ./public/landing-content.json)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_STRIPE_SECRETS_PATH     Stripe secrets file path (default: ./data/stripe-secrets.json)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_UPLOADS_DIR             Image upload directory (default: ./public/uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_SERVER_PORT             Server port (default: 4242)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_ENV                     Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_CHECKOUT_RETURN_URL_BASE Base URL for checkout return links (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_STRIPE_PRICE_ID         Fallback Stripe price for optionless pages (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_REDIS_URL               Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LP_DO_SEED                 Write a starter content file when none exists (default: false)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Printf("landingpress %s\n", info)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting landingpress",
		"version", versionInfo.Version, "commit", versionInfo.GitCommit, "env", cfg.Env)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	events := store.NewEventStore(db)
	orders := store.NewOrderStore(db)

	// Upgrade logger to also write WARN and ERROR logs to the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, events))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	contentFile := store.NewContentFile(cfg.ContentPath)
	secrets := store.NewSecretsFile(cfg.SecretsPath)

	// Seed starter content on a fresh install
	ctx := context.Background()
	if err := store.SeedContent(ctx, contentFile, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding content: %w", err)
	}

	// Initialize content cache
	cacheBackend, err := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := cacheBackend.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory", "max_size", cfg.CacheMaxSize)
	}
	contentCache := cache.NewContentCache(cacheBackend, time.Duration(cfg.CacheTTL)*time.Second)

	// Stripe client cache, one client per configured secret key
	var stripeOpts []stripe.Option
	if cfg.StripeVersion != "" {
		stripeOpts = append(stripeOpts, stripe.WithAPIVersion(cfg.StripeVersion))
	}
	clients := stripe.NewCache(stripeOpts...)

	// Image upload pipeline
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}
	processor := imaging.NewProcessor(cfg.UploadsDir)

	// Start cleanup scheduler
	sched := scheduler.New(orders, events, logger, scheduler.Config{
		StaleOrderMaxAge:  time.Duration(cfg.StaleOrderMaxAge) * time.Hour,
		EventLogRetention: time.Duration(cfg.EventLogRetention) * 24 * time.Hour,
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	router := handler.NewRouter(handler.Deps{
		Cfg:          cfg,
		DB:           db,
		ContentFile:  contentFile,
		Secrets:      secrets,
		Orders:       orders,
		Clients:      clients,
		ContentCache: contentCache,
		Processor:    processor,
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
