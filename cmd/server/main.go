package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iconidentify/xresolve/internal/api"
	"github.com/iconidentify/xresolve/internal/api/handler"
	"github.com/iconidentify/xresolve/internal/config"
	"github.com/iconidentify/xresolve/internal/journal"
	"github.com/iconidentify/xresolve/pkg/twitter"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("xresolve %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting xresolve",
		"version", Version,
		"build_time", BuildTime,
	)

	// Optional .env for local development; real env vars still win in Load
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize the resolution journal
	jnl, err := journal.New(journal.Config{
		RingSize:      cfg.Journal.RingSize,
		Persist:       cfg.Journal.Persist,
		Path:          cfg.Journal.Path,
		RetentionDays: cfg.Journal.RetentionDays,
	}, logger)
	if err != nil {
		logger.Error("failed to open resolution journal", "error", err)
		os.Exit(1)
	}
	defer jnl.Close()

	// Initialize the resolver client
	resolver := twitter.NewClient(cfg.Resolver, logger)

	// Initialize handlers
	resolveHandler := handler.NewResolveHandler(resolver, jnl, logger)
	healthHandler := handler.NewHealthHandler(jnl)
	uiHandler := handler.NewUIHandler()

	// Setup router
	router := api.NewRouter(resolveHandler, healthHandler, uiHandler, cfg.Server.APIKey)

	// Prune persisted resolutions in the background
	retentionCtx, cancelRetention := context.WithCancel(context.Background())
	go runRetentionLoop(retentionCtx, jnl, logger)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Cancel background tasks
	cancelRetention()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// runRetentionLoop prunes resolutions past the retention window, once at
// startup and then daily. No-op when persistence is disabled.
func runRetentionLoop(ctx context.Context, jnl *journal.Journal, logger *slog.Logger) {
	if err := jnl.CleanupOld(ctx); err != nil {
		logger.Error("journal cleanup failed", "error", err)
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := jnl.CleanupOld(ctx); err != nil {
				logger.Error("journal cleanup failed", "error", err)
			}
		}
	}
}
