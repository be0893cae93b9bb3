package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/usercount/internal/config"
	"github.com/JonMunkholm/usercount/internal/core"
	"github.com/JonMunkholm/usercount/internal/logging"
	"github.com/JonMunkholm/usercount/internal/session"
	"github.com/JonMunkholm/usercount/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	limiter := core.NewLoadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	analyzer, err := core.NewAnalyzer(core.AnalyzerConfig{
		Workers:     cfg.Analysis.Workers,
		CacheSize:   cfg.Analysis.CacheSize,
		MaxFileSize: cfg.Upload.MaxFileSize,
		Limiter:     limiter,
	})
	if err != nil {
		slog.Error("failed to create analyzer", "error", err)
		os.Exit(1)
	}

	// Expired or evicted sessions take their memoized results with them.
	// The callback runs under the store's lock and must not call back into it.
	sessions := session.NewStore(cfg.Session.MaxSessions, cfg.Session.TTL, func(s *session.Session) {
		dropped := 0
		for _, f := range s.Files() {
			if f.Dataset != nil {
				dropped += analyzer.Invalidate(f.Dataset.CacheKey())
			}
		}
		slog.Info("session ended",
			"session_id", s.ID,
			"files", len(s.Files()),
			"cached_results", dropped,
			"idle", time.Since(s.UpdatedAt()).Round(time.Second))
	})

	server := web.NewServer(cfg, analyzer, sessions)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for files being parsed (with timeout)
		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for file loads to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("file loads did not complete in time", "error", err)
			} else {
				slog.Info("all file loads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
