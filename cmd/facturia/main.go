// Package main provides the entry point for the Facturia server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/facturia/facturia/internal/admin"
	"github.com/facturia/facturia/internal/audit"
	"github.com/facturia/facturia/internal/auth"
	"github.com/facturia/facturia/internal/config"
	"github.com/facturia/facturia/internal/metrics"
	"github.com/facturia/facturia/internal/report"
	"github.com/facturia/facturia/internal/storage"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "facturia: %v\n", err)
		os.Exit(1)
	}
}

// run wires the service together. Separated from main() so the error path
// is a single return.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(parseLogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close() //nolint:errcheck

	if err := metrics.Init(prometheus.DefaultRegisterer, version); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	sessions := auth.NewSessionService(store, cfg.SessionTTL)
	recorder := audit.NewRecorder(store, logger)
	issuer := report.NewIssuer(store, cfg.PublicBaseURL, cfg.ReportTokenTTL)
	resolver := report.NewResolver(store)

	handler := admin.NewHandler(store, logLevel, logger, recorder, sessions, issuer, resolver)
	router := handler.NewRouter()

	// Expired sessions are also deleted on touch; the sweep keeps the
	// table small when sessions are abandoned instead of logged out.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			deleted, err := store.DeleteExpiredSessions(ctx, time.Now())
			cancel()
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Debug("expired sessions deleted", "count", deleted)
			}
		}
	}()

	// Metrics are served on their own listener so they are never exposed
	// on the public address.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		logger.Info("metrics listener starting", "addr", cfg.MetricsListenAddr)
		if err := http.ListenAndServe(cfg.MetricsListenAddr, mux); err != nil {
			logger.Error("metrics listener failed", "error", err)
		}
	}()

	logger.Info("facturia starting",
		"version", version,
		"addr", cfg.ListenAddr,
		"database", cfg.DatabasePath,
		"public_base_url", cfg.PublicBaseURL)

	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// parseLogLevel maps the config vocabulary onto slog levels.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
