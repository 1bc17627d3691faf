// Package config provides configuration loading and validation from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	LogLevel          string        // debug, info, warn, error
	ListenAddr        string        // Server listen address (e.g., ":8080")
	MetricsListenAddr string        // Metrics listener address (e.g., "localhost:9090")
	DatabasePath      string        // SQLite database path
	PublicBaseURL     string        // Base URL embedded in client report links
	SessionTTL        time.Duration // Admin session lifetime
	ReportTokenTTL    time.Duration // Report link lifetime
}

// Load parses configuration from environment variables.
// All configuration options have sensible defaults for ease of deployment.
func Load() (*Config, error) {
	logLevel := os.Getenv("LOG_LEVEL")
	listenAddr := os.Getenv("LISTEN_ADDR")
	metricsListenAddr := os.Getenv("METRICS_LISTEN_ADDR")
	databasePath := os.Getenv("DATABASE_PATH")
	publicBaseURL := os.Getenv("PUBLIC_BASE_URL")

	if logLevel == "" {
		logLevel = "info"
	}

	if listenAddr == "" {
		listenAddr = ":8080"
	}

	if metricsListenAddr == "" {
		metricsListenAddr = "localhost:9090"
	}

	if databasePath == "" {
		databasePath = "/data/facturia.db"
	}

	if publicBaseURL == "" {
		publicBaseURL = "http://localhost:8080"
	}

	sessionTTL, err := loadHours("SESSION_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}

	reportTokenTTL, err := loadHours("REPORT_TOKEN_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:          logLevel,
		ListenAddr:        listenAddr,
		MetricsListenAddr: metricsListenAddr,
		DatabasePath:      databasePath,
		PublicBaseURL:     strings.TrimRight(publicBaseURL, "/"),
		SessionTTL:        sessionTTL,
		ReportTokenTTL:    reportTokenTTL,
	}

	return cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}

	if !strings.HasPrefix(c.PublicBaseURL, "http://") && !strings.HasPrefix(c.PublicBaseURL, "https://") {
		return fmt.Errorf("PUBLIC_BASE_URL must start with http:// or https:// (got %q)", c.PublicBaseURL)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}

	if c.ReportTokenTTL <= 0 {
		return fmt.Errorf("REPORT_TOKEN_TTL_HOURS must be positive")
	}

	return nil
}

// loadHours reads an environment variable holding a whole number of hours.
func loadHours(name string, defaultHours int) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return time.Duration(defaultHours) * time.Hour, nil
	}

	hours, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer number of hours (got %q)", name, raw)
	}

	return time.Duration(hours) * time.Hour, nil
}
