// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bp-trend-server/internal/domain"
)

// LiteConfig is a simplified configuration for standalone operation.
// It requires no PostgreSQL or Redis and uses sensible defaults: readings
// live in a local SQLite file and trend summaries in an in-process cache.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for data files

	// Cache settings
	CacheMaxItems int           // Maximum items in memory cache
	CacheTTL      time.Duration // Default cache TTL

	// External API settings
	GenerationURL    string // Natural-language generation endpoint
	GenerationAPIKey string
	ExtractionURL    string // OCR extraction endpoint
	ExtractionAPIKey string

	// HTTP settings
	HTTPPort int

	// Analysis settings
	WindowDays     int
	OrderingPolicy domain.OrderingPolicy

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".bp-trend")

	return &LiteConfig{
		DataDir:        dataDir,
		CacheMaxItems:  256,
		CacheTTL:       24 * time.Hour,
		HTTPPort:       8080,
		WindowDays:     30,
		OrderingPolicy: domain.DefaultOrderingPolicy,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("BP_TREND_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("BP_TREND_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("BP_TREND_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}

	cfg.GenerationURL = os.Getenv("BP_TREND_GENERATION_URL")
	cfg.GenerationAPIKey = os.Getenv("BP_TREND_GENERATION_API_KEY")
	cfg.ExtractionURL = os.Getenv("BP_TREND_EXTRACTION_URL")
	cfg.ExtractionAPIKey = os.Getenv("BP_TREND_EXTRACTION_API_KEY")

	if v := os.Getenv("BP_TREND_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	if v := os.Getenv("BP_TREND_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WindowDays = n
		}
	}
	if v := os.Getenv("BP_TREND_ORDERING_POLICY"); v != "" {
		if policy := domain.OrderingPolicy(v); policy.IsValid() {
			cfg.OrderingPolicy = policy
		}
	}

	if v := os.Getenv("BP_TREND_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BP_TREND_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// JournalDBPath returns the path to the readings SQLite database.
func (c *LiteConfig) JournalDBPath() string {
	return filepath.Join(c.DataDir, "journal.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}
