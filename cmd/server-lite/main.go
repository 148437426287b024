// Package main provides the lightweight entry point for the BP trend server.
// This version requires no external databases: readings live in a local
// SQLite file and trend summaries in an in-process cache.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bp-trend-server/internal/api"
	"github.com/bp-trend-server/internal/cache"
	"github.com/bp-trend-server/internal/config"
	"github.com/bp-trend-server/internal/domain"
	"github.com/bp-trend-server/internal/journal"
	"github.com/bp-trend-server/internal/service"
	"github.com/bp-trend-server/pkg/external"
)

func main() {
	cfg := config.LoadLiteConfig()

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	logger.WithField("data_dir", cfg.DataDir).Info("Starting BP trend server (lite)")

	if err := cfg.EnsureDataDir(); err != nil {
		logger.WithError(err).Fatal("Failed to create data directory")
	}

	store, err := journal.NewSQLiteStore(cfg.JournalDBPath())
	if err != nil {
		logger.WithError(err).Fatal("Failed to open journal database")
	}
	defer store.Close()

	apiConfig := domain.ExternalAPIConfig{
		Generation: domain.GenerationConfig{
			BaseURL:   cfg.GenerationURL,
			APIKey:    cfg.GenerationAPIKey,
			Model:     "trend-v1",
			Timeout:   60 * time.Second,
			RateLimit: 2,
		},
		Extraction: domain.ExtractionConfig{
			BaseURL:   cfg.ExtractionURL,
			APIKey:    cfg.ExtractionAPIKey,
			Timeout:   90 * time.Second,
			RateLimit: 1,
		},
	}

	// Empty CacheConfig means no Redis; the in-process cache below covers it.
	client, err := external.NewResilientExternalClient(apiConfig, domain.CacheConfig{}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create external clients")
	}
	defer client.Close()

	generator := cache.NewCachedGenerator(client, cache.NewMemoryCache(cfg.CacheMaxItems, cfg.CacheTTL))

	var extractor domain.ReadingExtractor
	if cfg.ExtractionURL != "" {
		extractor = client
	}

	summarizer, err := service.NewTrendSummarizer(logger, generator,
		service.WithWindowDays(cfg.WindowDays),
		service.WithOrderingPolicy(cfg.OrderingPolicy),
	)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create trend summarizer")
	}

	serverConfig := domain.ServerConfig{
		Host:         "127.0.0.1",
		Port:         cfg.HTTPPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	server := api.NewServer(logger, serverConfig, store, summarizer, extractor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	if parsed, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}
