// Package main provides the full server entry point: PostgreSQL storage,
// Redis-backed trend caching, and the external generation/extraction clients.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/bp-trend-server/internal/api"
	"github.com/bp-trend-server/internal/config"
	"github.com/bp-trend-server/internal/database"
	"github.com/bp-trend-server/internal/repository"
	"github.com/bp-trend-server/internal/service"
	"github.com/bp-trend-server/pkg/external"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting BP trend server")

	// Run migrations before opening the pool.
	runner, err := database.NewMigrationRunner(&cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create migration runner")
	}
	if err := runner.Up(); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}
	runner.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	store := repository.NewReadingRepository(db.Pool, logger)

	client, err := external.NewResilientExternalClient(cfg.ExternalAPI, cfg.Cache, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create external clients")
	}
	defer client.Close()

	summarizer, err := service.NewTrendSummarizer(logger, client,
		service.WithWindowDays(cfg.Analysis.WindowDays),
		service.WithOrderingPolicy(cfg.Analysis.OrderingPolicy),
		service.WithMemoCacheSize(cfg.Analysis.MemoCacheSize),
	)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create trend summarizer")
	}

	server := api.NewServer(logger, cfg.Server, store, summarizer, client)

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
