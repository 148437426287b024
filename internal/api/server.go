// Package api exposes the HTTP surface of the trend server: reading and
// profile CRUD, trend analysis, image extraction, journal export/import, and
// a WebSocket feed that pushes a fresh analysis after every mutation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bp-trend-server/internal/domain"
	"github.com/bp-trend-server/internal/middleware"
	"github.com/bp-trend-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	log        *logrus.Logger
	cfg        domain.ServerConfig
	store      domain.ReadingStore
	summarizer *service.TrendSummarizer
	extractor  domain.ReadingExtractor
	router     *gin.Engine
	server     *http.Server
	hub        *watchHub
}

// NewServer creates a new HTTP server instance. The extractor may be nil when
// no extraction endpoint is configured; POST /extract then returns 503.
func NewServer(
	logger *logrus.Logger,
	cfg domain.ServerConfig,
	store domain.ReadingStore,
	summarizer *service.TrendSummarizer,
	extractor domain.ReadingExtractor,
) *Server {
	if logger.GetLevel() >= logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	router.Use(middleware.CorrelationID())

	s := &Server{
		log:        logger,
		cfg:        cfg,
		store:      store,
		summarizer: summarizer,
		extractor:  extractor,
		router:     router,
	}
	s.hub = newWatchHub(logger, s.computeTrend)

	s.setupRoutes()

	return s
}

// Router returns the underlying gin engine, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.hub.close()
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/readings", s.handleListReadings)
		v1.POST("/readings", s.handleCreateReading)
		v1.GET("/readings/:id", s.handleGetReading)
		v1.PUT("/readings/:id", s.handleUpdateReading)
		v1.DELETE("/readings/:id", s.handleDeleteReading)

		v1.GET("/profile", s.handleGetProfile)
		v1.PUT("/profile", s.handlePutProfile)

		v1.GET("/trend", s.handleTrend)
		v1.GET("/trend/watch", s.hub.handleWatch)

		v1.POST("/extract", s.handleExtract)

		v1.GET("/export", s.handleExport)
		v1.POST("/import", s.handleImport)
	}
}

// computeTrend loads the full journal and runs a trend analysis over it.
func (s *Server) computeTrend(ctx context.Context) (*domain.TrendAnalysisResult, error) {
	readings, err := s.store.ListReadings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}

	profile, err := s.store.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return s.summarizer.Analyze(ctx, readings, profile)
}
