package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bp-trend-server/internal/domain"
	"github.com/bp-trend-server/internal/journal"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}

// handleListReadings returns the full journal, most recent first.
func (s *Server) handleListReadings(c *gin.Context) {
	readings, err := s.store.ListReadings(c.Request.Context())
	if err != nil {
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeStorage, "Failed to list readings", err)
		return
	}
	if readings == nil {
		readings = []*domain.Reading{}
	}

	c.JSON(http.StatusOK, gin.H{
		"readings": readings,
		"count":    len(readings),
	})
}

// handleGetReading returns a single reading by ID.
func (s *Server) handleGetReading(c *gin.Context) {
	reading, err := s.store.GetReading(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.abortWithError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Reading not found", err)
			return
		}
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeStorage, "Failed to load reading", err)
		return
	}

	c.JSON(http.StatusOK, reading)
}

// handleCreateReading saves a new reading. The server assigns the ID; a
// missing timestamp defaults to the time of submission.
func (s *Server) handleCreateReading(c *gin.Context) {
	var reading domain.Reading
	if err := c.ShouldBindJSON(&reading); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid reading payload", err)
		return
	}

	reading.ID = uuid.New().String()
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}

	if err := reading.Validate(); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrCodeValidation, "Reading failed validation", err)
		return
	}

	if err := s.store.SaveReading(c.Request.Context(), &reading); err != nil {
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeStorage, "Failed to save reading", err)
		return
	}

	s.log.WithFields(reading.LogFields()).Info("Reading created")
	s.hub.notify()

	c.JSON(http.StatusCreated, &reading)
}

// handleUpdateReading fully replaces an existing reading.
func (s *Server) handleUpdateReading(c *gin.Context) {
	id := c.Param("id")

	if _, err := s.store.GetReading(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.abortWithError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Reading not found", err)
			return
		}
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeStorage, "Failed to load reading", err)
		return
	}

	var reading domain.Reading
	if err := c.ShouldBindJSON(&reading); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid reading payload", err)
		return
	}

	reading.ID = id
	if err := reading.Validate(); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrCodeValidation, "Reading failed validation", err)
		return
	}

	if err := s.store.SaveReading(c.Request.Context(), &reading); err != nil {
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeStorage, "Failed to save reading", err)
		return
	}

	s.log.WithFields(reading.LogFields()).Info("Reading updated")
	s.hub.notify()

	c.JSON(http.StatusOK, &reading)
}

// handleDeleteReading removes a reading by ID.
func (s *Server) handleDeleteReading(c *gin.Context) {
	err := s.store.DeleteReading(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.abortWithError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Reading not found", err)
			return
		}
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeStorage, "Failed to delete reading", err)
		return
	}

	s.log.WithField("reading_id", c.Param("id")).Info("Reading deleted")
	s.hub.notify()

	c.Status(http.StatusNoContent)
}

// handleGetProfile returns the singleton profile, or 404 when none was saved.
func (s *Server) handleGetProfile(c *gin.Context) {
	profile, err := s.store.GetProfile(c.Request.Context())
	if err != nil {
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeStorage, "Failed to load profile", err)
		return
	}
	if profile == nil {
		s.abortWithError(c, http.StatusNotFound, domain.ErrCodeNotFound, "No profile saved", nil)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// handlePutProfile creates or replaces the singleton profile.
func (s *Server) handlePutProfile(c *gin.Context) {
	var profile domain.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid profile payload", err)
		return
	}

	if err := profile.Validate(); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrCodeValidation, "Profile failed validation", err)
		return
	}

	if err := s.store.SaveProfile(c.Request.Context(), &profile); err != nil {
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeStorage, "Failed to save profile", err)
		return
	}

	s.log.Info("Profile saved")
	s.hub.notify()

	c.JSON(http.StatusOK, &profile)
}

// handleTrend runs a trend analysis over the current journal.
func (s *Server) handleTrend(c *gin.Context) {
	result, err := s.computeTrend(c.Request.Context())
	if err != nil {
		var analysisErr *domain.AnalysisError
		if errors.As(err, &analysisErr) {
			// The analysis error message already carries the disclaimer.
			s.abortWithError(c, http.StatusBadGateway, domain.ErrCodeAnalysis, "Trend analysis failed", analysisErr)
			return
		}
		s.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeStorage, "Failed to load journal", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleExtract proxies an uploaded monitor photo to the external OCR
// function and returns the structured best-guess reading.
func (s *Server) handleExtract(c *gin.Context) {
	if s.extractor == nil {
		s.abortWithError(c, http.StatusServiceUnavailable, domain.ErrCodeExtraction, "Extraction is not configured", nil)
		return
	}

	var request domain.ExtractionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid extraction payload", err)
		return
	}
	if request.ImageBase64 == "" {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "image_base64 is required", nil)
		return
	}

	result, err := s.extractor.ExtractReading(c.Request.Context(), &request)
	if err != nil {
		s.abortWithError(c, http.StatusBadGateway, domain.ErrCodeExtraction, "Extraction failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleExport streams the full journal as a JSON document.
func (s *Server) handleExport(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="bp-journal.json"`)

	if err := journal.ExportJSON(c.Request.Context(), s.store, c.Writer); err != nil {
		s.log.WithError(err).Error("Journal export failed")
		// Headers are already out; the truncated body signals the failure.
		c.Abort()
	}
}

// handleImport merges a previously exported journal. Existing readings are
// skipped, never overwritten.
func (s *Server) handleImport(c *gin.Context) {
	imported, skipped, err := journal.ImportJSON(c.Request.Context(), s.store, c.Request.Body)
	if err != nil {
		s.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Import failed", err)
		return
	}

	s.log.WithFields(map[string]any{
		"imported": imported,
		"skipped":  skipped,
	}).Info("Journal import completed")

	if imported > 0 {
		s.hub.notify()
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"skipped":  skipped,
	})
}

// abortWithError writes a standardized error response carrying the request's
// correlation ID.
func (s *Server) abortWithError(c *gin.Context, status int, code, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}

	apiErr := domain.NewAPIError(code, message, details, c.GetString("correlation_id"))

	if err != nil {
		s.log.WithError(err).WithFields(map[string]any{
			"status": status,
			"code":   code,
			"path":   c.Request.URL.Path,
		}).Warn(message)
	}

	c.AbortWithStatusJSON(status, apiErr)
}
