package external

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/bp-trend-server/internal/domain"
)

// ResilientExternalClient wraps the generation and extraction clients with
// circuit breakers, plus Redis caching for trend summaries. It satisfies
// both domain.TrendGenerator and domain.ReadingExtractor.
type ResilientExternalClient struct {
	generation *GenerationClient
	extraction *ExtractionClient
	cache      *CacheClient
	log        *logrus.Logger

	generationBreaker *gobreaker.CircuitBreaker
	extractionBreaker *gobreaker.CircuitBreaker
}

// NewResilientExternalClient creates circuit-breaker wrapped clients for the
// configured external services. The cache is optional: pass a nil CacheConfig
// RedisURL to run without it (the lite deployment does).
func NewResilientExternalClient(
	apiConfig domain.ExternalAPIConfig,
	cacheConfig domain.CacheConfig,
	logger *logrus.Logger,
) (*ResilientExternalClient, error) {
	generation := NewGenerationClient(apiConfig.Generation)
	extraction := NewExtractionClient(apiConfig.Extraction)

	var cache *CacheClient
	if cacheConfig.RedisURL != "" {
		var err error
		cache, err = NewCacheClient(cacheConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache client: %w", err)
		}
	}

	onStateChange := func(name string, from gobreaker.State, to gobreaker.State) {
		logger.WithFields(logrus.Fields{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		}).Warn("Circuit breaker state changed")
	}

	generationBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Generation",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: onStateChange,
	})

	extractionBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Extraction",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     90 * time.Second, // OCR calls are slow to recover
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 2 && failureRatio >= 0.5
		},
		OnStateChange: onStateChange,
	})

	return &ResilientExternalClient{
		generation:        generation,
		extraction:        extraction,
		cache:             cache,
		log:               logger,
		generationBreaker: generationBreaker,
		extractionBreaker: extractionBreaker,
	}, nil
}

// GenerateTrendSummary calls the generation API with caching and circuit
// breaking. A cache hit never touches the breaker; an open breaker is
// reported as an error when nothing is cached, never silently swallowed.
func (r *ResilientExternalClient) GenerateTrendSummary(ctx context.Context, request *domain.TrendRequest) (*domain.TrendResponse, error) {
	if r.cache != nil {
		if cached, found, err := r.cache.GetTrendSummary(ctx, request); err == nil && found {
			return cached, nil
		}
	}

	result, err := r.generationBreaker.Execute(func() (interface{}, error) {
		return r.generation.GenerateTrendSummary(ctx, request)
	})

	if err != nil {
		if err == gobreaker.ErrOpenState {
			if r.cache != nil {
				if cached, found, cacheErr := r.cache.GetTrendSummary(ctx, request); cacheErr == nil && found {
					return cached, nil
				}
			}
			return nil, fmt.Errorf("generation service unavailable (circuit breaker open)")
		}
		return nil, fmt.Errorf("generation call failed: %w", err)
	}

	data := result.(*domain.TrendResponse)

	if r.cache != nil {
		if cacheErr := r.cache.SetTrendSummary(ctx, request, data, 0); cacheErr != nil {
			r.log.WithError(cacheErr).Warn("Failed to cache trend summary")
		}
	}

	return data, nil
}

// ExtractReading calls the OCR extraction function with circuit breaking.
// Extraction results are never cached: the same photo is rarely submitted
// twice and stale quality signals would mislead the form layer.
func (r *ResilientExternalClient) ExtractReading(ctx context.Context, request *domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	result, err := r.extractionBreaker.Execute(func() (interface{}, error) {
		return r.extraction.ExtractReading(ctx, request)
	})

	if err != nil {
		if err == gobreaker.ErrOpenState {
			return nil, fmt.Errorf("extraction service unavailable (circuit breaker open)")
		}
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	return result.(*domain.ExtractionResult), nil
}

// InvalidateTrendCache drops all cached trend summaries.
func (r *ResilientExternalClient) InvalidateTrendCache(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.InvalidateTrends(ctx)
}

// GetCircuitBreakerStates returns the current state of all circuit breakers
func (r *ResilientExternalClient) GetCircuitBreakerStates() map[string]gobreaker.State {
	return map[string]gobreaker.State{
		"Generation": r.generationBreaker.State(),
		"Extraction": r.extractionBreaker.State(),
	}
}

// Close closes all connections and resources
func (r *ResilientExternalClient) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}
