// Package external contains the clients for the two outbound services the
// application depends on: the natural-language trend generation API and the
// OCR extraction function. Both are wrapped by ResilientExternalClient,
// which adds circuit breaking and Redis-backed caching.
package external

import (
	"context"

	"github.com/bp-trend-server/internal/domain"
)

// GenerationService is the outbound natural-language generation call.
type GenerationService interface {
	GenerateTrendSummary(ctx context.Context, request *domain.TrendRequest) (*domain.TrendResponse, error)
}

// ExtractionService is the outbound OCR extraction call.
type ExtractionService interface {
	ExtractReading(ctx context.Context, request *domain.ExtractionRequest) (*domain.ExtractionResult, error)
}
