package domain

import (
	"context"
)

// ReadingStore is the persistence boundary for readings and the singleton
// user profile. No classification component performs I/O itself.
type ReadingStore interface {
	// ListReadings returns all readings ordered most recent first.
	ListReadings(ctx context.Context) ([]*Reading, error)

	// GetReading retrieves a reading by its opaque ID.
	// Returns ErrNotFound (wrapped) when no such reading exists.
	GetReading(ctx context.Context, id string) (*Reading, error)

	// SaveReading inserts the reading, or fully replaces it when a reading
	// with the same ID already exists (edit semantics).
	SaveReading(ctx context.Context, reading *Reading) error

	// DeleteReading removes a reading by ID.
	DeleteReading(ctx context.Context, id string) error

	// GetProfile returns the singleton profile, or nil when none was saved.
	GetProfile(ctx context.Context) (*UserProfile, error)

	// SaveProfile creates or replaces the singleton profile.
	SaveProfile(ctx context.Context, profile *UserProfile) error

	// Close releases store resources.
	Close() error
}

// TrendGenerator is the opaque external natural-language generation call.
// It may fail; the summarizer never retries it.
type TrendGenerator interface {
	GenerateTrendSummary(ctx context.Context, request *TrendRequest) (*TrendResponse, error)
}

// ReadingExtractor is the opaque external OCR call that turns an uploaded
// monitor photo into a structured best-guess reading.
type ReadingExtractor interface {
	ExtractReading(ctx context.Context, request *ExtractionRequest) (*ExtractionResult, error)
}

// ConfigManager provides access to application configuration
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	GetExternalAPIConfig() *ExternalAPIConfig
	Validate() error
}
