package domain

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors for reading data integrity
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidBodyPosition    = errors.New("invalid body position")
	ErrInvalidExerciseContext = errors.New("invalid exercise context")
	ErrInvalidSymptom         = errors.New("invalid symptom")
	ErrSymptomNoneConflict    = errors.New(`symptom "None" cannot appear alongside other symptoms`)
)

// APIError represents a standardized error response
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeStorage        = "STORAGE_ERROR"
	ErrCodeExternalAPI    = "EXTERNAL_API_ERROR"
	ErrCodeAnalysis       = "ANALYSIS_ERROR"
	ErrCodeExtraction     = "EXTRACTION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
	ErrCodeValidation     = "VALIDATION_ERROR"
)

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// AnalysisError wraps a failure of the external generation call. Its message
// always carries the disclaimer so callers surface it even on error paths
// that bubble up to UI-level toasts.
type AnalysisError struct {
	Err error
}

// Error implements the error interface. The message is the original message
// plus a trailing newline and the disclaimer text.
func (e *AnalysisError) Error() string {
	return e.Err.Error() + "\n" + Disclaimer
}

// Unwrap returns the underlying generation failure.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError wraps err; it returns nil when err is nil.
func NewAnalysisError(err error) *AnalysisError {
	if err == nil {
		return nil
	}
	return &AnalysisError{Err: err}
}
