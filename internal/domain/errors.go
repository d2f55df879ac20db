package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeUpstream          = "UPSTREAM_ERROR"
	ErrCodePartialFailure    = "PARTIAL_FAILURE"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Input errors: caller mistakes, never retried.
var (
	ErrMissingFile           = NewDomainError(ErrCodeValidation, "no file uploaded")
	ErrMissingMeetingID      = NewDomainError(ErrCodeValidation, "meeting_id is required")
	ErrEmptyQuery            = NewDomainError(ErrCodeValidation, "query is required")
	ErrEmptyContent          = NewDomainError(ErrCodeValidation, "document contains no readable text")
	ErrEmptyEmbeddingInput   = NewDomainError(ErrCodeValidation, "text to embed cannot be empty")
	ErrInvalidSearchLimit    = NewDomainError(ErrCodeValidation, "k must be positive")
	ErrCandidatePoolTooSmall = NewDomainError(ErrCodeValidation, "candidate pool must be at least k")
)

// Format errors
var (
	ErrUnsupportedFormat = NewDomainError(ErrCodeUnsupportedFormat, "unsupported document format")
)

// Upstream errors: the embedding provider or the store misbehaved.
// Retryable at the pipeline's discretion.
var (
	ErrEmbeddingUnavailable   = NewDomainError(ErrCodeUpstream, "embedding service unavailable")
	ErrEmbeddingQuotaExceeded = NewDomainError(ErrCodeUpstream, "embedding quota exceeded")
)

// Not found errors
var (
	ErrChunkNotFound   = NewDomainError(ErrCodeNotFound, "chunk not found")
	ErrArchiveNotFound = NewDomainError(ErrCodeNotFound, "no archived document for meeting")
	ErrEventNotFound   = NewDomainError(ErrCodeNotFound, "ingest event not found")
)

// NewPartialFailureError reports a batch insert that persisted fewer
// records than were submitted. The actual count must reach the caller.
func NewPartialFailureError(inserted, submitted int, cause error) *DomainError {
	return NewDomainErrorWithCause(
		ErrCodePartialFailure,
		fmt.Sprintf("inserted %d of %d chunks", inserted, submitted),
		cause,
	)
}

// NewTimeoutError wraps a deadline exceeded condition from a pipeline stage.
func NewTimeoutError(stage string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeTimeout, fmt.Sprintf("%s timed out", stage), err)
}
