package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/veldt-labs/minutex/internal/domain"
)

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Success writes a successful JSON response
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DomainErrorToHTTP maps domain errors to HTTP status codes. Pipeline
// stages wrap domain errors with call-site context, so the lookup
// walks the unwrap chain rather than asserting on the outermost error.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case domain.ErrCodeUpstream:
		return http.StatusBadGateway
	case domain.ErrCodePartialFailure:
		return http.StatusBadGateway
	case domain.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case domain.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an appropriate error response based on the error
// type. Only the domain code and message reach the caller; wrapped
// causes carry provider and store internals, so they are logged rather
// than returned.
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		log.Printf("unhandled error: %v", err)
		Error(w, status, "internal server error")
		return
	}

	if domainErr.Err != nil {
		log.Printf("[%s] %s: %v", domainErr.Code, domainErr.Message, domainErr.Err)
	}
	Error(w, status, fmt.Sprintf("[%s] %s", domainErr.Code, domainErr.Message))
}
