package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/minutex/internal/domain"
)

func TestSuccess_WrapsDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	Success(rec, http.StatusOK, map[string]string{"meeting_id": "m1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "m1", body["data"]["meeting_id"])
}

func TestError_WrapsErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, http.StatusBadRequest, "meeting_id is required")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "meeting_id is required", body["error"])
}

func TestDomainErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation", domain.ErrMissingMeetingID, http.StatusBadRequest},
		{"not found", domain.ErrChunkNotFound, http.StatusNotFound},
		{"unsupported format", domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"upstream", domain.ErrEmbeddingUnavailable, http.StatusBadGateway},
		{"partial failure", domain.NewPartialFailureError(1, 3, nil), http.StatusBadGateway},
		{"timeout", domain.NewTimeoutError("embedding", nil), http.StatusGatewayTimeout},
		{"internal", domain.NewDomainError(domain.ErrCodeInternalError, "boom"), http.StatusInternalServerError},
		{"plain error", errors.New("something"), http.StatusInternalServerError},
		// Pipeline stages wrap domain errors with call-site context;
		// the mapping must hold through the unwrap chain.
		{
			"wrapped upstream",
			fmt.Errorf("failed to create embedding: %w", fmt.Errorf("chunk 2: %w", domain.ErrEmbeddingQuotaExceeded)),
			http.StatusBadGateway,
		},
		{
			"wrapped validation",
			fmt.Errorf("failed to create embedding: %w", domain.ErrEmptyEmbeddingInput),
			http.StatusBadRequest,
		},
		{
			"wrapped timeout",
			fmt.Errorf("search: %w", domain.NewTimeoutError("search", nil)),
			http.StatusGatewayTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, DomainErrorToHTTP(tt.err))
		})
	}
}

func TestHandleError_WritesStatusAndMessage(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleError(rec, domain.ErrEmptyQuery)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "query is required")
}

func TestHandleError_OmitsWrappedCause(t *testing.T) {
	rec := httptest.NewRecorder()

	cause := errors.New("dial tcp 10.0.0.3:443: connection refused")
	err := fmt.Errorf("failed to create embedding: %w",
		domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "embedding service unavailable", cause))

	HandleError(rec, err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "embedding service unavailable")
	assert.NotContains(t, body["error"], "connection refused")
}

func TestHandleError_PlainErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleError(rec, errors.New("pq: relation \"chunks\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
}
