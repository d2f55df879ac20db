package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/minutex/internal/domain"
)

// MockOpenAIAPI is a mock for the OpenAI API
type MockOpenAIAPI struct {
	mock.Mock
}

func (m *MockOpenAIAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func testEmbedding(dims int) []float32 {
	embedding := make([]float32, dims)
	for i := range embedding {
		embedding[i] = float32(i) * 0.001
	}
	return embedding
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI}

	ctx := context.Background()
	text := "Planning notes for the quarterly review meeting."
	expectedEmbedding := testEmbedding(3072)

	mockAPI.On("CreateEmbeddings", ctx, text).Return(expectedEmbedding, nil)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.NoError(t, err)
	assert.Len(t, embedding, 3072)
	assert.Equal(t, expectedEmbedding, embedding)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	client := NewClient("")

	ctx := context.Background()
	embedding, err := client.GenerateEmbedding(ctx, "")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Equal(t, domain.ErrEmptyEmbeddingInput, err)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI}

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, "text").Return(testEmbedding(1536), nil)

	embedding, err := client.GenerateEmbedding(ctx, "text")

	assert.Nil(t, embedding)
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestClient_GenerateEmbedding_TransientErrorRetried(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, maxRetryElapsed: time.Second}

	ctx := context.Background()
	unavailable := &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "upstream down"}

	mockAPI.On("CreateEmbeddings", ctx, "text").Return(nil, unavailable).Once()
	mockAPI.On("CreateEmbeddings", ctx, "text").Return(testEmbedding(3072), nil).Once()

	embedding, err := client.GenerateEmbedding(ctx, "text")

	require.NoError(t, err)
	assert.Len(t, embedding, 3072)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_PermanentErrorNotRetried(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, maxRetryElapsed: time.Second}

	ctx := context.Background()
	rejected := &openai.APIError{HTTPStatusCode: http.StatusBadRequest, Message: "invalid input"}

	mockAPI.On("CreateEmbeddings", ctx, "text").Return(nil, rejected).Once()

	embedding, err := client.GenerateEmbedding(ctx, "text")

	assert.Nil(t, embedding)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	mockAPI.AssertNumberOfCalls(t, "CreateEmbeddings", 1)
}

func TestClient_GenerateEmbedding_ExhaustedRetriesSurfaceUpstreamError(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, maxRetryElapsed: 10 * time.Millisecond}

	ctx := context.Background()
	quota := &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "quota exceeded"}

	mockAPI.On("CreateEmbeddings", ctx, "text").Return(nil, quota)

	embedding, err := client.GenerateEmbedding(ctx, "text")

	assert.Nil(t, embedding)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrCodeUpstream, domainErr.Code)
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "sk-test"})

	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)
	assert.Equal(t, defaultMaxRetryElapsed, client.maxRetryElapsed)
}

func TestNewClientFromEnv_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClientFromEnv()
	assert.Equal(t, ErrNoAPIKey, err)
}
