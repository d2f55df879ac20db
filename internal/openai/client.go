package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/veldt-labs/minutex/internal/domain"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.LargeEmbedding3
	// DefaultEmbeddingDimensions is the output dimension of text-embedding-3-large
	DefaultEmbeddingDimensions = 3072
	// defaultMaxRetryElapsed bounds the total time spent retrying one call
	defaultMaxRetryElapsed = 30 * time.Second
)

var (
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when the OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// Client wraps the OpenAI API client. Ingestion and query embedding
// must go through the same Client so both sides of the similarity
// comparison use one model version.
type Client struct {
	api             EmbeddingAPI
	dimensions      int
	maxRetryElapsed time.Duration
}

type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &OpenAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	MaxRetryElapsed     time.Duration
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	maxElapsed := cfg.MaxRetryElapsed
	if maxElapsed <= 0 {
		maxElapsed = defaultMaxRetryElapsed
	}
	return &Client{
		api:             NewOpenAIAdapter(cfg.APIKey, cfg.EmbeddingModel),
		dimensions:      dimensions,
		maxRetryElapsed: maxElapsed,
	}
}

// NewClientFromEnv creates a new OpenAI client using the OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// GenerateEmbedding generates an embedding for the given text. Transient
// provider failures (unavailable, rate limited) are retried with
// exponential backoff until maxRetryElapsed; invalid input is never
// retried.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, domain.ErrEmptyEmbeddingInput
	}

	maxElapsed := c.maxRetryElapsed
	if maxElapsed <= 0 {
		maxElapsed = defaultMaxRetryElapsed
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed

	embedding, err := backoff.RetryWithData(func() ([]float32, error) {
		vec, err := c.api.CreateEmbeddings(ctx, text)
		if err != nil {
			return nil, classifyError(err)
		}
		return vec, nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	expected := c.dimensions
	if expected <= 0 {
		expected = DefaultEmbeddingDimensions
	}
	if len(embedding) != expected {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, expected, len(embedding))
	}

	return embedding, nil
}

// classifyError maps provider errors onto the domain taxonomy and marks
// the permanent ones so backoff stops immediately.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "embedding quota exceeded", err)
		case apiErr.HTTPStatusCode >= 500:
			return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "embedding service unavailable", err)
		default:
			return backoff.Permanent(domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "embedding request rejected", err))
		}
	}

	// Network-level failures are treated as transient.
	return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "embedding service unreachable", err)
}
