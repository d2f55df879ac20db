package service

import (
	"context"
	"strings"
	"time"

	"github.com/veldt-labs/minutex/internal/domain"
	"github.com/veldt-labs/minutex/internal/telemetry"
)

const (
	// DefaultSearchK is the number of matches returned when the caller
	// does not ask for a specific count.
	DefaultSearchK = 5
	// DefaultCandidatePool is the approximate-nearest-neighbor candidate
	// set size considered before final ranking. Larger pools trade
	// latency for recall.
	DefaultCandidatePool = 1000
)

// SearchMatch is one ranked result of a similarity search.
type SearchMatch struct {
	MeetingID string
	Text      string
	Score     float64
}

// VectorSearcher performs nearest-neighbor search over stored chunk
// embeddings. meetingID narrows the search to one meeting when
// non-empty; otherwise the whole corpus is searched.
type VectorSearcher interface {
	Search(ctx context.Context, embedding []float32, k, candidatePool int, meetingID string) ([]*SearchMatch, error)
}

// QueryConfig tunes the query pipeline.
type QueryConfig struct {
	K             int
	CandidatePool int
	Timeout       time.Duration
}

// DefaultQueryConfig provides the deployed defaults.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		K:             DefaultSearchK,
		CandidatePool: DefaultCandidatePool,
		Timeout:       30 * time.Second,
	}
}

// QueryService embeds a free-text query and retrieves the most similar
// stored chunks. The embedding client must be the same one used at
// ingestion time; the store never checks model consistency.
type QueryService struct {
	embedding EmbeddingClient
	searcher  VectorSearcher
	cfg       QueryConfig
}

func NewQueryService(embedding EmbeddingClient, searcher VectorSearcher) *QueryService {
	return NewQueryServiceWithConfig(embedding, searcher, DefaultQueryConfig())
}

func NewQueryServiceWithConfig(embedding EmbeddingClient, searcher VectorSearcher, cfg QueryConfig) *QueryService {
	if cfg.K <= 0 {
		cfg.K = DefaultSearchK
	}
	if cfg.CandidatePool <= 0 {
		cfg.CandidatePool = DefaultCandidatePool
	}
	return &QueryService{
		embedding: embedding,
		searcher:  searcher,
		cfg:       cfg,
	}
}

// QueryInput carries one search request. Zero values for K and
// CandidatePool select the configured defaults. MeetingID, when set,
// scopes results to that meeting.
type QueryInput struct {
	Query         string
	K             int
	CandidatePool int
	MeetingID     string
}

// Search embeds the query and returns the top-K matches ordered by
// descending similarity score. Scores follow the store's documented
// scale; callers should rely on ordering only.
func (s *QueryService) Search(ctx context.Context, input QueryInput) ([]*SearchMatch, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	ctx, span := telemetry.StartSpan(ctx, "QueryService.Search", telemetry.SpanAttributes{
		MeetingID: input.MeetingID,
		Operation: "search",
	})
	defer span.End()

	k := input.K
	if k == 0 {
		k = s.cfg.K
	}
	if k < 0 {
		return nil, domain.ErrInvalidSearchLimit
	}

	// The candidate pool must cover at least the requested result count.
	pool := input.CandidatePool
	if pool <= 0 {
		pool = s.cfg.CandidatePool
	}
	if pool < k {
		pool = k
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	vector, err := s.embedding.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, stageError("query embedding", err)
	}

	matches, err := s.searcher.Search(ctx, vector, k, pool, strings.TrimSpace(input.MeetingID))
	if err != nil {
		return nil, stageError("search", err)
	}

	return matches, nil
}
