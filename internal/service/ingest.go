package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/veldt-labs/minutex/internal/domain"
	"github.com/veldt-labs/minutex/internal/telemetry"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// TextExtractor resolves a document format and extracts its plain text.
type TextExtractor interface {
	Extract(format string, data []byte) (string, error)
}

// IngestChunkRepository defines the store operations the ingest pipeline needs.
type IngestChunkRepository interface {
	InsertBatch(ctx context.Context, chunks []*domain.Chunk) (int, error)
	ReplaceMeeting(ctx context.Context, meetingID string, chunks []*domain.Chunk) (int, error)
}

// IngestEventRepository records ingest-completion events for async delivery.
type IngestEventRepository interface {
	Create(ctx context.Context, event *domain.IngestEvent) error
}

// DocumentArchiver stores the raw source document after a successful ingest.
type DocumentArchiver interface {
	Store(ctx context.Context, meetingID, format string, data []byte) (string, error)
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	MaxWords     int
	EmbedWorkers int
	Timeout      time.Duration
}

// DefaultIngestConfig provides the deployed defaults.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		MaxWords:     DefaultMaxWords,
		EmbedWorkers: 4,
		Timeout:      5 * time.Minute,
	}
}

// IngestService runs the document ingestion pipeline: extract, chunk,
// embed, store. One call handles one document for one meeting.
type IngestService struct {
	extractor TextExtractor
	embedding EmbeddingClient
	repo      IngestChunkRepository
	events    IngestEventRepository
	archive   DocumentArchiver
	cfg       IngestConfig
}

// NewIngestService creates an IngestService without event recording or
// document archiving.
func NewIngestService(extractor TextExtractor, embedding EmbeddingClient, repo IngestChunkRepository) *IngestService {
	return NewIngestServiceWithConfig(extractor, embedding, repo, nil, nil, DefaultIngestConfig())
}

func NewIngestServiceWithConfig(
	extractor TextExtractor,
	embedding EmbeddingClient,
	repo IngestChunkRepository,
	events IngestEventRepository,
	archive DocumentArchiver,
	cfg IngestConfig,
) *IngestService {
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = DefaultMaxWords
	}
	if cfg.EmbedWorkers <= 0 {
		cfg.EmbedWorkers = 1
	}
	return &IngestService{
		extractor: extractor,
		embedding: embedding,
		repo:      repo,
		events:    events,
		archive:   archive,
		cfg:       cfg,
	}
}

// IngestInput carries one document upload.
type IngestInput struct {
	Data       []byte
	Format     string
	MeetingID  string
	Topic      string
	Department string

	// Replace deletes the meeting's existing chunks and inserts the new
	// set in one transaction instead of appending a second chunk set.
	Replace bool
}

// IngestResult reports a completed ingestion.
type IngestResult struct {
	MeetingID  string
	ChunkCount int
}

// Ingest runs the full pipeline for one document. Chunk embeddings are
// generated concurrently up to EmbedWorkers in flight; chunk_index
// always reflects document order, not completion order. The first
// embedding failure aborts the document before anything is stored.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	meetingID := strings.TrimSpace(input.MeetingID)
	if meetingID == "" {
		return nil, domain.ErrMissingMeetingID
	}
	if len(input.Data) == 0 {
		return nil, domain.ErrMissingFile
	}

	ctx, span := telemetry.StartSpan(ctx, "IngestService.Ingest", telemetry.SpanAttributes{
		MeetingID: meetingID,
		Format:    input.Format,
		Operation: "ingest",
	})
	defer span.End()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	text, err := s.extractor.Extract(input.Format, input.Data)
	if err != nil {
		return nil, err
	}

	fragments := ChunkWords(text, s.cfg.MaxWords)
	if len(fragments) == 0 {
		return nil, domain.ErrEmptyContent
	}

	embeddings, err := s.embedAll(ctx, fragments)
	if err != nil {
		return nil, stageError("embedding", err)
	}

	ingestedAt := time.Now().UTC()
	chunks := make([]*domain.Chunk, len(fragments))
	for i, fragment := range fragments {
		chunk := domain.NewChunk(meetingID, i, fragment, embeddings[i], input.Topic, input.Department, ingestedAt)
		if err := domain.ValidateChunk(chunk); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "assembled invalid chunk", err)
		}
		chunks[i] = chunk
	}

	var inserted int
	if input.Replace {
		inserted, err = s.repo.ReplaceMeeting(ctx, meetingID, chunks)
	} else {
		inserted, err = s.repo.InsertBatch(ctx, chunks)
	}
	if err != nil {
		if inserted > 0 && inserted < len(chunks) {
			return nil, domain.NewPartialFailureError(inserted, len(chunks), err)
		}
		return nil, stageError("store", err)
	}
	if inserted != len(chunks) {
		return nil, domain.NewPartialFailureError(inserted, len(chunks), nil)
	}

	s.recordEvent(ctx, meetingID, inserted)
	s.archiveSource(ctx, meetingID, input)

	return &IngestResult{MeetingID: meetingID, ChunkCount: inserted}, nil
}

// embedAll fans the fragments out to the embedding client with bounded
// concurrency and reassembles the vectors in fragment order.
func (s *IngestService) embedAll(ctx context.Context, fragments []string) ([][]float32, error) {
	embeddings := make([][]float32, len(fragments))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EmbedWorkers)

	for i, fragment := range fragments {
		g.Go(func() error {
			vector, err := s.embedding.GenerateEmbedding(ctx, fragment)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			embeddings[i] = vector
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// recordEvent enqueues the ingest-completion event. Delivery is owned
// by the background notifier; a failure to enqueue does not fail an
// otherwise committed ingestion.
func (s *IngestService) recordEvent(ctx context.Context, meetingID string, chunkCount int) {
	if s.events == nil {
		return
	}

	event := domain.NewIngestEvent(uuid.NewString(), meetingID, chunkCount, time.Now().UTC())
	if err := s.events.Create(ctx, event); err != nil {
		log.Printf("failed to record ingest event for meeting %s: %v", meetingID, err)
	}
}

func (s *IngestService) archiveSource(ctx context.Context, meetingID string, input IngestInput) {
	if s.archive == nil {
		return
	}

	if _, err := s.archive.Store(ctx, meetingID, input.Format, input.Data); err != nil {
		log.Printf("failed to archive source document for meeting %s: %v", meetingID, err)
	}
}

// stageError maps context deadline expiry onto the timeout taxonomy and
// passes domain errors through untouched.
func stageError(stage string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTimeoutError(stage, err)
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, fmt.Sprintf("%s failed", stage), err)
}
