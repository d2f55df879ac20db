package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/veldt-labs/minutex/internal/domain"
	"github.com/veldt-labs/minutex/internal/service"
)

// embeddingDimensions must match the vector column and the halfvec
// index expression in the migrations. Changing the deployed embedding
// model means a new migration, not a config flip.
const embeddingDimensions = 3072

// hnswMaxEfSearch is pgvector's upper bound for hnsw.ef_search.
const hnswMaxEfSearch = 1000

// dbtx abstracts pgxpool.Pool and pgx.Tx for repository queries.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ChunkRepository persists chunk records and serves similarity search
// over their embeddings.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// InsertBatch inserts the chunks one row at a time and returns how many
// made it in. The batch is deliberately not wrapped in a transaction: a
// mid-batch failure leaves earlier rows committed, and the returned
// count lets the caller surface the partial insert.
func (r *ChunkRepository) InsertBatch(ctx context.Context, chunks []*domain.Chunk) (int, error) {
	return insertChunks(ctx, r.pool, chunks)
}

// ReplaceMeeting swaps the meeting's chunk set for the given one inside
// a single transaction, so re-ingestion never leaves a mix of old and
// new chunks.
func (r *ChunkRepository) ReplaceMeeting(ctx context.Context, meetingID string, chunks []*domain.Chunk) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE meeting_id = $1`, normalizeMeetingID(meetingID)); err != nil {
		return 0, err
	}

	inserted, err := insertChunks(ctx, tx, chunks)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

func insertChunks(ctx context.Context, db dbtx, chunks []*domain.Chunk) (int, error) {
	inserted := 0
	for _, c := range chunks {
		_, err := db.Exec(ctx,
			`INSERT INTO chunks (meeting_id, chunk_index, text, embedding, topic, department, date)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.MeetingID,
			c.ChunkIndex,
			c.Text,
			pgvector.NewVector(c.Embedding),
			c.Topic,
			c.Department,
			c.Date,
		)
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// DeleteByMeeting removes every chunk of the meeting and returns the
// deleted count. The id is whitespace-trimmed before matching; matching
// is exact equality. Zero deletions is not an error.
func (r *ChunkRepository) DeleteByMeeting(ctx context.Context, meetingID string) (int, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM chunks WHERE meeting_id = $1`,
		normalizeMeetingID(meetingID),
	)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// ListMeetings groups chunks by meeting, taking topic and department
// from the group's first chunk (lowest chunk_index of the earliest
// ingest) and the most recent ingestion date, ordered newest first.
func (r *ChunkRepository) ListMeetings(ctx context.Context) ([]*domain.MeetingSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT meeting_id,
		        COUNT(*) AS chunk_count,
		        (ARRAY_AGG(topic ORDER BY date ASC, chunk_index ASC))[1] AS topic,
		        (ARRAY_AGG(department ORDER BY date ASC, chunk_index ASC))[1] AS department,
		        MAX(date) AS most_recent_date
		 FROM chunks
		 GROUP BY meeting_id
		 ORDER BY most_recent_date DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.MeetingSummary
	for rows.Next() {
		var s domain.MeetingSummary
		if err := rows.Scan(&s.MeetingID, &s.ChunkCount, &s.Topic, &s.Department, &s.MostRecentDate); err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

// CountAll returns the total number of chunk records across all meetings.
func (r *ChunkRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// GetChunk fetches one chunk by its (meeting_id, chunk_index) key.
func (r *ChunkRepository) GetChunk(ctx context.Context, meetingID string, chunkIndex int) (*domain.Chunk, error) {
	var c domain.Chunk
	var embedding pgvector.Vector
	err := r.pool.QueryRow(ctx,
		`SELECT meeting_id, chunk_index, text, embedding, topic, department, date
		 FROM chunks WHERE meeting_id = $1 AND chunk_index = $2`,
		normalizeMeetingID(meetingID), chunkIndex,
	).Scan(&c.MeetingID, &c.ChunkIndex, &c.Text, &embedding, &c.Topic, &c.Department, &c.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, err
	}
	c.Embedding = embedding.Slice()
	return &c, nil
}

// Search runs an approximate nearest-neighbor search over the stored
// embeddings. The candidate pool maps onto hnsw.ef_search: the HNSW
// index gathers that many candidates before the top k are returned.
//
// Score is 1.0 / (1.0 + cosine_distance), so it falls in (0, 1] with 1
// meaning identical direction. Callers should treat the scale as opaque
// and rely on ordering only.
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, k, candidatePool int, meetingID string) ([]*service.SearchMatch, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if candidatePool < k {
		candidatePool = k
	}
	if candidatePool > hnswMaxEfSearch {
		candidatePool = hnswMaxEfSearch
	}

	// SET LOCAL only holds inside a transaction.
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`SET LOCAL hnsw.ef_search = %d`, candidatePool)); err != nil {
		return nil, err
	}

	vec := pgvector.NewVector(embedding)

	// The halfvec cast must match the index expression so the planner
	// can use the HNSW index.
	distance := fmt.Sprintf("embedding::halfvec(%d) <=> $1::halfvec(%d)", embeddingDimensions, embeddingDimensions)

	query := fmt.Sprintf(`
		SELECT meeting_id, text,
		       1.0 / (1.0 + (%s)) AS score
		FROM chunks`, distance)
	args := []any{vec}

	if meetingID != "" {
		query += ` WHERE meeting_id = $3`
		args = append(args, k, normalizeMeetingID(meetingID))
	} else {
		args = append(args, k)
	}

	query += fmt.Sprintf(`
		ORDER BY %s
		LIMIT $2`, distance)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*service.SearchMatch, 0, k)
	for rows.Next() {
		var m service.SearchMatch
		if err := rows.Scan(&m.MeetingID, &m.Text, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return matches, nil
}

func normalizeMeetingID(meetingID string) string {
	return strings.TrimSpace(meetingID)
}
