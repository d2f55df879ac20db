package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veldt-labs/minutex/internal/domain"
)

// IngestEventRepository stores ingest completion events for the webhook
// notifier to deliver.
type IngestEventRepository struct {
	db dbtx
}

func NewIngestEventRepository(pool *pgxpool.Pool) *IngestEventRepository {
	return &IngestEventRepository{db: pool}
}

func NewIngestEventRepositoryWithTx(tx pgx.Tx) *IngestEventRepository {
	return &IngestEventRepository{db: tx}
}

func (r *IngestEventRepository) Create(ctx context.Context, event *domain.IngestEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ingest_events (id, meeting_id, chunk_count, status, retries, error, created_at, delivered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.MeetingID, event.ChunkCount, event.Status, event.Retries, event.Error, event.CreatedAt, event.DeliveredAt,
	)
	return err
}

func (r *IngestEventRepository) GetByID(ctx context.Context, id string) (*domain.IngestEvent, error) {
	var event domain.IngestEvent
	var errMsg pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, meeting_id, chunk_count, status, retries, error, created_at, delivered_at
		 FROM ingest_events WHERE id = $1`,
		id,
	).Scan(&event.ID, &event.MeetingID, &event.ChunkCount, &event.Status, &event.Retries, &errMsg, &event.CreatedAt, &event.DeliveredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	if errMsg.Valid {
		event.Error = errMsg.String
	}
	return &event, nil
}

// ClaimPending atomically moves up to limit pending events into the
// processing state and returns them. Concurrent claimers skip each
// other's locked rows, so an event is handed to at most one worker.
func (r *IngestEventRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.IngestEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM ingest_events
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE ingest_events
		 SET status = $3,
		     error = NULL,
		     delivered_at = NULL
		 FROM cte
		 WHERE ingest_events.id = cte.id
		 RETURNING ingest_events.id, ingest_events.meeting_id, ingest_events.chunk_count, ingest_events.status,
		           ingest_events.retries, ingest_events.error, ingest_events.created_at, ingest_events.delivered_at`,
		domain.IngestEventStatusPending, limit, domain.IngestEventStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.IngestEvent
	for rows.Next() {
		var event domain.IngestEvent
		var errMsg pgtype.Text
		if err := rows.Scan(&event.ID, &event.MeetingID, &event.ChunkCount, &event.Status, &event.Retries, &errMsg, &event.CreatedAt, &event.DeliveredAt); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			event.Error = errMsg.String
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

func (r *IngestEventRepository) UpdateStatus(ctx context.Context, id string, status domain.IngestEventStatus, errMsg string) error {
	var deliveredAt *time.Time
	if status == domain.IngestEventStatusCompleted {
		now := time.Now().UTC()
		deliveredAt = &now
	}

	var errPtr *string
	if errMsg != "" {
		errPtr = &errMsg
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE ingest_events SET status = $1, error = $2, delivered_at = $3 WHERE id = $4`,
		status, errPtr, deliveredAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *IngestEventRepository) IncrementRetries(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE ingest_events SET retries = retries + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
