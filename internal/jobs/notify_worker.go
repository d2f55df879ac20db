package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/veldt-labs/minutex/internal/domain"
)

const (
	// MaxRetries is the maximum number of delivery attempts per event
	MaxRetries = 3

	claimBatchSize = 100

	defaultRequestTimeout = 10 * time.Second
)

// IngestEventRepository defines the interface for ingest event persistence
type IngestEventRepository interface {
	// ClaimPending retrieves and claims pending ingest events
	ClaimPending(ctx context.Context, limit int) ([]*domain.IngestEvent, error)

	// UpdateStatus updates the status of an ingest event
	UpdateStatus(ctx context.Context, id string, status domain.IngestEventStatus, errMsg string) error

	// IncrementRetries increments the retry count for an event
	IncrementRetries(ctx context.Context, id string) error
}

// ingestNotification is the webhook payload sent per delivered event.
type ingestNotification struct {
	EventID    string    `json:"event_id"`
	MeetingID  string    `json:"meeting_id"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotifyWorker delivers ingest completion events to a webhook endpoint
type NotifyWorker struct {
	repo       IngestEventRepository
	webhookURL string
	client     *http.Client
}

// NewNotifyWorker creates a new NotifyWorker instance
func NewNotifyWorker(repo IngestEventRepository, webhookURL string) *NotifyWorker {
	return &NotifyWorker{
		repo:       repo,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: defaultRequestTimeout},
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *NotifyWorker) ProcessJobs(ctx context.Context) error {
	events, err := w.repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending events: %w", err)
	}

	if len(events) == 0 {
		return nil
	}

	log.Printf("Delivering %d pending ingest events", len(events))

	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			log.Printf("Error processing event %s: %v", event.ID, err)
		}
	}

	return nil
}

func (w *NotifyWorker) processEvent(ctx context.Context, event *domain.IngestEvent) error {
	if err := w.deliver(ctx, event); err != nil {
		return w.handleEventFailure(ctx, event, err)
	}

	if err := w.repo.UpdateStatus(ctx, event.ID, domain.IngestEventStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update event status to completed: %w", err)
	}

	log.Printf("Event %s delivered for meeting %s", event.ID, event.MeetingID)
	return nil
}

func (w *NotifyWorker) deliver(ctx context.Context, event *domain.IngestEvent) error {
	payload, err := json.Marshal(ingestNotification{
		EventID:    event.ID,
		MeetingID:  event.MeetingID,
		ChunkCount: event.ChunkCount,
		CreatedAt:  event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// handleEventFailure handles a failed delivery with retry logic
func (w *NotifyWorker) handleEventFailure(ctx context.Context, event *domain.IngestEvent, deliveryErr error) error {
	log.Printf("Event %s delivery failed: %v", event.ID, deliveryErr)

	if err := w.repo.IncrementRetries(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if event.Retries+1 >= MaxRetries {
		log.Printf("Event %s exceeded max retries (%d), marking as failed", event.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", deliveryErr)
		if err := w.repo.UpdateStatus(ctx, event.ID, domain.IngestEventStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update event status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Event %s will be retried (attempt %d/%d)", event.ID, event.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", event.Retries+1, deliveryErr)
	if err := w.repo.UpdateStatus(ctx, event.ID, domain.IngestEventStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset event status to pending: %w", err)
	}

	return nil
}
