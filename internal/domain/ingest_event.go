package domain

import (
	"fmt"
	"time"
)

// IngestEventStatus represents the delivery status of an ingest-completion event
type IngestEventStatus string

const (
	IngestEventStatusPending    IngestEventStatus = "pending"
	IngestEventStatusProcessing IngestEventStatus = "processing"
	IngestEventStatusCompleted  IngestEventStatus = "completed"
	IngestEventStatusFailed     IngestEventStatus = "failed"
)

// IngestEvent records that a meeting document finished ingestion. A
// background worker delivers pending events to the configured
// orchestration webhook.
type IngestEvent struct {
	ID          string
	MeetingID   string
	ChunkCount  int
	Status      IngestEventStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// NewIngestEvent creates a pending IngestEvent for a completed ingestion.
func NewIngestEvent(id, meetingID string, chunkCount int, createdAt time.Time) *IngestEvent {
	return &IngestEvent{
		ID:         id,
		MeetingID:  meetingID,
		ChunkCount: chunkCount,
		Status:     IngestEventStatusPending,
		CreatedAt:  createdAt,
	}
}

// ValidateIngestEvent validates an IngestEvent instance
func ValidateIngestEvent(e *IngestEvent) error {
	if e == nil {
		return fmt.Errorf("ingest event cannot be nil")
	}

	if e.ID == "" {
		return fmt.Errorf("ingest event ID is required")
	}

	if e.MeetingID == "" {
		return fmt.Errorf("ingest event MeetingID is required")
	}

	if e.ChunkCount < 0 {
		return fmt.Errorf("ingest event ChunkCount cannot be negative")
	}

	if !isValidIngestEventStatus(e.Status) {
		return fmt.Errorf("ingest event Status is invalid: %s", e.Status)
	}

	if e.Retries < 0 {
		return fmt.Errorf("ingest event Retries cannot be negative")
	}

	return nil
}

func isValidIngestEventStatus(s IngestEventStatus) bool {
	switch s {
	case IngestEventStatusPending, IngestEventStatusProcessing,
		IngestEventStatusCompleted, IngestEventStatusFailed:
		return true
	}
	return false
}
