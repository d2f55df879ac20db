package domain

import (
	"fmt"
	"strings"
	"time"
)

// Chunk is one persisted fragment of an ingested meeting document,
// together with its embedding vector and the metadata supplied at
// ingestion time.
type Chunk struct {
	MeetingID  string
	ChunkIndex int
	Text       string
	Embedding  []float32
	Topic      string
	Department string
	Date       time.Time
}

// NewChunk creates a Chunk with the ingestion timestamp set.
func NewChunk(meetingID string, index int, text string, embedding []float32, topic, department string, date time.Time) *Chunk {
	return &Chunk{
		MeetingID:  meetingID,
		ChunkIndex: index,
		Text:       text,
		Embedding:  embedding,
		Topic:      topic,
		Department: department,
		Date:       date,
	}
}

// ValidateChunk checks the invariants a chunk must satisfy before it is
// persisted: a meeting id, non-empty text, a non-negative index, and a
// non-empty embedding.
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if strings.TrimSpace(c.MeetingID) == "" {
		return fmt.Errorf("chunk MeetingID is required")
	}

	if c.ChunkIndex < 0 {
		return fmt.Errorf("chunk ChunkIndex cannot be negative")
	}

	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("chunk Text cannot be empty")
	}

	if len(c.Embedding) == 0 {
		return fmt.Errorf("chunk Embedding cannot be empty")
	}

	return nil
}
