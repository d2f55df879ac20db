package domain

import "time"

// MeetingSummary is the per-meeting aggregate returned by the listing
// endpoint. Topic and Department come from an arbitrary (first
// encountered) chunk of the group; MostRecentDate is the latest
// ingestion timestamp across the group's chunks.
type MeetingSummary struct {
	MeetingID      string
	ChunkCount     int
	Topic          string
	Department     string
	MostRecentDate time.Time
}
