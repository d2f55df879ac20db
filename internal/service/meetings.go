package service

import (
	"context"
	"log"
	"strings"

	"github.com/veldt-labs/minutex/internal/domain"
)

// MeetingRepository defines the aggregate store operations for meetings.
type MeetingRepository interface {
	ListMeetings(ctx context.Context) ([]*domain.MeetingSummary, error)
	CountAll(ctx context.Context) (int, error)
	DeleteByMeeting(ctx context.Context, meetingID string) (int, error)
}

// MeetingArchive resolves and removes a meeting's archived source
// document.
type MeetingArchive interface {
	DownloadURL(ctx context.Context, meetingID string) (string, error)
	Delete(ctx context.Context, meetingID string) error
}

// MeetingListing is the aggregate view over all stored meetings.
type MeetingListing struct {
	TotalChunks int
	Meetings    []*domain.MeetingSummary
}

// MeetingService serves the meeting-level operations: listing,
// deletion, and archived-document lookup.
type MeetingService struct {
	repo    MeetingRepository
	archive MeetingArchive
}

func NewMeetingService(repo MeetingRepository) *MeetingService {
	return &MeetingService{repo: repo}
}

func NewMeetingServiceWithArchive(repo MeetingRepository, archive MeetingArchive) *MeetingService {
	return &MeetingService{repo: repo, archive: archive}
}

// List returns per-meeting summaries ordered by most recent ingestion,
// together with the total chunk count across all meetings.
func (s *MeetingService) List(ctx context.Context) (*MeetingListing, error) {
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	meetings, err := s.repo.ListMeetings(ctx)
	if err != nil {
		return nil, err
	}

	return &MeetingListing{TotalChunks: total, Meetings: meetings}, nil
}

// Delete removes every chunk belonging to the meeting and returns the
// removed count. A meeting with no chunks is not an error; the count is
// simply zero.
func (s *MeetingService) Delete(ctx context.Context, meetingID string) (int, error) {
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return 0, domain.ErrMissingMeetingID
	}

	deleted, err := s.repo.DeleteByMeeting(ctx, meetingID)
	if err != nil {
		return 0, err
	}

	// The chunk store is authoritative; an orphaned archive object is
	// harmless, so archive cleanup is best effort.
	if s.archive != nil {
		if err := s.archive.Delete(ctx, meetingID); err != nil {
			log.Printf("failed to delete archived document for meeting %s: %v", meetingID, err)
		}
	}

	return deleted, nil
}

// DocumentURL returns a download URL for the meeting's archived source
// document, or domain.ErrArchiveNotFound when archiving is not
// configured or nothing was archived.
func (s *MeetingService) DocumentURL(ctx context.Context, meetingID string) (string, error) {
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return "", domain.ErrMissingMeetingID
	}

	if s.archive == nil {
		return "", domain.ErrArchiveNotFound
	}

	return s.archive.DownloadURL(ctx, meetingID)
}
