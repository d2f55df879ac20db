package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/minutex/internal/domain"
)

// MockMeetingRepo mocks the meeting aggregate store
type MockMeetingRepo struct {
	mock.Mock
}

func (m *MockMeetingRepo) ListMeetings(ctx context.Context) ([]*domain.MeetingSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MeetingSummary), args.Error(1)
}

func (m *MockMeetingRepo) CountAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockMeetingRepo) DeleteByMeeting(ctx context.Context, meetingID string) (int, error) {
	args := m.Called(ctx, meetingID)
	return args.Int(0), args.Error(1)
}

// MockMeetingArchive mocks the document archive
type MockMeetingArchive struct {
	mock.Mock
}

func (m *MockMeetingArchive) DownloadURL(ctx context.Context, meetingID string) (string, error) {
	args := m.Called(ctx, meetingID)
	return args.String(0), args.Error(1)
}

func (m *MockMeetingArchive) Delete(ctx context.Context, meetingID string) error {
	args := m.Called(ctx, meetingID)
	return args.Error(0)
}

func TestMeetingService_List(t *testing.T) {
	mockRepo := new(MockMeetingRepo)
	svc := NewMeetingService(mockRepo)

	summaries := []*domain.MeetingSummary{
		{MeetingID: "m2", ChunkCount: 3, Topic: "retro", MostRecentDate: time.Now().UTC()},
		{MeetingID: "m1", ChunkCount: 2, Topic: "planning", MostRecentDate: time.Now().UTC().Add(-time.Hour)},
	}

	mockRepo.On("CountAll", mock.Anything).Return(5, nil)
	mockRepo.On("ListMeetings", mock.Anything).Return(summaries, nil)

	listing, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, listing.TotalChunks)
	assert.Equal(t, summaries, listing.Meetings)
}

func TestMeetingService_Delete_TrimsMeetingID(t *testing.T) {
	mockRepo := new(MockMeetingRepo)
	svc := NewMeetingService(mockRepo)

	mockRepo.On("DeleteByMeeting", mock.Anything, "m1").Return(4, nil)

	deleted, err := svc.Delete(context.Background(), " m1 ")

	require.NoError(t, err)
	assert.Equal(t, 4, deleted)
	mockRepo.AssertExpectations(t)
}

func TestMeetingService_Delete_MissingMeetingID(t *testing.T) {
	svc := NewMeetingService(new(MockMeetingRepo))

	_, err := svc.Delete(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrMissingMeetingID)
}

func TestMeetingService_Delete_RemovesArchivedDocument(t *testing.T) {
	mockRepo := new(MockMeetingRepo)
	mockArchive := new(MockMeetingArchive)
	svc := NewMeetingServiceWithArchive(mockRepo, mockArchive)

	mockRepo.On("DeleteByMeeting", mock.Anything, "m1").Return(3, nil)
	mockArchive.On("Delete", mock.Anything, "m1").Return(nil)

	deleted, err := svc.Delete(context.Background(), "m1")

	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	mockArchive.AssertExpectations(t)
}

func TestMeetingService_Delete_ArchiveFailureIsNotFatal(t *testing.T) {
	mockRepo := new(MockMeetingRepo)
	mockArchive := new(MockMeetingArchive)
	svc := NewMeetingServiceWithArchive(mockRepo, mockArchive)

	mockRepo.On("DeleteByMeeting", mock.Anything, "m1").Return(2, nil)
	mockArchive.On("Delete", mock.Anything, "m1").Return(assert.AnError)

	deleted, err := svc.Delete(context.Background(), "m1")

	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
}

func TestMeetingService_Delete_ZeroMatchesIsNotAnError(t *testing.T) {
	mockRepo := new(MockMeetingRepo)
	svc := NewMeetingService(mockRepo)

	mockRepo.On("DeleteByMeeting", mock.Anything, "missing").Return(0, nil)

	deleted, err := svc.Delete(context.Background(), "missing")

	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestMeetingService_DocumentURL(t *testing.T) {
	mockRepo := new(MockMeetingRepo)
	mockArchive := new(MockMeetingArchive)
	svc := NewMeetingServiceWithArchive(mockRepo, mockArchive)

	mockArchive.On("DownloadURL", mock.Anything, "m1").Return("https://example.com/m1.docx", nil)

	url, err := svc.DocumentURL(context.Background(), "m1")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/m1.docx", url)
}

func TestMeetingService_DocumentURL_NoArchiveConfigured(t *testing.T) {
	svc := NewMeetingService(new(MockMeetingRepo))

	_, err := svc.DocumentURL(context.Background(), "m1")

	assert.ErrorIs(t, err, domain.ErrArchiveNotFound)
}
