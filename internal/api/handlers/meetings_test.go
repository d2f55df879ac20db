package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/minutex/internal/domain"
	"github.com/veldt-labs/minutex/internal/service"
)

// MockMeetingService is a mock implementation of MeetingService
type MockMeetingService struct {
	mock.Mock
}

func (m *MockMeetingService) List(ctx context.Context) (*service.MeetingListing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MeetingListing), args.Error(1)
}

func (m *MockMeetingService) Delete(ctx context.Context, meetingID string) (int, error) {
	args := m.Called(ctx, meetingID)
	return args.Int(0), args.Error(1)
}

func (m *MockMeetingService) DocumentURL(ctx context.Context, meetingID string) (string, error) {
	args := m.Called(ctx, meetingID)
	return args.String(0), args.Error(1)
}

func meetingRouter(handler *MeetingHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/meetings", handler.List)
	r.Delete("/meetings/{meetingID}", handler.Delete)
	r.Get("/meetings/{meetingID}/document", handler.Document)
	return r
}

func TestMeetingHandler_List(t *testing.T) {
	mockSvc := new(MockMeetingService)
	handler := NewMeetingHandler(mockSvc)

	date := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	mockSvc.On("List", mock.Anything).Return(&service.MeetingListing{
		TotalChunks: 5,
		Meetings: []*domain.MeetingSummary{
			{MeetingID: "m2", ChunkCount: 3, Topic: "retro", Department: "eng", MostRecentDate: date},
			{MeetingID: "m1", ChunkCount: 2, MostRecentDate: date.Add(-time.Hour)},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings", nil)
	rec := httptest.NewRecorder()

	meetingRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data MeetingListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Data.TotalChunks)
	require.Len(t, body.Data.Meetings, 2)
	assert.Equal(t, "m2", body.Data.Meetings[0].MeetingID)
	assert.Equal(t, "retro", body.Data.Meetings[0].Topic)
	assert.Equal(t, "2026-03-14T10:00:00Z", body.Data.Meetings[0].MostRecentDate)
}

func TestMeetingHandler_List_NormalizesDateToUTC(t *testing.T) {
	mockSvc := new(MockMeetingService)
	handler := NewMeetingHandler(mockSvc)

	cet := time.FixedZone("CET", 3600)
	mockSvc.On("List", mock.Anything).Return(&service.MeetingListing{
		TotalChunks: 1,
		Meetings: []*domain.MeetingSummary{
			{MeetingID: "m1", ChunkCount: 1, MostRecentDate: time.Date(2026, 3, 14, 11, 0, 0, 0, cet)},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings", nil)
	rec := httptest.NewRecorder()

	meetingRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data MeetingListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Meetings, 1)
	assert.Equal(t, "2026-03-14T10:00:00Z", body.Data.Meetings[0].MostRecentDate)
}

func TestMeetingHandler_Delete(t *testing.T) {
	mockSvc := new(MockMeetingService)
	handler := NewMeetingHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "m1").Return(4, nil)

	req := httptest.NewRequest(http.MethodDelete, "/meetings/m1", nil)
	rec := httptest.NewRecorder()

	meetingRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data DeleteMeetingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "m1", body.Data.MeetingID)
	assert.Equal(t, 4, body.Data.Deleted)
	mockSvc.AssertExpectations(t)
}

func TestMeetingHandler_Delete_ZeroMatches(t *testing.T) {
	mockSvc := new(MockMeetingService)
	handler := NewMeetingHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "ghost").Return(0, nil)

	req := httptest.NewRequest(http.MethodDelete, "/meetings/ghost", nil)
	rec := httptest.NewRecorder()

	meetingRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data DeleteMeetingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Data.Deleted)
}

func TestMeetingHandler_Document(t *testing.T) {
	mockSvc := new(MockMeetingService)
	handler := NewMeetingHandler(mockSvc)

	mockSvc.On("DocumentURL", mock.Anything, "m1").Return("https://example.com/m1.docx", nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings/m1/document", nil)
	rec := httptest.NewRecorder()

	meetingRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data DocumentURLResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://example.com/m1.docx", body.Data.DownloadURL)
}

func TestMeetingHandler_Document_NotArchived(t *testing.T) {
	mockSvc := new(MockMeetingService)
	handler := NewMeetingHandler(mockSvc)

	mockSvc.On("DocumentURL", mock.Anything, "m1").Return("", domain.ErrArchiveNotFound)

	req := httptest.NewRequest(http.MethodGet, "/meetings/m1/document", nil)
	rec := httptest.NewRecorder()

	meetingRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
