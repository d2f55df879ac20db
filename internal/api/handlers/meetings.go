package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veldt-labs/minutex/internal/api"
	"github.com/veldt-labs/minutex/internal/service"
)

type MeetingService interface {
	List(ctx context.Context) (*service.MeetingListing, error)
	Delete(ctx context.Context, meetingID string) (int, error)
	DocumentURL(ctx context.Context, meetingID string) (string, error)
}

type MeetingHandler struct {
	svc MeetingService
}

func NewMeetingHandler(svc MeetingService) *MeetingHandler {
	return &MeetingHandler{svc: svc}
}

type MeetingSummaryResponse struct {
	MeetingID      string `json:"meeting_id"`
	ChunkCount     int    `json:"chunk_count"`
	Topic          string `json:"topic,omitempty"`
	Department     string `json:"department,omitempty"`
	MostRecentDate string `json:"most_recent_date"`
}

type MeetingListResponse struct {
	TotalChunks int                       `json:"total_chunks"`
	Meetings    []*MeetingSummaryResponse `json:"meetings"`
}

type DeleteMeetingResponse struct {
	MeetingID string `json:"meeting_id"`
	Deleted   int    `json:"deleted"`
}

type DocumentURLResponse struct {
	DownloadURL string `json:"download_url"`
}

func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	meetings := make([]*MeetingSummaryResponse, len(listing.Meetings))
	for i, m := range listing.Meetings {
		meetings[i] = &MeetingSummaryResponse{
			MeetingID:      m.MeetingID,
			ChunkCount:     m.ChunkCount,
			Topic:          m.Topic,
			Department:     m.Department,
			MostRecentDate: m.MostRecentDate.UTC().Format(time.RFC3339),
		}
	}

	api.Success(w, http.StatusOK, MeetingListResponse{
		TotalChunks: listing.TotalChunks,
		Meetings:    meetings,
	})
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingID")
	if meetingID == "" {
		api.Error(w, http.StatusBadRequest, "meeting_id is required")
		return
	}

	deleted, err := h.svc.Delete(r.Context(), meetingID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteMeetingResponse{
		MeetingID: meetingID,
		Deleted:   deleted,
	})
}

func (h *MeetingHandler) Document(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingID")
	if meetingID == "" {
		api.Error(w, http.StatusBadRequest, "meeting_id is required")
		return
	}

	url, err := h.svc.DocumentURL(r.Context(), meetingID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DocumentURLResponse{DownloadURL: url})
}
