package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/veldt-labs/minutex/internal/api"
	"github.com/veldt-labs/minutex/internal/service"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger uploads spill to temp files.
const maxMultipartMemory = 32 << 20

type IngestService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error)
}

type IngestHandler struct {
	svc IngestService
}

func NewIngestHandler(svc IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

type IngestResponse struct {
	MeetingID  string `json:"meeting_id"`
	ChunkCount int    `json:"chunk_count"`
}

func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	meetingID := r.FormValue("meeting_id")
	if strings.TrimSpace(meetingID) == "" {
		api.Error(w, http.StatusBadRequest, "meeting_id is required")
		return
	}

	format := strings.TrimPrefix(filepath.Ext(header.Filename), ".")

	input := service.IngestInput{
		Data:       data,
		Format:     format,
		MeetingID:  meetingID,
		Topic:      r.FormValue("topic"),
		Department: r.FormValue("department"),
		Replace:    r.FormValue("replace") == "true",
	}

	result, err := h.svc.Ingest(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, IngestResponse{
		MeetingID:  result.MeetingID,
		ChunkCount: result.ChunkCount,
	})
}
