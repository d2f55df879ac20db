package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/minutex/internal/domain"
	"github.com/veldt-labs/minutex/internal/service"
)

// MockIngestService is a mock implementation of IngestService
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

type multipartUpload struct {
	filename string
	content  []byte
	fields   map[string]string
}

func buildMultipartRequest(t *testing.T, upload multipartUpload) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if upload.filename != "" {
		part, err := writer.CreateFormFile("file", upload.filename)
		require.NoError(t, err)
		_, err = part.Write(upload.content)
		require.NoError(t, err)
	}

	for key, value := range upload.fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/ingest", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestIngestHandler_Ingest_Success(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewIngestHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(input service.IngestInput) bool {
		return input.MeetingID == "m1" &&
			input.Format == "docx" &&
			input.Topic == "planning" &&
			input.Department == "eng" &&
			!input.Replace &&
			string(input.Data) == "document bytes"
	})).Return(&service.IngestResult{MeetingID: "m1", ChunkCount: 3}, nil)

	req := buildMultipartRequest(t, multipartUpload{
		filename: "minutes.docx",
		content:  []byte("document bytes"),
		fields: map[string]string{
			"meeting_id": "m1",
			"topic":      "planning",
			"department": "eng",
		},
	})
	rec := httptest.NewRecorder()

	handler.Ingest(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data IngestResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "m1", body.Data.MeetingID)
	assert.Equal(t, 3, body.Data.ChunkCount)
	mockSvc.AssertExpectations(t)
}

func TestIngestHandler_Ingest_ReplaceFlag(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewIngestHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(input service.IngestInput) bool {
		return input.Replace
	})).Return(&service.IngestResult{MeetingID: "m1", ChunkCount: 1}, nil)

	req := buildMultipartRequest(t, multipartUpload{
		filename: "minutes.docx",
		content:  []byte("doc"),
		fields: map[string]string{
			"meeting_id": "m1",
			"replace":    "true",
		},
	})
	rec := httptest.NewRecorder()

	handler.Ingest(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	mockSvc.AssertExpectations(t)
}

func TestIngestHandler_Ingest_MissingFile(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewIngestHandler(mockSvc)

	req := buildMultipartRequest(t, multipartUpload{
		fields: map[string]string{"meeting_id": "m1"},
	})
	rec := httptest.NewRecorder()

	handler.Ingest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no file uploaded")
	mockSvc.AssertNotCalled(t, "Ingest")
}

func TestIngestHandler_Ingest_MissingMeetingID(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewIngestHandler(mockSvc)

	req := buildMultipartRequest(t, multipartUpload{
		filename: "minutes.docx",
		content:  []byte("doc"),
	})
	rec := httptest.NewRecorder()

	handler.Ingest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "meeting_id is required")
	mockSvc.AssertNotCalled(t, "Ingest")
}

func TestIngestHandler_Ingest_UnsupportedFormat(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewIngestHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.Anything).Return(nil, domain.ErrUnsupportedFormat)

	req := buildMultipartRequest(t, multipartUpload{
		filename: "minutes.pdf",
		content:  []byte("doc"),
		fields:   map[string]string{"meeting_id": "m1"},
	})
	rec := httptest.NewRecorder()

	handler.Ingest(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestIngestHandler_Ingest_PartialFailure(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewIngestHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.Anything).Return(nil, domain.NewPartialFailureError(2, 5, nil))

	req := buildMultipartRequest(t, multipartUpload{
		filename: "minutes.docx",
		content:  []byte("doc"),
		fields:   map[string]string{"meeting_id": "m1"},
	})
	rec := httptest.NewRecorder()

	handler.Ingest(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "inserted 2 of 5 chunks")
}
