package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veldt-labs/minutex/internal/api"
	"github.com/veldt-labs/minutex/internal/service"
)

type QueryService interface {
	Search(ctx context.Context, input service.QueryInput) ([]*service.SearchMatch, error)
}

type QueryHandler struct {
	svc QueryService
}

func NewQueryHandler(svc QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type QueryRequest struct {
	Query         string `json:"query"`
	K             int    `json:"k,omitempty"`
	CandidatePool int    `json:"candidate_pool,omitempty"`
	MeetingID     string `json:"meeting_id,omitempty"`
}

type MatchResponse struct {
	MeetingID string  `json:"meeting_id"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
}

type QueryResponse struct {
	Matches []*MatchResponse `json:"matches"`
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.QueryInput{
		Query:         req.Query,
		K:             req.K,
		CandidatePool: req.CandidatePool,
		MeetingID:     req.MeetingID,
	}

	matches, err := h.svc.Search(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*MatchResponse, len(matches))
	for i, m := range matches {
		responses[i] = &MatchResponse{
			MeetingID: m.MeetingID,
			Text:      m.Text,
			Score:     m.Score,
		}
	}

	api.Success(w, http.StatusOK, QueryResponse{Matches: responses})
}
