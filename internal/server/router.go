package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veldt-labs/minutex/internal/api"
	"github.com/veldt-labs/minutex/internal/api/handlers"
	"github.com/veldt-labs/minutex/internal/api/middleware"
)

type RouterConfig struct {
	IngestHandler  *handlers.IngestHandler
	QueryHandler   *handlers.QueryHandler
	MeetingHandler *handlers.MeetingHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Uploads are whole documents, so the cap is larger than a typical
	// JSON API would allow.
	const maxBodyBytes int64 = 25 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/ingest", cfg.IngestHandler.Ingest)
	r.Post("/query", cfg.QueryHandler.Query)

	r.Route("/meetings", func(r chi.Router) {
		r.Get("/", cfg.MeetingHandler.List)
		r.Delete("/{meetingID}", cfg.MeetingHandler.Delete)
		r.Get("/{meetingID}/document", cfg.MeetingHandler.Document)
	})

	return r
}
