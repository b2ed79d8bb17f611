// Package api exposes the document service over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docsage/internal/config"
	"docsage/internal/llm"
	"docsage/internal/pipeline"
)

// Server is the HTTP API server for docsage.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	client   llm.Client
	gemini   *llm.GeminiClient
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. client drives the
// AI connectivity check and gemini the latency stats; both may be nil
// when the service runs without a model.
func NewServer(p *pipeline.Pipeline, client llm.Client, gemini *llm.GeminiClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		pipeline: p,
		client:   client,
		gemini:   gemini,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/api/health", s.handleHealth)

	r.Post("/api/upload", s.handleUpload)
	r.Post("/api/analyze/{docID}", s.handleAnalyze)
	r.Post("/api/question", s.handleQuestion)

	r.Get("/api/documents", s.handleListDocuments)
	r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
	r.Post("/api/documents/{docID}/prompts", s.handlePrompts)

	r.Get("/api/test-ai", s.handleTestAI)
	r.Get("/api/stats/llm", s.handleLLMStats)
	r.Get("/api/stats/index", s.handleIndexStats)
	r.Post("/api/index/rebuild", s.handleIndexRebuild)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
