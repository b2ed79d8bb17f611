package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"docsage/internal/llm"
)

// handleTestAI issues one live generation to verify model connectivity.
func (s *Server) handleTestAI(w http.ResponseWriter, r *http.Request) {
	if s.client == nil {
		jsonError(w, "ai not configured", http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	reply, err := s.client.Generate(ctx, "Respond with the single word: OK")
	if err != nil {
		jsonError(w, "ai test failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"reply":  llm.Clean(reply),
	})
}

func (s *Server) handleIndexStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.pipeline.IndexStats())
}

func (s *Server) handleIndexRebuild(w http.ResponseWriter, r *http.Request) {
	stats, err := s.pipeline.RebuildIndex()
	if err != nil {
		jsonError(w, "index rebuild failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"rebuilt": true,
		"index":   stats,
	})
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.gemini == nil || s.gemini.Stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model": s.gemini.Model(),
		"stats": s.gemini.Stats.Snapshot(),
	})
}
