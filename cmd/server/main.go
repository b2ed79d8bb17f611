package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docsage/internal/analyzer"
	"docsage/internal/api"
	"docsage/internal/chunker"
	"docsage/internal/config"
	"docsage/internal/docstore"
	"docsage/internal/embedder"
	"docsage/internal/llm"
	"docsage/internal/pipeline"
	"docsage/internal/qa"
	"docsage/internal/vectorindex"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// The Gemini client is optional: without a key the service runs in
	// heuristic-only mode.
	var gemini *llm.GeminiClient
	var client llm.Client
	if cfg.GeminiAPIKey != "" {
		gemini = llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
		client = gemini
		log.Info("gemini client enabled", "model", cfg.GeminiModel)
	} else {
		log.Warn("no GEMINI_API_KEY set, running with heuristic analysis only")
	}

	emb := embedder.NewHashEmbedder(cfg.EmbeddingDim)
	index := vectorindex.New(cfg.StoreDir, emb, log)
	store := docstore.New()
	engine := analyzer.New(client, log, cfg.MaxAnalysisChars, cfg.MinAITextLen)
	answerer := qa.New(index, client, log, cfg.MaxQuestionChars, cfg.DefaultTopK)
	p := pipeline.New(store, index, chunker.New(cfg.ChunkSize, cfg.ChunkOverlap), engine, answerer, log)

	srv := api.NewServer(p, client, gemini, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if gemini != nil {
			gemini.Close()
		}
	}()

	log.Info("starting docsage", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
