package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Gemini analysis
	GeminiAPIKey string
	GeminiModel  string
	LLMTimeout   time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	EmbeddingDim int
	DefaultTopK  int

	// Analysis
	MaxAnalysisChars int
	MaxQuestionChars int
	MinAITextLen     int

	// Storage
	StoreDir string

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-1.5-flash"),
		LLMTimeout:   envDuration("LLM_TIMEOUT", 60*time.Second),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ChunkSize:    envInt("CHUNK_SIZE", 1000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 200),

		EmbeddingDim: envInt("EMBEDDING_DIM", 384),
		DefaultTopK:  envInt("DEFAULT_TOP_K", 5),

		MaxAnalysisChars: envInt("MAX_ANALYSIS_CHARS", 8000),
		MaxQuestionChars: envInt("MAX_QUESTION_CHARS", 6000),
		MinAITextLen:     envInt("MIN_AI_TEXT_LEN", 50),

		StoreDir: envOr("STORE_DIR", filepath.Join("data", "vector_store")),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 5
	}
	if cfg.EmbeddingDim <= 0 {
		cfg.EmbeddingDim = 384
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxAnalysisChars <= 0 {
		cfg.MaxAnalysisChars = 8000
	}
	if cfg.MaxQuestionChars <= 0 {
		cfg.MaxQuestionChars = 6000
	}
	if cfg.MinAITextLen <= 0 {
		cfg.MinAITextLen = 50
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 60 * time.Second
	}

	return cfg
}

// Validate checks settings that have no usable fallback. The Gemini key is
// deliberately not required: without it the service runs heuristic-only.
func (c Config) Validate() error {
	if c.StoreDir == "" {
		return fmt.Errorf("STORE_DIR must not be empty")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
