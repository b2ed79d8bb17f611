// Package analyzer produces structured analyses of legal documents. A
// rule-based pass always runs and yields a complete result; when a
// language model client is available and the text is long enough, an AI
// pass overlays richer content on top of it.
package analyzer

import (
	"context"
	"log/slog"
	"time"

	"docsage/internal/llm"
)

type Engine struct {
	client     llm.Client
	log        *slog.Logger
	maxChars   int
	minTextLen int
}

// New builds an Engine. client may be nil, in which case every analysis
// is heuristic-only.
func New(client llm.Client, log *slog.Logger, maxChars, minTextLen int) *Engine {
	if maxChars <= 0 {
		maxChars = 8000
	}
	if minTextLen <= 0 {
		minTextLen = 50
	}
	return &Engine{client: client, log: log, maxChars: maxChars, minTextLen: minTextLen}
}

// Analyze never returns nil and never fails: AI errors degrade to the
// heuristic result with AIError set.
func (e *Engine) Analyze(ctx context.Context, docID, text string) *Result {
	res := heuristicAnalyze(docID, text)
	res.AnalyzedAt = time.Now().UTC()

	if e.client == nil {
		return res
	}
	if len(text) < e.minTextLen {
		e.log.Debug("text below AI threshold, heuristic analysis only",
			"doc_id", docID, "len", len(text))
		return res
	}

	if err := aiAnalyze(ctx, e.client, res, text, e.maxChars); err != nil {
		e.log.Warn("AI analysis failed, serving heuristic result",
			"doc_id", docID, "error", err)
		res.AIError = err.Error()
		return res
	}
	e.log.Info("AI analysis merged", "doc_id", docID, "risks", len(res.Risks))
	return res
}
