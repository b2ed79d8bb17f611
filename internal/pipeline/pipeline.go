// Package pipeline coordinates the document lifecycle: ingest text into
// chunks and vectors, run analysis, answer questions, and tear documents
// down again. It is the single owner of cross-package consistency
// between the docstore and the vector index.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docsage/internal/analyzer"
	"docsage/internal/chunker"
	"docsage/internal/docstore"
	"docsage/internal/qa"
	"docsage/internal/vectorindex"
)

var ErrEmptyDocument = errors.New("document has no extractable text")

// UploadResult reports a successful ingestion.
type UploadResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	WordCount  int    `json:"word_count"`
}

type Pipeline struct {
	store    *docstore.Store
	index    *vectorindex.Index
	chunks   *chunker.Chunker
	engine   *analyzer.Engine
	answerer *qa.Answerer
	log      *slog.Logger
}

func New(store *docstore.Store, index *vectorindex.Index, chunks *chunker.Chunker,
	engine *analyzer.Engine, answerer *qa.Answerer, log *slog.Logger) *Pipeline {
	return &Pipeline{
		store:    store,
		index:    index,
		chunks:   chunks,
		engine:   engine,
		answerer: answerer,
		log:      log,
	}
}

// ProcessDocument registers extracted text under a fresh document ID,
// chunks it, and indexes the chunks. Blank text is stored with a
// placeholder chunk so the document stays addressable. A persistence
// failure leaves the in-memory state usable and is surfaced in logs
// only.
func (p *Pipeline) ProcessDocument(text, filename string) (*UploadResult, error) {
	id := uuid.NewString()
	chunks := p.chunks.Split(text)

	rec := &docstore.Record{
		ID:        id,
		Filename:  filename,
		Text:      text,
		Chunks:    chunks,
		WordCount: len(strings.Fields(text)),
		CharCount: len(text),
		Status:    docstore.StatusUploaded,
		CreatedAt: time.Now().UTC(),
	}
	p.store.Put(rec)

	if err := p.index.Add(id, chunks, map[string]string{"filename": filename}); err != nil {
		if errors.Is(err, vectorindex.ErrPersist) {
			p.log.Warn("index updated but not persisted", "doc_id", id, "error", err)
		} else {
			// Indexing failed outright; roll the record back.
			_ = p.store.Delete(id)
			return nil, fmt.Errorf("index document: %w", err)
		}
	}

	p.log.Info("document ingested",
		"doc_id", id, "filename", filename,
		"chunks", len(chunks), "words", rec.WordCount)
	return &UploadResult{
		DocumentID: id,
		Filename:   filename,
		ChunkCount: len(chunks),
		WordCount:  rec.WordCount,
	}, nil
}

// AnalyzeDocument runs the analysis engine over a stored document and
// attaches the result to its record. The record moves through analyzing
// to completed; only a missing document produces the error state here,
// since analysis itself cannot fail.
func (p *Pipeline) AnalyzeDocument(ctx context.Context, docID string) (*analyzer.Result, error) {
	rec, err := p.store.Get(docID)
	if err != nil {
		return nil, err
	}
	if err := p.store.SetStatus(docID, docstore.StatusAnalyzing, ""); err != nil {
		return nil, err
	}

	res := p.engine.Analyze(ctx, docID, rec.Text)
	if err := p.store.SetAnalysis(docID, res); err != nil {
		return nil, err
	}
	if err := p.store.SetStatus(docID, docstore.StatusCompleted, ""); err != nil {
		return nil, err
	}
	return res, nil
}

// AnswerQuestion resolves a question against a document. The answerer
// validates the question before any lookup and locates the document via
// the index, so documents whose chunks survived a restart stay
// answerable even when the in-memory record is gone.
func (p *Pipeline) AnswerQuestion(ctx context.Context, docID, question string) (*qa.Answer, error) {
	return p.answerer.Answer(ctx, docID, question)
}

// SuggestQuestions returns question prompts for a stored document,
// analyzing it first if no analysis is attached yet.
func (p *Pipeline) SuggestQuestions(ctx context.Context, docID string) ([]string, error) {
	rec, err := p.store.Get(docID)
	if err != nil {
		return nil, err
	}
	res, _ := rec.Analysis.(*analyzer.Result)
	if res == nil {
		res, err = p.AnalyzeDocument(ctx, docID)
		if err != nil {
			return nil, err
		}
	}
	return qa.SuggestQuestions(res), nil
}

// DeleteDocument removes a document from both the store and the index.
// A document known to either side is deletable: index vectors that
// outlived their in-memory record (a restart, for instance) are still
// reclaimed. The record is removed even when the index cannot persist
// the removal.
func (p *Pipeline) DeleteDocument(docID string) error {
	storeErr := p.store.Delete(docID)
	if storeErr != nil && !errors.Is(storeErr, docstore.ErrNotFound) {
		return storeErr
	}
	if storeErr != nil && !p.index.Has(docID) {
		return storeErr
	}
	if err := p.index.Delete(docID); err != nil {
		if errors.Is(err, vectorindex.ErrPersist) {
			p.log.Warn("index deletion not persisted", "doc_id", docID, "error", err)
			return nil
		}
		return fmt.Errorf("remove document vectors: %w", err)
	}
	return nil
}

// MarkExtractionError moves a document to the error state, keeping the
// failure text on its record.
func (p *Pipeline) MarkExtractionError(docID, errText string) error {
	return p.store.SetStatus(docID, docstore.StatusError, errText)
}

// RebuildIndex compacts the vector index, reclaiming rows orphaned by
// deletions and re-uploads.
func (p *Pipeline) RebuildIndex() (vectorindex.Stats, error) {
	err := p.index.Rebuild()
	return p.index.Stats(), err
}

// IndexStats reports vector index occupancy.
func (p *Pipeline) IndexStats() vectorindex.Stats {
	return p.index.Stats()
}

// Documents lists all stored records in upload order.
func (p *Pipeline) Documents() []*docstore.Record {
	return p.store.List()
}

// Document fetches one record.
func (p *Pipeline) Document(docID string) (*docstore.Record, error) {
	return p.store.Get(docID)
}
