package docstore

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a document id has no record.
var ErrNotFound = errors.New("document not found")

// Status tracks a document through its lifecycle.
type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusAnalyzing Status = "analyzing"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Record is the system of record for one uploaded document: the verbatim
// extracted text, its chunk sequence, and processing state. Analysis is
// derived data attached after the fact and destroyed with the record.
type Record struct {
	ID        string    `json:"document_id"`
	Filename  string    `json:"filename"`
	Text      string    `json:"-"`
	Chunks    []string  `json:"-"`
	WordCount int       `json:"word_count"`
	CharCount int       `json:"character_count"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Analysis holds the most recent analysis result, if any. Stored as
	// an opaque value so the store stays free of analyzer types.
	Analysis any `json:"-"`
}

// Store is a thread-safe in-memory document registry with an explicit
// lifecycle: created empty, populated via Put, emptied via Delete.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Record
}

func New() *Store {
	return &Store{docs: make(map[string]*Record)}
}

// Put inserts or replaces a record.
func (s *Store) Put(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[rec.ID] = rec
}

// Get returns the record for id, or ErrNotFound.
func (s *Store) Get(id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Delete removes the record for id. Deleting an unknown id returns
// ErrNotFound so callers can report it; nothing is mutated in that case.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// SetStatus transitions the record's processing status, recording the
// error text when the status is StatusError.
func (s *Store) SetStatus(id string, status Status, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	rec.Error = errText
	return nil
}

// SetAnalysis attaches (or overwrites) the analysis result for id.
func (s *Store) SetAnalysis(id string, analysis any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	rec.Analysis = analysis
	return nil
}

// List returns all records ordered by creation time, oldest first.
func (s *Store) List() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.docs))
	for _, rec := range s.docs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
