package vectorindex

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"docsage/internal/embedder"
)

// ErrPersist marks operations that mutated the in-memory index but failed
// to reach durable storage. The in-memory state stays authoritative; the
// error exists for visibility.
var ErrPersist = errors.New("index persistence failed")

// SearchHit is one ranked result from a similarity search.
type SearchHit struct {
	DocumentID  string  `json:"document_id"`
	ChunkIndex  int     `json:"chunk_index"`
	GlobalIndex int     `json:"global_index"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
}

// docEntry records the contiguous global-index range a document owns,
// alongside its verbatim chunk texts.
type docEntry struct {
	StartIdx int               `json:"start_idx"`
	EndIdx   int               `json:"end_idx"`
	Chunks   []string          `json:"chunks"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Index is a flat inner-product vector index over document chunks, with
// per-document range bookkeeping and logical deletion. Vectors are
// append-only: deleting a document drops its range but leaves the rows
// orphaned until an explicit Rebuild. Global indices are assigned
// monotonically and never reused between rebuilds.
type Index struct {
	mu   sync.RWMutex
	emb  embedder.Embedder
	dim  int
	rows [][]float32
	docs map[string]*docEntry
	dir  string
	log  *slog.Logger
}

// New opens or creates an index persisted under dir. Missing or corrupt
// stored state degrades to an empty index rather than failing startup.
func New(dir string, emb embedder.Embedder, log *slog.Logger) *Index {
	idx := &Index{
		emb:  emb,
		dim:  emb.Dimension(),
		docs: make(map[string]*docEntry),
		dir:  dir,
		log:  log,
	}
	if err := idx.load(); err != nil {
		log.Warn("vector index load failed, starting empty", "dir", dir, "error", err)
		idx.rows = nil
		idx.docs = make(map[string]*docEntry)
	}
	return idx
}

// Add embeds chunks and appends them to the index as one contiguous range
// owned by docID. Embedding runs before any mutation, so a failure commits
// nothing. Re-adding an existing document replaces its range; the old rows
// become orphaned. A persistence failure is reported via ErrPersist but
// does not roll back the in-memory state.
func (x *Index) Add(docID string, chunks []string, metadata map[string]string) error {
	if docID == "" {
		return errors.New("document id is required")
	}
	if len(chunks) == 0 {
		return errors.New("no chunks to add")
	}

	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vec, err := x.emb.Embed(chunk)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		if len(vec) != x.dim {
			return fmt.Errorf("embed chunk %d: dimension %d, index has %d", i, len(vec), x.dim)
		}
		vectors[i] = vec
	}

	x.mu.Lock()
	start := len(x.rows)
	x.rows = append(x.rows, vectors...)
	x.docs[docID] = &docEntry{
		StartIdx: start,
		EndIdx:   start + len(chunks),
		Chunks:   append([]string(nil), chunks...),
		Metadata: metadata,
	}
	err := x.saveLocked()
	x.mu.Unlock()

	if err != nil {
		x.log.Error("index save failed after add", "doc_id", docID, "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Search embeds the query and returns up to topK live chunks in
// descending score order, ties broken by ascending global index.
// An empty docID searches all documents; otherwise results are limited
// to that document's range. Rows orphaned by deletion never match.
func (x *Index) Search(query string, topK int, docID string) ([]SearchHit, error) {
	if topK <= 0 {
		topK = 5
	}
	qvec, err := x.emb.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var hits []SearchHit
	for id, entry := range x.docs {
		if docID != "" && id != docID {
			continue
		}
		for local := 0; local < len(entry.Chunks); local++ {
			global := entry.StartIdx + local
			if global >= len(x.rows) {
				continue
			}
			hits = append(hits, SearchHit{
				DocumentID:  id,
				ChunkIndex:  local,
				GlobalIndex: global,
				Text:        entry.Chunks[local],
				Score:       dot(x.rows[global], qvec),
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].GlobalIndex < hits[j].GlobalIndex
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Delete drops docID's range. The underlying rows stay in place until the
// next Rebuild, but Search will never return them. Deleting an unknown
// document is a no-op.
func (x *Index) Delete(docID string) error {
	x.mu.Lock()
	if _, ok := x.docs[docID]; !ok {
		x.mu.Unlock()
		return nil
	}
	delete(x.docs, docID)
	err := x.saveLocked()
	x.mu.Unlock()

	if err != nil {
		x.log.Error("index save failed after delete", "doc_id", docID, "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Rebuild compacts the index by re-adding only live rows in original
// order, reclaiming space left by deleted documents. Global indices are
// reassigned from zero.
func (x *Index) Rebuild() error {
	x.mu.Lock()

	ids := make([]string, 0, len(x.docs))
	for id := range x.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return x.docs[ids[i]].StartIdx < x.docs[ids[j]].StartIdx
	})

	rows := make([][]float32, 0, len(x.rows))
	docs := make(map[string]*docEntry, len(ids))
	for _, id := range ids {
		old := x.docs[id]
		start := len(rows)
		rows = append(rows, x.rows[old.StartIdx:old.EndIdx]...)
		docs[id] = &docEntry{
			StartIdx: start,
			EndIdx:   start + len(old.Chunks),
			Chunks:   old.Chunks,
			Metadata: old.Metadata,
		}
	}
	x.rows = rows
	x.docs = docs
	err := x.saveLocked()
	x.mu.Unlock()

	if err != nil {
		x.log.Error("index save failed after rebuild", "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Chunks returns the verbatim chunk texts for a live document.
func (x *Index) Chunks(docID string) ([]string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	entry, ok := x.docs[docID]
	if !ok {
		return nil, false
	}
	return append([]string(nil), entry.Chunks...), true
}

// Has reports whether docID has a live range in the index.
func (x *Index) Has(docID string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.docs[docID]
	return ok
}

// Stats describes index occupancy.
type Stats struct {
	Documents int `json:"documents"`
	LiveRows  int `json:"live_rows"`
	TotalRows int `json:"total_rows"`
	Dimension int `json:"dimension"`
}

func (x *Index) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	live := 0
	for _, entry := range x.docs {
		live += len(entry.Chunks)
	}
	return Stats{
		Documents: len(x.docs),
		LiveRows:  live,
		TotalRows: len(x.rows),
		Dimension: x.dim,
	}
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
