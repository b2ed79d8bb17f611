package vectorindex

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"docsage/internal/embedder"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	return New(t.TempDir(), embedder.NewHashEmbedder(384), testLogger())
}

var contractChunks = []string{
	"This Employment Agreement sets the Employee salary at $5000 per month.",
	"Either party may terminate with 30 days notice.",
	"The Employee agrees to keep proprietary information confidential.",
}

var leaseChunks = []string{
	"The monthly rent for the premises is $2500 due on the first.",
	"The tenant shall maintain the premises in good condition.",
}

func TestSearch_ExactChunkRanksFirst(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Add("doc-1", contractChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for _, chunk := range contractChunks {
		hits, err := idx.Search(chunk, 3, "doc-1")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) == 0 {
			t.Fatalf("no hits for %q", chunk)
		}
		if hits[0].Text != chunk {
			t.Errorf("top hit %q, want %q", hits[0].Text, chunk)
		}
		if math.Abs(hits[0].Score-1.0) > 1e-4 {
			t.Errorf("top hit score %f, want ~1.0", hits[0].Score)
		}
	}
}

func TestSearch_DescendingScoresStableTies(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Add("doc-1", contractChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Add("doc-2", leaseChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	hits, err := idx.Search("salary and rent payments", 10, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != len(contractChunks)+len(leaseChunks) {
		t.Fatalf("expected %d hits, got %d", len(contractChunks)+len(leaseChunks), len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("hit %d score %f above predecessor %f", i, hits[i].Score, hits[i-1].Score)
		}
		if hits[i].Score == hits[i-1].Score && hits[i].GlobalIndex < hits[i-1].GlobalIndex {
			t.Errorf("tie at %d broken out of global-index order", i)
		}
	}
}

func TestSearch_TopKLimit(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Add("doc-1", contractChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	hits, err := idx.Search("employee", 2, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) > 2 {
		t.Errorf("expected at most 2 hits, got %d", len(hits))
	}
}

func TestDelete_ExcludesDocumentWithoutReload(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Add("doc-1", contractChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Add("doc-2", leaseChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Delete("doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	hits, err := idx.Search("employee salary termination", 10, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, h := range hits {
		if h.DocumentID == "doc-1" {
			t.Errorf("deleted document surfaced in results: %q", h.Text)
		}
	}

	// Rows are orphaned, not reclaimed, until a rebuild.
	st := idx.Stats()
	if st.TotalRows != len(contractChunks)+len(leaseChunks) {
		t.Errorf("total rows %d, want %d", st.TotalRows, len(contractChunks)+len(leaseChunks))
	}
	if st.LiveRows != len(leaseChunks) {
		t.Errorf("live rows %d, want %d", st.LiveRows, len(leaseChunks))
	}
}

func TestDelete_SurvivorBehavesAsIfAlone(t *testing.T) {
	emb := embedder.NewHashEmbedder(384)
	both := New(t.TempDir(), emb, testLogger())
	if err := both.Add("doc-1", contractChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := both.Add("doc-2", leaseChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := both.Delete("doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	alone := New(t.TempDir(), emb, testLogger())
	if err := alone.Add("doc-2", leaseChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	query := "when is the rent due"
	gotBoth, err := both.Search(query, 5, "doc-2")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	gotAlone, err := alone.Search(query, 5, "doc-2")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(gotBoth) != len(gotAlone) {
		t.Fatalf("hit counts differ: %d vs %d", len(gotBoth), len(gotAlone))
	}
	for i := range gotBoth {
		if gotBoth[i].Text != gotAlone[i].Text || gotBoth[i].Score != gotAlone[i].Score {
			t.Errorf("hit %d differs: (%q, %f) vs (%q, %f)",
				i, gotBoth[i].Text, gotBoth[i].Score, gotAlone[i].Text, gotAlone[i].Score)
		}
	}
}

func TestPersist_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	emb := embedder.NewHashEmbedder(384)

	idx := New(dir, emb, testLogger())
	if err := idx.Add("doc-1", contractChunks, map[string]string{"filename": "contract.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Add("doc-2", leaseChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	before, err := idx.Search("salary", 5, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	reloaded := New(dir, emb, testLogger())
	after, err := reloaded.Search("salary", 5, "")
	if err != nil {
		t.Fatalf("Search after reload: %v", err)
	}

	if len(before) != len(after) {
		t.Fatalf("hit counts differ after reload: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("hit %d differs after reload: %+v vs %+v", i, before[i], after[i])
		}
	}

	chunks, ok := reloaded.Chunks("doc-1")
	if !ok || len(chunks) != len(contractChunks) {
		t.Errorf("reloaded chunks missing: ok=%v len=%d", ok, len(chunks))
	}
}

func TestPersist_DeleteSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	emb := embedder.NewHashEmbedder(384)

	idx := New(dir, emb, testLogger())
	if err := idx.Add("doc-1", contractChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Delete("doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	reloaded := New(dir, emb, testLogger())
	if reloaded.Has("doc-1") {
		t.Error("deleted document live after reload")
	}
}

func TestColdStart_EmptyIndex(t *testing.T) {
	idx := newTestIndex(t)
	st := idx.Stats()
	if st.Documents != 0 || st.TotalRows != 0 {
		t.Errorf("expected empty index, got %+v", st)
	}
	hits, err := idx.Search("anything", 5, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestCorruptStore_StartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, indexFile), []byte("not an index"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, docsFile), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	idx := New(dir, embedder.NewHashEmbedder(384), testLogger())
	if st := idx.Stats(); st.Documents != 0 || st.TotalRows != 0 {
		t.Errorf("expected empty index after corrupt load, got %+v", st)
	}
	// The degraded index must still accept writes.
	if err := idx.Add("doc-1", contractChunks, nil); err != nil {
		t.Fatalf("Add after corrupt load: %v", err)
	}
}

func TestRebuild_CompactsAndPreservesResults(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Add("doc-1", contractChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Add("doc-2", leaseChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Delete("doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	before, err := idx.Search("rent premises", 5, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if err := idx.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	st := idx.Stats()
	if st.TotalRows != st.LiveRows {
		t.Errorf("rebuild left orphaned rows: total=%d live=%d", st.TotalRows, st.LiveRows)
	}
	if st.TotalRows != len(leaseChunks) {
		t.Errorf("total rows %d, want %d", st.TotalRows, len(leaseChunks))
	}

	after, err := idx.Search("rent premises", 5, "")
	if err != nil {
		t.Fatalf("Search after rebuild: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("hit counts differ after rebuild: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Text != after[i].Text || before[i].Score != after[i].Score {
			t.Errorf("hit %d differs after rebuild", i)
		}
	}
}

func TestAdd_ReplaceLeavesOldRowsOrphaned(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Add("doc-1", contractChunks, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	replacement := []string{"An entirely new version of the agreement."}
	if err := idx.Add("doc-1", replacement, nil); err != nil {
		t.Fatalf("Add replacement: %v", err)
	}

	chunks, ok := idx.Chunks("doc-1")
	if !ok || len(chunks) != 1 || chunks[0] != replacement[0] {
		t.Fatalf("replacement not visible: %v", chunks)
	}

	hits, err := idx.Search(contractChunks[0], 5, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, h := range hits {
		if h.Text == contractChunks[0] {
			t.Errorf("orphaned chunk from replaced range surfaced in results")
		}
	}
}

func TestAdd_InputValidation(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Add("", contractChunks, nil); err == nil {
		t.Error("expected error for empty document id")
	}
	if err := idx.Add("doc-1", nil, nil); err == nil {
		t.Error("expected error for empty chunk list")
	}
}
