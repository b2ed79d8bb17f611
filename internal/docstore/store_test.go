package docstore

import (
	"errors"
	"testing"
	"time"
)

func TestPutGetDelete(t *testing.T) {
	s := New()
	rec := &Record{
		ID:        "doc-1",
		Filename:  "contract.txt",
		Text:      "some text",
		Chunks:    []string{"some text"},
		Status:    StatusUploaded,
		CreatedAt: time.Now(),
	}
	s.Put(rec)

	got, err := s.Get("doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Filename != "contract.txt" || got.Status != StatusUploaded {
		t.Errorf("unexpected record: %+v", got)
	}

	if err := s.Delete("doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("doc-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGet_UnknownID(t *testing.T) {
	s := New()
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetStatus_Lifecycle(t *testing.T) {
	s := New()
	s.Put(&Record{ID: "doc-1", Status: StatusUploaded, CreatedAt: time.Now()})

	if err := s.SetStatus("doc-1", StatusAnalyzing, ""); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	rec, _ := s.Get("doc-1")
	if rec.Status != StatusAnalyzing {
		t.Errorf("status %s, want %s", rec.Status, StatusAnalyzing)
	}

	if err := s.SetStatus("doc-1", StatusError, "parse failed"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	rec, _ = s.Get("doc-1")
	if rec.Status != StatusError || rec.Error != "parse failed" {
		t.Errorf("error status not recorded: %+v", rec)
	}

	if err := s.SetStatus("missing", StatusCompleted, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList_OrderedByCreation(t *testing.T) {
	s := New()
	base := time.Now()
	s.Put(&Record{ID: "doc-b", CreatedAt: base.Add(2 * time.Second)})
	s.Put(&Record{ID: "doc-a", CreatedAt: base})
	s.Put(&Record{ID: "doc-c", CreatedAt: base.Add(time.Second)})

	got := s.List()
	want := []string{"doc-a", "doc-c", "doc-b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSetAnalysis_AttachAndOverwrite(t *testing.T) {
	s := New()
	s.Put(&Record{ID: "doc-1", CreatedAt: time.Now()})

	if err := s.SetAnalysis("doc-1", "first"); err != nil {
		t.Fatalf("SetAnalysis: %v", err)
	}
	if err := s.SetAnalysis("doc-1", "second"); err != nil {
		t.Fatalf("SetAnalysis overwrite: %v", err)
	}
	rec, _ := s.Get("doc-1")
	if rec.Analysis != "second" {
		t.Errorf("analysis %v, want overwritten value", rec.Analysis)
	}
}
