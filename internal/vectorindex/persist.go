package vectorindex

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Durable layout under the store directory:
//
//	index.bin      - dimension, row count, then row-major float32 vectors
//	documents.json - document id to {start_idx, end_idx, chunks, metadata}
//
// Both files are rewritten after every mutation via temp-file + rename so
// a crash mid-save never leaves a partially written file. load validates
// the two against each other and treats any disagreement as corruption.

const (
	indexFile = "index.bin"
	docsFile  = "documents.json"

	indexMagic = uint32(0x44535649) // "DSVI"
)

// saveLocked persists the current state. Callers must hold x.mu.
func (x *Index) saveLocked() error {
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := x.writeVectors(filepath.Join(x.dir, indexFile)); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	if err := x.writeDocs(filepath.Join(x.dir, docsFile)); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	return nil
}

func (x *Index) writeVectors(path string) error {
	tmp, err := os.CreateTemp(x.dir, indexFile+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := bufio.NewWriter(tmp)
	header := []uint32{indexMagic, uint32(x.dim), uint32(len(x.rows))}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			tmp.Close()
			return err
		}
	}
	for _, row := range x.rows {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (x *Index) writeDocs(path string) error {
	tmp, err := os.CreateTemp(x.dir, docsFile+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(x.docs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// load restores persisted state. A missing store is a cold start (empty
// index, no error). Corrupt or mutually inconsistent files return an
// error so the caller can fall back to empty.
func (x *Index) load() error {
	vecPath := filepath.Join(x.dir, indexFile)
	docPath := filepath.Join(x.dir, docsFile)

	if _, err := os.Stat(vecPath); os.IsNotExist(err) {
		return nil
	}

	rows, dim, err := readVectors(vecPath)
	if err != nil {
		return fmt.Errorf("read vectors: %w", err)
	}
	if dim != x.dim {
		return fmt.Errorf("stored dimension %d does not match embedder dimension %d", dim, x.dim)
	}

	docs := make(map[string]*docEntry)
	data, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("read documents: %w", err)
	}
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("decode documents: %w", err)
	}

	for id, entry := range docs {
		if entry.StartIdx < 0 || entry.EndIdx > len(rows) ||
			entry.EndIdx-entry.StartIdx != len(entry.Chunks) {
			return fmt.Errorf("document %s range [%d,%d) disagrees with %d stored rows",
				id, entry.StartIdx, entry.EndIdx, len(rows))
		}
	}

	x.rows = rows
	x.docs = docs
	return nil
}

func readVectors(path string) ([][]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic, dim, count uint32
	for _, p := range []*uint32{&magic, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, 0, fmt.Errorf("read header: %w", err)
		}
	}
	if magic != indexMagic {
		return nil, 0, fmt.Errorf("bad magic %#x", magic)
	}
	if dim == 0 || dim > 1<<16 || count > 1<<28 {
		return nil, 0, fmt.Errorf("implausible header: dim=%d count=%d", dim, count)
	}

	rows := make([][]float32, count)
	for i := range rows {
		row := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, 0, fmt.Errorf("read row %d: %w", i, err)
		}
		rows[i] = row
	}
	return rows, int(dim), nil
}
