package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"docsage/internal/parser"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with slack for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("document")
	if err != nil {
		jsonError(w, "document file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	opts := parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext}
	text, extractErr := parser.Extract(bytes.NewReader(data), filename, opts)
	if extractErr != nil {
		// Keep the document addressable even when extraction fails: the
		// chunker substitutes a placeholder for blank text.
		s.log.Warn("extraction failed, storing placeholder",
			"filename", filename, "error", extractErr)
		text = ""
	}

	result, err := s.pipeline.ProcessDocument(text, filename)
	if err != nil {
		jsonError(w, "failed to process document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"document_id": result.DocumentID,
		"filename":    result.Filename,
		"chunk_count": result.ChunkCount,
		"word_count":  result.WordCount,
	}
	if extractErr != nil {
		if err := s.pipeline.MarkExtractionError(result.DocumentID, extractErr.Error()); err != nil {
			s.log.Error("failed to record extraction error", "doc_id", result.DocumentID, "error", err)
		}
		resp["warning"] = "text extraction failed: " + extractErr.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
