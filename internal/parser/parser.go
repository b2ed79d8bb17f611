// Package parser converts uploaded document bytes into plain text
// suitable for chunking and analysis. Structure is flattened: headings
// become their own lines, everything else joins as paragraphs.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the file extensions this service accepts.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tweaks extraction behavior.
type Options struct {
	// PDFFallbackPdftotext enables shelling out to pdftotext when the
	// native PDF reader cannot extract text.
	PDFFallbackPdftotext bool
}

// Extract reads a document and returns its flat text content. The
// extension of filename selects the format.
func Extract(r io.Reader, filename string, opts Options) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return extractText(r)
	case ".md", ".markdown":
		return extractMarkdown(r)
	case ".csv":
		return extractCSV(r)
	case ".html", ".htm":
		return extractHTML(r)
	case ".pdf":
		return extractPDF(r, opts.PDFFallbackPdftotext)
	case ".docx":
		return extractDOCX(r)
	default:
		return "", fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks whether a filename's extension is handled.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}
