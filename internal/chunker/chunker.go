package chunker

import (
	"strings"
	"unicode"
)

// Placeholder is emitted for documents with no extractable content so
// downstream consumers never have to handle an empty chunk sequence.
const Placeholder = "No valid content found in uploaded document"

// Chunker splits extracted text into overlapping fixed-size segments.
type Chunker struct {
	Size    int // Target chunk size in characters.
	Overlap int // Overlap between consecutive chunks in characters.
}

// New returns a Chunker, falling back to 1000/200 for invalid parameters.
// Overlap must stay strictly below Size.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Chunker{Size: size, Overlap: overlap}
}

// Split breaks text into chunks of roughly Size characters, each sharing
// Overlap characters with its predecessor. Chunks are verbatim substrings
// in original order, so the concatenation of their non-overlapping spans
// reconstructs the input. Splitting is total: any input, including the
// empty string, yields at least one chunk.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{Placeholder}
	}

	runes := []rune(text)
	if len(runes) <= c.Size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.Size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		// Prefer to cut at a sentence or whitespace boundary in the
		// back half of the window, keeping the target size approximate.
		if cut := boundary(runes, start+c.Size/2, end); cut > start {
			end = cut
		}

		chunks = append(chunks, string(runes[start:end]))

		next := end - c.Overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// boundary returns the index just past the last sentence terminator in
// runes[lo:hi], falling back to the last whitespace, or hi if neither
// exists.
func boundary(runes []rune, lo, hi int) int {
	lastSpace := -1
	lastSentence := -1
	for i := lo; i < hi; i++ {
		switch runes[i] {
		case '.', '!', '?', '\n':
			lastSentence = i + 1
		default:
			if unicode.IsSpace(runes[i]) {
				lastSpace = i + 1
			}
		}
	}
	if lastSentence > lo {
		return lastSentence
	}
	if lastSpace > lo {
		return lastSpace
	}
	return hi
}
