package llm

import (
	"regexp"
	"strings"
)

var (
	asteriskRe   = regexp.MustCompile(`\*+`)
	underlineRe  = regexp.MustCompile(`__([^_]+)__`)
	blankRunRe   = regexp.MustCompile(`\n\s*\n\s*\n+`)
	horizSpaceRe = regexp.MustCompile(`[ \t]+`)
)

// Clean strips markdown emphasis from externally generated text and
// normalizes its whitespace: runs of asterisks and __underscores__ are
// removed, more than two consecutive line breaks collapse to exactly two,
// runs of horizontal whitespace collapse to one space, and every line is
// trimmed. The result is plain presentation-neutral text regardless of
// how the model chose to format its output.
func Clean(text string) string {
	cleaned := asteriskRe.ReplaceAllString(text, "")
	cleaned = underlineRe.ReplaceAllString(cleaned, "$1")
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = horizSpaceRe.ReplaceAllString(cleaned, " ")

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
