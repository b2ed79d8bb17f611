package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// extractCSV renders tabular data as "header: value" lines, one row per
// line, so downstream search can match on column names.
func extractCSV(r io.Reader) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	var b strings.Builder
	b.WriteString("Headers: " + strings.Join(headers, ", "))
	for _, row := range records[1:] {
		b.WriteString("\n")
		for j, cell := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			if j < len(headers) {
				b.WriteString(headers[j] + ": " + cell)
			} else {
				b.WriteString(cell)
			}
		}
	}
	return b.String(), nil
}
