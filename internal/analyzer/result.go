package analyzer

import "time"

// Severity grades a detected risk.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Risk is a flagged clause or condition worth a reviewer's attention.
type Risk struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Level       Severity `json:"level"`
}

// KeyTerm names a notable term or clause found in the document.
type KeyTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// DatedClause is a date mention with its surrounding context.
type DatedClause struct {
	Date    string `json:"date"`
	Context string `json:"context"`
}

// MonetaryAmount is a money mention with its surrounding context.
type MonetaryAmount struct {
	Amount  string `json:"amount"`
	Context string `json:"context"`
}

// Result is the structured outcome of analyzing one document. KeyTerms
// and Risks are never empty: extraction that finds nothing substitutes a
// placeholder entry. AIEnhanced reports honestly whether the external
// model contributed; when it did not, AIError carries the reason if the
// attempt was made and failed.
type Result struct {
	DocumentID      string           `json:"document_id"`
	DocumentType    string           `json:"document_type"`
	Summary         string           `json:"summary"`
	Parties         []string         `json:"parties"`
	Dates           []DatedClause    `json:"dates"`
	FinancialTerms  []MonetaryAmount `json:"financial_terms"`
	KeyTerms        []KeyTerm        `json:"key_terms"`
	Risks           []Risk           `json:"risks"`
	Recommendations []string         `json:"recommendations"`
	WordCount       int              `json:"word_count"`
	AIEnhanced      bool             `json:"ai_enhanced"`
	AIError         string           `json:"ai_error,omitempty"`
	AnalyzedAt      time.Time        `json:"analyzed_at"`
}
