package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"docsage/internal/llm"
)

const analysisPromptTemplate = `Analyze the following legal document and respond with a single JSON object using exactly these keys:
{
  "document_type": "string",
  "summary": "string, 2-4 sentences",
  "parties": ["string"],
  "dates": [{"date": "string", "context": "string"}],
  "financial_terms": [{"amount": "string", "context": "string"}],
  "key_terms": [{"term": "string", "definition": "string"}],
  "risks": [{"title": "string", "description": "string", "level": "low|medium|high"}],
  "recommendations": ["string"]
}

Respond with JSON only, no surrounding prose.

Document:
%s`

// aiPayload is the shape the model is asked to produce. All fields are
// optional so a partially valid response still contributes.
type aiPayload struct {
	DocumentType    string           `json:"document_type"`
	Summary         string           `json:"summary"`
	Parties         []string         `json:"parties"`
	Dates           []DatedClause    `json:"dates"`
	FinancialTerms  []MonetaryAmount `json:"financial_terms"`
	KeyTerms        []KeyTerm        `json:"key_terms"`
	Risks           []Risk           `json:"risks"`
	Recommendations []string         `json:"recommendations"`
}

// aiAnalyze asks the model for a structured analysis and merges whatever
// usable content comes back into base. The merge favors AI output per
// field but never leaves a field emptier than the heuristic pass left it.
// Returns an error only when nothing usable could be extracted.
func aiAnalyze(ctx context.Context, client llm.Client, base *Result, text string, maxChars int) error {
	excerpt := truncateUTF8(text, maxChars)
	raw, err := client.Generate(ctx, fmt.Sprintf(analysisPromptTemplate, excerpt))
	if err != nil {
		return err
	}

	payload, perr := parseAIResponse(raw)
	if perr != nil {
		// Structured parse failed; salvage prose sections by marker scan.
		salvaged := scanMarkers(llm.Clean(raw))
		if salvaged == nil {
			return fmt.Errorf("unusable model response: %w", perr)
		}
		payload = salvaged
	}
	mergeAI(base, payload)
	return nil
}

// parseAIResponse strips code fences and decodes the JSON object,
// tolerating leading and trailing prose around the object.
func parseAIResponse(raw string) (*aiPayload, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	var p aiPayload
	if err := json.Unmarshal([]byte(s[start:end+1]), &p); err != nil {
		return nil, fmt.Errorf("decode analysis JSON: %w", err)
	}
	if p.Summary == "" && p.DocumentType == "" && len(p.Risks) == 0 && len(p.KeyTerms) == 0 {
		return nil, fmt.Errorf("analysis JSON carried no content")
	}
	for i := range p.Risks {
		p.Risks[i].Level = normalizeSeverity(p.Risks[i].Level)
	}
	return &p, nil
}

func normalizeSeverity(s Severity) Severity {
	switch strings.ToLower(string(s)) {
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// scanMarkers recovers a summary and risk/term bullet lines from a prose
// response. Sections are recognized by heading lines containing "key
// risks" or "important terms"; everything before the first heading is
// treated as the summary.
func scanMarkers(cleaned string) *aiPayload {
	lines := strings.Split(cleaned, "\n")
	var summary []string
	var risks []Risk
	var terms []KeyTerm
	section := "summary"
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "key risks"):
			section = "risks"
			continue
		case strings.Contains(lower, "important terms"):
			section = "terms"
			continue
		}
		item := strings.TrimLeft(line, "-*•0123456789. \t")
		switch section {
		case "summary":
			summary = append(summary, line)
		case "risks":
			if item != "" {
				risks = append(risks, Risk{Title: item, Description: item, Level: SeverityMedium})
			}
		case "terms":
			if item != "" {
				terms = append(terms, KeyTerm{Term: item, Definition: item})
			}
		}
	}
	if len(summary) == 0 && len(risks) == 0 && len(terms) == 0 {
		return nil
	}
	return &aiPayload{
		Summary:  strings.Join(summary, " "),
		Risks:    risks,
		KeyTerms: terms,
	}
}

// truncateUTF8 caps s at n bytes, backing off to the nearest rune
// boundary so the result is always valid UTF-8.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// mergeAI overlays AI fields onto the heuristic result. AI wins per field
// when it produced content; heuristic values stand otherwise.
func mergeAI(base *Result, p *aiPayload) {
	if p.DocumentType != "" {
		base.DocumentType = p.DocumentType
	}
	if p.Summary != "" {
		base.Summary = llm.Clean(p.Summary)
	}
	if len(p.Parties) > 0 {
		base.Parties = p.Parties
	}
	if len(p.Dates) > 0 {
		base.Dates = p.Dates
	}
	if len(p.FinancialTerms) > 0 {
		base.FinancialTerms = p.FinancialTerms
	}
	if len(p.KeyTerms) > 0 {
		base.KeyTerms = p.KeyTerms
	}
	if len(p.Risks) > 0 {
		base.Risks = p.Risks
	}
	if len(p.Recommendations) > 0 {
		base.Recommendations = p.Recommendations
	}
	base.AIEnhanced = true
	base.AIError = ""
}
