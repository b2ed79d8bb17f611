package analyzer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"
)

const employmentText = `This Employment Agreement is made between Acme Corp and Jane Doe.
The Employee shall receive a salary of $5000 per month. Either party may
terminate this agreement with 30 days written notice. The Employee agrees
to keep all proprietary information confidential. This agreement is
effective from January 15, 2024.`

type stubClient struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (s *stubClient) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyze_HeuristicEmploymentContract(t *testing.T) {
	e := New(nil, discard(), 0, 0)
	res := e.Analyze(context.Background(), "doc-1", employmentText)

	if res.DocumentType != "Employment Contract" {
		t.Errorf("DocumentType = %q, want Employment Contract", res.DocumentType)
	}
	if res.AIEnhanced {
		t.Error("AIEnhanced should be false without a client")
	}
	var hasTermination bool
	for _, r := range res.Risks {
		if r.Title == "Termination Clauses" {
			hasTermination = true
			if r.Level != SeverityMedium {
				t.Errorf("termination risk level = %q, want medium", r.Level)
			}
		}
	}
	if !hasTermination {
		t.Error("expected a termination risk")
	}
	var hasSalary bool
	for _, m := range res.FinancialTerms {
		if m.Amount == "$5000" {
			hasSalary = true
		}
	}
	if !hasSalary {
		t.Errorf("FinancialTerms = %v, want $5000 extracted", res.FinancialTerms)
	}
	if len(res.Dates) == 0 {
		t.Error("expected the effective date to be extracted")
	}
	if res.WordCount == 0 {
		t.Error("WordCount not set")
	}
}

func TestAnalyze_NeverEmptyRisksOrTerms(t *testing.T) {
	e := New(nil, discard(), 0, 0)
	res := e.Analyze(context.Background(), "doc-2", "hello world")

	if len(res.Risks) == 0 {
		t.Error("Risks must not be empty")
	}
	if len(res.KeyTerms) == 0 {
		t.Error("KeyTerms must not be empty")
	}
	if res.DocumentType != DefaultDocumentType {
		t.Errorf("DocumentType = %q, want %q", res.DocumentType, DefaultDocumentType)
	}
}

func TestAnalyze_AIMergeOverridesHeuristic(t *testing.T) {
	client := &stubClient{response: "```json\n" + `{
		"document_type": "Executive Employment Contract",
		"summary": "A **detailed** employment agreement.",
		"parties": ["Acme Corp", "Jane Doe"],
		"key_terms": [{"term": "Salary", "definition": "Fixed monthly compensation"}],
		"risks": [{"title": "Short Notice", "description": "30 day termination window", "level": "HIGH"}],
		"recommendations": ["Negotiate a longer notice period"]
	}` + "\n```"}
	e := New(client, discard(), 0, 0)
	res := e.Analyze(context.Background(), "doc-3", employmentText)

	if !res.AIEnhanced {
		t.Fatal("AIEnhanced should be true")
	}
	if res.AIError != "" {
		t.Errorf("AIError = %q, want empty", res.AIError)
	}
	if res.DocumentType != "Executive Employment Contract" {
		t.Errorf("DocumentType = %q", res.DocumentType)
	}
	if strings.Contains(res.Summary, "*") {
		t.Errorf("Summary not cleaned: %q", res.Summary)
	}
	if len(res.Risks) != 1 || res.Risks[0].Level != SeverityHigh {
		t.Errorf("Risks = %v, want single high risk", res.Risks)
	}
	if len(res.Recommendations) != 1 {
		t.Errorf("Recommendations = %v", res.Recommendations)
	}
}

func TestAnalyze_AIMergesDatesAndFinancialTerms(t *testing.T) {
	client := &stubClient{response: `{
		"document_type": "Employment Contract",
		"summary": "An employment agreement.",
		"dates": [{"date": "January 15, 2024", "context": "effective from January 15, 2024"}],
		"financial_terms": [{"amount": "$5000", "context": "salary of $5000 per month"}]
	}`}
	e := New(client, discard(), 0, 0)
	res := e.Analyze(context.Background(), "doc-8", employmentText)

	if !res.AIEnhanced {
		t.Fatal("AIEnhanced should be true")
	}
	if len(res.Dates) != 1 || res.Dates[0].Date != "January 15, 2024" {
		t.Errorf("Dates = %v, want the model's date", res.Dates)
	}
	if len(res.FinancialTerms) != 1 || res.FinancialTerms[0].Amount != "$5000" {
		t.Errorf("FinancialTerms = %v, want the model's amount", res.FinancialTerms)
	}
}

func TestAnalyze_ExcerptTruncationKeepsValidUTF8(t *testing.T) {
	client := &stubClient{response: `{"summary": "ok", "document_type": "General Document"}`}
	// Every rune is 2 bytes; an odd byte cap would land mid-rune.
	text := strings.Repeat("é", 200)
	e := New(client, discard(), 101, 1)
	e.Analyze(context.Background(), "doc-9", text)

	if client.calls != 1 {
		t.Fatalf("client called %d times", client.calls)
	}
	if !utf8.ValidString(client.prompt) {
		t.Error("prompt contains invalid UTF-8")
	}
}

func TestAnalyze_AIFailureFallsBackToHeuristic(t *testing.T) {
	client := &stubClient{err: errors.New("model unavailable")}
	e := New(client, discard(), 0, 0)
	res := e.Analyze(context.Background(), "doc-4", employmentText)

	if res.AIEnhanced {
		t.Error("AIEnhanced must be false after AI failure")
	}
	if res.AIError == "" {
		t.Error("AIError should record the failure")
	}
	if res.DocumentType != "Employment Contract" {
		t.Errorf("heuristic result lost: DocumentType = %q", res.DocumentType)
	}
}

func TestAnalyze_ShortTextSkipsAI(t *testing.T) {
	client := &stubClient{response: "{}"}
	e := New(client, discard(), 0, 50)
	res := e.Analyze(context.Background(), "doc-5", "short lease")

	if client.calls != 0 {
		t.Errorf("client called %d times for short text", client.calls)
	}
	if res.AIEnhanced {
		t.Error("AIEnhanced must be false when AI is skipped")
	}
}

func TestParseAIResponse_ProseFallback(t *testing.T) {
	client := &stubClient{response: `This contract looks standard overall.

Key Risks:
- Termination notice is only 30 days
- No severance provision

Important Terms:
- Salary: $5000 per month`}
	e := New(client, discard(), 0, 0)
	res := e.Analyze(context.Background(), "doc-6", employmentText)

	if !res.AIEnhanced {
		t.Fatal("marker-scan response should still enhance the result")
	}
	if len(res.Risks) != 2 {
		t.Errorf("Risks = %v, want 2 scanned risks", res.Risks)
	}
	if len(res.KeyTerms) != 1 {
		t.Errorf("KeyTerms = %v, want 1 scanned term", res.KeyTerms)
	}
	if !strings.Contains(res.Summary, "standard") {
		t.Errorf("Summary = %q", res.Summary)
	}
}

func TestParseAIResponse_SurroundingProse(t *testing.T) {
	p, err := parseAIResponse(`Here is the analysis you asked for:
{"summary": "A lease.", "document_type": "Lease Agreement", "parties": [], "key_terms": [], "risks": [], "recommendations": []}
Let me know if you need more.`)
	if err != nil {
		t.Fatalf("parseAIResponse: %v", err)
	}
	if p.DocumentType != "Lease Agreement" {
		t.Errorf("DocumentType = %q", p.DocumentType)
	}
}
