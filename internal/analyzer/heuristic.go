package analyzer

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultDocumentType is used when no category keyword matches.
const DefaultDocumentType = "General Document"

// category pairs a document type with the keywords that indicate it.
// Declaration order is the tie-break: when two categories score equally,
// the earlier one wins.
type category struct {
	name     string
	keywords []string
}

var categories = []category{
	{"Employment Contract", []string{"employment", "employee", "salary", "wage", "job", "work agreement"}},
	{"Service Agreement", []string{"service agreement", "services", "consultant", "contractor"}},
	{"Non-Disclosure Agreement", []string{"non-disclosure", "confidentiality agreement", "confidential"}},
	{"Lease Agreement", []string{"lease", "rent", "premises", "landlord", "tenant"}},
	{"Purchase Agreement", []string{"purchase", "sale", "buy", "sell", "goods"}},
	{"License Agreement", []string{"license", "licensing", "grant", "permit"}},
}

// riskTrigger maps a trigger phrase to the risk it flags.
type riskTrigger struct {
	phrase string
	risk   Risk
}

var riskTriggers = []riskTrigger{
	{"penalty", Risk{"Penalty Clauses", "Penalty or fine provisions found, review carefully", SeverityHigh}},
	{"indemnif", Risk{"Indemnification Clauses", "Indemnification provisions require review", SeverityHigh}},
	{"terminat", Risk{"Termination Clauses", "Document contains termination-related provisions", SeverityMedium}},
	{"liability", Risk{"Liability Terms", "Liability provisions detected, review limitations and responsibilities", SeverityMedium}},
	{"confidential", Risk{"Confidentiality Requirements", "Confidentiality or non-disclosure terms present", SeverityMedium}},
	{"payment", Risk{"Payment Obligations", "Payment terms and financial obligations identified", SeverityLow}},
}

// defaultRisk is substituted when no trigger phrase matches.
var defaultRisk = Risk{
	Title:       "No specific risks identified",
	Description: "Document appears standard, professional review still recommended for important agreements",
	Level:       SeverityLow,
}

// termPattern maps a key-term label to keywords whose presence indicates
// the document addresses it.
type termPattern struct {
	name     string
	keywords []string
}

var termPatterns = []termPattern{
	{"Contract Duration", []string{"term", "duration", "period"}},
	{"Payment Terms", []string{"payment", "fee", "compensation", "salary"}},
	{"Termination", []string{"termination", "expire"}},
	{"Confidentiality", []string{"confidential", "non-disclosure", "proprietary"}},
	{"Liability", []string{"liability", "damages"}},
	{"Governing Law", []string{"governing", "jurisdiction", "court"}},
}

var placeholderTerm = KeyTerm{
	Term:       "Document Format",
	Definition: "Standard document format detected, no distinctive terms extracted",
}

var (
	partyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)between\s+(.{2,80}?)\s+and\s+(.{2,80}?)(?:\s*[,.(]|$)`),
		regexp.MustCompile(`(?i)party\W{0,10}"([^"]{3,80})"`),
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
		regexp.MustCompile(`(?i)\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{2,4}`),
		regexp.MustCompile(`(?i)(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{2,4}`),
	}
	moneyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`),
		regexp.MustCompile(`(?i)(?:USD|dollars?)\s*[\d,]+(?:\.\d{2})?`),
		regexp.MustCompile(`(?i)[\d,]+(?:\.\d{2})?\s*(?:USD|dollars)`),
	}
)

// heuristicAnalyze runs the rule-based pass. It is total: any input text,
// including empty, produces a complete Result with non-empty KeyTerms
// and Risks.
func heuristicAnalyze(docID, text string) *Result {
	lower := strings.ToLower(text)
	wordCount := len(strings.Fields(text))
	docType := classify(lower)

	res := &Result{
		DocumentID:     docID,
		DocumentType:   docType,
		Summary:        heuristicSummary(docType, wordCount),
		Parties:        extractParties(text),
		Dates:          extractDates(text),
		FinancialTerms: extractAmounts(text),
		KeyTerms:       extractKeyTerms(lower),
		Risks:          detectRisks(lower),
		WordCount:      wordCount,
		AIEnhanced:     false,
	}
	return res
}

func classify(lower string) string {
	best := DefaultDocumentType
	bestScore := 0
	for _, cat := range categories {
		score := 0
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = cat.name
			bestScore = score
		}
	}
	return best
}

func heuristicSummary(docType string, wordCount int) string {
	return fmt.Sprintf(
		"This appears to be a %s containing %d words. The document includes provisions and clauses typical for this type of agreement.",
		docType, wordCount)
}

func detectRisks(lower string) []Risk {
	var risks []Risk
	for _, tr := range riskTriggers {
		if strings.Contains(lower, tr.phrase) {
			risks = append(risks, tr.risk)
		}
	}
	if len(risks) == 0 {
		risks = []Risk{defaultRisk}
	}
	return risks
}

func extractKeyTerms(lower string) []KeyTerm {
	var terms []KeyTerm
	for _, tp := range termPatterns {
		for _, kw := range tp.keywords {
			if strings.Contains(lower, kw) {
				terms = append(terms, KeyTerm{
					Term:       tp.name,
					Definition: "Relevant clauses found in document",
				})
				break
			}
		}
	}
	if len(terms) == 0 {
		terms = []KeyTerm{placeholderTerm}
	}
	return terms
}

func extractParties(text string) []string {
	seen := make(map[string]struct{})
	var parties []string
	add := func(p string) {
		p = strings.TrimSpace(p)
		if len(p) < 3 || len(p) > 100 {
			return
		}
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		parties = append(parties, p)
	}

	for _, re := range partyPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			for _, g := range m[1:] {
				add(g)
			}
		}
		if len(parties) >= 5 {
			break
		}
	}
	if len(parties) > 5 {
		parties = parties[:5]
	}
	return parties
}

func extractDates(text string) []DatedClause {
	var dates []DatedClause
	for _, re := range datePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			dates = append(dates, DatedClause{
				Date:    text[loc[0]:loc[1]],
				Context: contextWindow(text, loc[0], loc[1], 50),
			})
			if len(dates) >= 10 {
				return dates
			}
		}
	}
	return dates
}

func extractAmounts(text string) []MonetaryAmount {
	var amounts []MonetaryAmount
	for _, re := range moneyPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			amounts = append(amounts, MonetaryAmount{
				Amount:  text[loc[0]:loc[1]],
				Context: contextWindow(text, loc[0], loc[1], 30),
			})
			if len(amounts) >= 10 {
				return amounts
			}
		}
	}
	return amounts
}

// contextWindow returns the text surrounding [start,end) padded by up to
// pad bytes on each side, trimmed.
func contextWindow(text string, start, end, pad int) string {
	lo := start - pad
	if lo < 0 {
		lo = 0
	}
	hi := end + pad
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}
