// Package qa answers free-form questions about stored documents. An AI
// path runs against retrieved context when a model client is available;
// a keyword-matching path serves as the fallback, so every valid request
// gets a non-empty answer.
package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"docsage/internal/llm"
	"docsage/internal/vectorindex"
)

var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrUnknownDocument = errors.New("document not found")
)

// Answer is the response to one question. Source reports which path
// produced it: "ai" or "keyword".
type Answer struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Source     string `json:"source"`
}

const questionPromptTemplate = `You are a legal document assistant. Answer the question using only the
document excerpts below. If the excerpts do not contain the answer, say so.

Excerpts:
%s

Question: %s

Answer:`

const notFoundAnswer = "I could not find information related to your question in this document. Try rephrasing with different keywords."

type Answerer struct {
	index    *vectorindex.Index
	client   llm.Client
	log      *slog.Logger
	maxChars int
	topK     int
}

// New builds an Answerer. client may be nil, which forces the keyword
// path for every question.
func New(index *vectorindex.Index, client llm.Client, log *slog.Logger, maxChars, topK int) *Answerer {
	if maxChars <= 0 {
		maxChars = 6000
	}
	if topK <= 0 {
		topK = 5
	}
	return &Answerer{index: index, client: client, log: log, maxChars: maxChars, topK: topK}
}

// Answer resolves a question against one document. It fails only on
// invalid input or an unknown document; model errors degrade to the
// keyword path.
func (a *Answerer) Answer(ctx context.Context, docID, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if !a.index.Has(docID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, docID)
	}

	excerpt := a.retrieve(docID, question)

	if a.client != nil {
		text, err := a.askModel(ctx, excerpt, question)
		if err == nil {
			return &Answer{DocumentID: docID, Question: question, Answer: text, Source: "ai"}, nil
		}
		a.log.Warn("model answer failed, using keyword matching",
			"doc_id", docID, "error", err)
	}

	text := a.keywordAnswer(docID, question)
	return &Answer{DocumentID: docID, Question: question, Answer: text, Source: "keyword"}, nil
}

// retrieve assembles the most relevant chunks for the question, capped
// at maxChars. Falls back to the document's leading chunks when search
// returns nothing.
func (a *Answerer) retrieve(docID, question string) string {
	hits, err := a.index.Search(question, a.topK, docID)
	if err != nil || len(hits) == 0 {
		chunks, _ := a.index.Chunks(docID)
		return capChars(strings.Join(chunks, "\n\n"), a.maxChars)
	}
	var b strings.Builder
	for _, h := range hits {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(h.Text)
		if b.Len() >= a.maxChars {
			break
		}
	}
	return capChars(b.String(), a.maxChars)
}

func (a *Answerer) askModel(ctx context.Context, excerpt, question string) (string, error) {
	raw, err := a.client.Generate(ctx, fmt.Sprintf(questionPromptTemplate, excerpt, question))
	if err != nil {
		return "", err
	}
	text := llm.Clean(raw)
	if text == "" {
		return "", errors.New("model returned an empty answer")
	}
	return text, nil
}

var qaStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "who": {}, "whom": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "does": {}, "how": {}, "why": {}, "will": {}, "with": {},
	"from": {}, "have": {}, "has": {}, "had": {}, "was": {}, "were": {},
	"been": {}, "there": {}, "their": {}, "about": {}, "into": {},
}

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

var sentenceRe = regexp.MustCompile(`[^.!?\n]+[.!?]?`)

// keywordAnswer scans the document's sentences for the question's
// content words and returns up to three matches, enumerated. Always
// non-empty.
func (a *Answerer) keywordAnswer(docID, question string) string {
	keywords := contentWords(question)
	if len(keywords) == 0 {
		return notFoundAnswer
	}

	chunks, _ := a.index.Chunks(docID)
	text := strings.Join(chunks, " ")
	var matched []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lower := strings.ToLower(s)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, s)
				break
			}
		}
		if len(matched) == 3 {
			break
		}
	}
	if len(matched) == 0 {
		return notFoundAnswer
	}

	var b strings.Builder
	b.WriteString("Based on basic text matching, these passages may be relevant:\n")
	for i, s := range matched {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString("\nNote: this is a simple keyword match, not an AI-generated answer.")
	return b.String()
}

// contentWords extracts the question's meaningful tokens: lowercased,
// stopwords removed, at least four characters long.
func contentWords(question string) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, w := range wordRe.FindAllString(strings.ToLower(question), -1) {
		if len([]rune(w)) < 4 {
			continue
		}
		if _, stop := qaStopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}

// capChars caps s at n bytes, backing off to the nearest rune boundary
// so the result is always valid UTF-8.
func capChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
