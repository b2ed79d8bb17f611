package qa

import (
	"strings"

	"docsage/internal/analyzer"
)

var baseQuestions = []string{
	"What are the main obligations of each party?",
	"What are the key risks I should be aware of?",
	"How can this agreement be terminated?",
}

type typedSet struct {
	key       string
	questions []string
}

var typedQuestions = []typedSet{
	{"employment", []string{
		"What is the salary or compensation?",
		"What is the notice period for termination?",
		"Are there any non-compete restrictions?",
	}},
	{"lease", []string{
		"What is the monthly rent amount?",
		"When does the lease term end?",
		"Who is responsible for repairs and maintenance?",
	}},
	{"non-disclosure", []string{
		"What information is considered confidential?",
		"How long do the confidentiality obligations last?",
	}},
	{"service", []string{
		"What services are being provided?",
		"What are the payment terms for the services?",
	}},
	{"purchase", []string{
		"What is the purchase price?",
		"What are the delivery or transfer terms?",
	}},
	{"license", []string{
		"What rights does the license grant?",
		"Are there any usage restrictions?",
	}},
}

// SuggestQuestions proposes questions worth asking about a document,
// tailored to its analyzed type and contents. Always returns at least
// the base set.
func SuggestQuestions(res *analyzer.Result) []string {
	questions := append([]string{}, baseQuestions...)
	if res == nil {
		return questions
	}

	lower := strings.ToLower(res.DocumentType)
	for _, ts := range typedQuestions {
		if strings.Contains(lower, ts.key) {
			questions = append(questions, ts.questions...)
			break
		}
	}
	if len(res.FinancialTerms) > 0 {
		questions = append(questions, "What payments or amounts does this document specify?")
	}
	if len(res.Dates) > 0 {
		questions = append(questions, "What important dates or deadlines does this document mention?")
	}
	return questions
}
