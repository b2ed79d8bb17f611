package embedder

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// HashEmbedder is a feature-hashing term-frequency vectorizer. Each token
// is hashed into one of Dimension buckets with a hash-derived sign, term
// frequencies are accumulated, and the result is L2-normalized. Unlike a
// vocabulary-based TF-IDF model it needs no corpus preparation phase, so
// the dimension is fixed for the lifetime of any index built on it.
type HashEmbedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewHashEmbedder creates an embedder producing vectors of the given
// dimension (384 if non-positive).
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashEmbedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// Dimension returns the dimensionality of the produced vectors.
func (e *HashEmbedder) Dimension() int { return e.dimension }

// Embed computes the normalized hashed-TF vector for text. Text with no
// usable tokens yields the zero vector, which scores 0 against everything.
// Embedding is total over any string input; the error return exists for
// the Embedder contract and is always nil here.
func (e *HashEmbedder) Embed(text string) ([]float32, error) {
	vec := make([]float32, e.dimension)

	total := 0
	for _, tok := range e.tokenize(text) {
		bucket, sign := e.hash(tok)
		vec[bucket] += sign
		total++
	}
	if total == 0 {
		return vec, nil
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

// hash maps a token to a bucket index and a +1/-1 sign. The sign bit
// keeps hash collisions from systematically inflating similarity.
func (e *HashEmbedder) hash(token string) (int, float32) {
	h := fnv.New64a()
	h.Write([]byte(token))
	sum := h.Sum64()
	bucket := int(sum % uint64(e.dimension))
	sign := float32(1)
	if (sum>>63)&1 == 1 {
		sign = -1
	}
	return bucket, sign
}

func (e *HashEmbedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of",
		"in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been",
		"being", "it", "this", "that", "these", "those", "from", "up", "down", "over",
		"under", "again", "further", "than", "so", "such", "into", "about", "between",
		"through", "during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
