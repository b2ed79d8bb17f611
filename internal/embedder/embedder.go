package embedder

// Embedder converts text into a fixed-dimension vector representation.
// Implementations must be deterministic: the same text always yields the
// same vector, and every vector is L2-normalized so that inner product
// equals cosine similarity.
type Embedder interface {
	Dimension() int
	Embed(text string) ([]float32, error)
}
