package embedder

import (
	"math"
	"testing"
)

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestEmbed_Deterministic(t *testing.T) {
	e := NewHashEmbedder(384)
	text := "The employee salary is paid monthly."
	a, _ := e.Embed(text)
	b, _ := e.Embed(text)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at component %d", i)
		}
	}
}

func TestEmbed_FixedDimension(t *testing.T) {
	e := NewHashEmbedder(128)
	for _, text := range []string{"", "one", "a much longer piece of contract text with many distinct words"} {
		if vec, _ := e.Embed(text); len(vec) != 128 {
			t.Errorf("Embed(%q): dimension %d, want 128", text, len(vec))
		}
	}
}

func TestEmbed_UnitNorm(t *testing.T) {
	e := NewHashEmbedder(384)
	vec, _ := e.Embed("Either party may terminate this agreement with thirty days written notice.")
	norm := math.Sqrt(dot(vec, vec))
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("expected unit norm, got %f", norm)
	}
}

func TestEmbed_IdenticalTextScoresOne(t *testing.T) {
	e := NewHashEmbedder(384)
	text := "The monthly rent for the premises is $2500 due on the first."
	va, _ := e.Embed(text)
	vb, _ := e.Embed(text)
	score := dot(va, vb)
	if math.Abs(score-1.0) > 1e-5 {
		t.Errorf("self-similarity %f, want 1.0", score)
	}
}

func TestEmbed_RelatedTextScoresHigherThanUnrelated(t *testing.T) {
	e := NewHashEmbedder(384)
	query, _ := e.Embed("What is the employee salary?")
	related, _ := e.Embed("The employee salary is set at $5000 per month.")
	unrelated, _ := e.Embed("Rainfall totals varied widely across the coastal regions.")

	if dot(query, related) <= dot(query, unrelated) {
		t.Errorf("related score %f not above unrelated score %f",
			dot(query, related), dot(query, unrelated))
	}
}

func TestEmbed_NoTokensYieldsZeroVector(t *testing.T) {
	e := NewHashEmbedder(64)
	vec, _ := e.Embed("!!! ... ---")
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("expected zero vector, component %d is %f", i, v)
		}
	}
}
