package knowledge

import (
	"math"
	"path/filepath"
	"testing"
)

func TestEmbeddingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	in := []Embedding{
		{Content: "likes coffee", Vector: []float64{0.1, 0.2, 0.3}},
		{Content: "plays chess ♟", Vector: []float64{0.9, 0.8, 0.7}},
	}
	if err := SaveEmbeddings(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := LoadEmbeddings(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(out))
	}
	if out[1].Content != "plays chess ♟" {
		t.Fatalf("content changed: %q", out[1].Content)
	}
}

func TestLoadEmbeddingsRejectsMixedDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	in := []Embedding{
		{Content: "a", Vector: []float64{1, 2}},
		{Content: "b", Vector: []float64{1, 2, 3}},
	}
	if err := SaveEmbeddings(path, in); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadEmbeddings(path); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestNearest(t *testing.T) {
	embeddings := []Embedding{
		{Content: "far", Vector: []float64{10, 10}},
		{Content: "near", Vector: []float64{1, 1}},
		{Content: "nearest", Vector: []float64{0, 0.5}},
	}
	got := Nearest([]float64{0, 0}, embeddings, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Content != "nearest" || got[1].Content != "near" {
		t.Fatalf("wrong order: %q, %q", got[0].Content, got[1].Content)
	}
}

func TestFragments(t *testing.T) {
	text := "First paragraph.\n\nSecond one\nspans two lines.\n\n\n\nThird."
	got := Fragments(text)
	want := []string{"First paragraph.", "Second one\nspans two lines.", "Third."}
	if len(got) != len(want) {
		t.Fatalf("expected %d fragments, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fragment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFragmentsEmptyCorpus(t *testing.T) {
	if got := Fragments("  \n\n \n"); len(got) != 0 {
		t.Fatalf("expected no fragments, got %q", got)
	}
}

func TestDistanceMismatchedDimensions(t *testing.T) {
	d := Distance([]float64{0.1, 0.2, 0.3}, []float64{1.0})
	if !math.IsInf(d, 1) {
		t.Fatalf("expected +Inf for mismatched dimensions, got %v", d)
	}
}

func TestNearestSkipsMismatchedDimensions(t *testing.T) {
	embeddings := []Embedding{
		{Content: "wrong dim", Vector: []float64{1.0}},
		{Content: "matching", Vector: []float64{0.1, 0.2, 0.3}},
	}
	got := Nearest([]float64{0.1, 0.2, 0.3}, embeddings, 2)
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Content != "matching" {
		t.Fatalf("got %q", got[0].Content)
	}
}

func TestNearestNoMatchingDimensions(t *testing.T) {
	embeddings := []Embedding{{Content: "only", Vector: []float64{1.0}}}
	if got := Nearest([]float64{0.1, 0.2, 0.3}, embeddings, 1); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

func TestNearestClampsK(t *testing.T) {
	embeddings := []Embedding{{Content: "only", Vector: []float64{1}}}
	got := Nearest([]float64{0}, embeddings, 5)
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
}
