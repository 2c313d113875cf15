package knowledge

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Embedding pairs a fragment of the corpus with its vector. All
// vectors in a loaded set share one dimensionality.
type Embedding struct {
	Content string    `json:"content"`
	Vector  []float64 `json:"vector"`
}

// embeddingsFile matches the on-disk layout: {"embeddings": [...]}.
type embeddingsFile struct {
	Embeddings []Embedding `json:"embeddings"`
}

// LoadEmbeddings reads a pre-computed embedding set from a JSON file.
func LoadEmbeddings(path string) ([]Embedding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	var f embeddingsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode embeddings: %w", err)
	}
	if len(f.Embeddings) == 0 {
		return nil, fmt.Errorf("embeddings file %s holds no entries", path)
	}
	dim := len(f.Embeddings[0].Vector)
	for i, e := range f.Embeddings {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(e.Vector), dim)
		}
	}
	return f.Embeddings, nil
}

// SaveEmbeddings writes an embedding set to a JSON file.
func SaveEmbeddings(path string, embeddings []Embedding) error {
	data, err := json.Marshal(embeddingsFile{Embeddings: embeddings})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Distance is the euclidean distance between two vectors. Vectors of
// different dimensionality are infinitely far apart; the provider can
// hand back a query vector that does not match the stored set, and
// that must not take the process down.
func Distance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Nearest returns the k embeddings closest to the query vector,
// nearest first. Embeddings whose dimensionality does not match the
// query are excluded; a query that matches nothing returns an empty
// slice.
func Nearest(query []float64, embeddings []Embedding, k int) []Embedding {
	type scored struct {
		e    Embedding
		dist float64
	}
	distances := make([]scored, 0, len(embeddings))
	for _, e := range embeddings {
		if len(e.Vector) != len(query) {
			continue
		}
		distances = append(distances, scored{e: e, dist: Distance(query, e.Vector)})
	}
	sort.Slice(distances, func(i, j int) bool { return distances[i].dist < distances[j].dist })
	if k > len(distances) {
		k = len(distances)
	}
	out := make([]Embedding, k)
	for i := 0; i < k; i++ {
		out[i] = distances[i].e
	}
	return out
}
