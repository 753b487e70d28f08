package pipeline

import (
	"math"
	"sort"

	"docchat/internal/core"
)

// entry pairs one chunk with its normalized embedding vector.
type entry struct {
	chunk core.Chunk
	vec   []float32
}

// Index is an immutable in-memory vector index over one document's chunks.
// It is built once per document and owned by exactly one session.
type Index struct {
	entries []entry
	dim     int
}

// Hit is one retrieval result: a chunk and its cosine similarity score.
type Hit struct {
	Chunk core.Chunk
	Score float32
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int { return len(idx.entries) }

// Dim returns the embedding dimension of the index.
func (idx *Index) Dim() int { return idx.dim }

// Search returns up to k chunks ordered by descending similarity. Ties keep
// the original chunk insertion order, so repeated searches over the same
// index are deterministic. An empty index yields no results.
func (idx *Index) Search(query []float32, k int) []Hit {
	if k <= 0 || len(idx.entries) == 0 {
		return nil
	}
	q := normalize(query)

	hits := make([]Hit, len(idx.entries))
	for i, e := range idx.entries {
		hits[i] = Hit{Chunk: e.chunk, Score: dot(e.vec, q)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// normalize returns an L2-normalized copy of v. The zero vector is returned
// as-is.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
