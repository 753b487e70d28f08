package pipeline

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/core"
)

// tokenEmbedder is a deterministic bag-of-words embedder for tests: each
// token is hashed into a fixed-dimension count vector, so texts sharing
// words get similar vectors.
type tokenEmbedder struct {
	dim int
}

func (e *tokenEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	dim := e.dim
	if dim == 0 {
		dim = 64
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, dim)
		tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, tok := range tokens {
			h := fnv.New32a()
			_, _ = h.Write([]byte(tok))
			vec[h.Sum32()%uint32(dim)]++
		}
		out[i] = vec
	}
	return out, nil
}

// failingEmbedder fails every call.
type failingEmbedder struct{}

func (failingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("model unavailable")
}

// raggedEmbedder returns vectors of inconsistent dimension.
type raggedEmbedder struct{}

func (raggedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 3+i%2)
	}
	return out, nil
}

// constEmbedder maps every text to the same vector, forcing score ties.
type constEmbedder struct{}

func (constEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func testChunks(texts ...string) []core.Chunk {
	chunks := make([]core.Chunk, len(texts))
	for i, tx := range texts {
		chunks[i] = core.Chunk{Text: tx, Page: 1, Seq: i}
	}
	return chunks
}

func TestIndexerBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("builds normalized index", func(t *testing.T) {
		idx, err := NewIndexer(&tokenEmbedder{}, 2).Build(ctx, testChunks("alpha beta", "gamma delta", "epsilon"))
		require.NoError(t, err)
		assert.Equal(t, 3, idx.Len())
		assert.Equal(t, 64, idx.Dim())

		for _, e := range idx.entries {
			var sum float64
			for _, x := range e.vec {
				sum += float64(x) * float64(x)
			}
			assert.InDelta(t, 1.0, sum, 1e-5)
		}
	})

	t.Run("embedder failure aborts whole build", func(t *testing.T) {
		idx, err := NewIndexer(failingEmbedder{}, 2).Build(ctx, testChunks("a", "b"))
		assert.Nil(t, idx)
		var embedErr *core.EmbeddingError
		assert.ErrorAs(t, err, &embedErr)
	})

	t.Run("dimension mismatch aborts whole build", func(t *testing.T) {
		idx, err := NewIndexer(raggedEmbedder{}, 10).Build(ctx, testChunks("a", "b", "c"))
		assert.Nil(t, idx)
		var embedErr *core.EmbeddingError
		assert.ErrorAs(t, err, &embedErr)
	})

	t.Run("no chunks", func(t *testing.T) {
		_, err := NewIndexer(&tokenEmbedder{}, 2).Build(ctx, nil)
		var embedErr *core.EmbeddingError
		assert.ErrorAs(t, err, &embedErr)
	})
}

func TestIndexSearch(t *testing.T) {
	ctx := context.Background()
	emb := &tokenEmbedder{}

	build := func(t *testing.T, texts ...string) *Index {
		t.Helper()
		idx, err := NewIndexer(emb, 4).Build(ctx, testChunks(texts...))
		require.NoError(t, err)
		return idx
	}

	query := func(t *testing.T, text string) []float32 {
		t.Helper()
		vecs, err := emb.EmbedTexts(ctx, []string{text})
		require.NoError(t, err)
		return vecs[0]
	}

	t.Run("most similar chunk wins", func(t *testing.T) {
		idx := build(t,
			"Paris is the capital of France.",
			"It has a population of over 2 million.",
		)
		hits := idx.Search(query(t, "What is the capital of France?"), 2)
		require.Len(t, hits, 2)
		assert.Contains(t, hits[0].Chunk.Text, "capital of France")
		assert.Greater(t, hits[0].Score, hits[1].Score)
	})

	t.Run("deterministic across repeated searches", func(t *testing.T) {
		idx := build(t, "cats and dogs", "dogs and birds", "fish only", "birds and cats")
		q := query(t, "dogs")
		first := idx.Search(q, 3)
		for i := 0; i < 5; i++ {
			again := idx.Search(q, 3)
			assert.Equal(t, first, again)
		}
	})

	t.Run("never more than k or more than indexed", func(t *testing.T) {
		idx := build(t, "one", "two", "three")
		assert.Len(t, idx.Search(query(t, "one"), 2), 2)
		assert.Len(t, idx.Search(query(t, "one"), 10), 3)
		assert.Empty(t, idx.Search(query(t, "one"), 0))
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		idx, err := NewIndexer(constEmbedder{}, 2).Build(ctx, testChunks("first", "second", "third"))
		require.NoError(t, err)
		hits := idx.Search([]float32{1, 0, 0}, 3)
		require.Len(t, hits, 3)
		for i, want := range []string{"first", "second", "third"} {
			assert.Equal(t, want, hits[i].Chunk.Text, fmt.Sprintf("position %d", i))
		}
	})

	t.Run("empty index yields no results", func(t *testing.T) {
		idx := &Index{}
		assert.Empty(t, idx.Search([]float32{1}, 3))
	})
}
