package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"docchat/internal/core"
)

// Indexer builds a vector index by embedding chunks in batches.
type Indexer struct {
	embedder  core.EmbeddingProvider
	batchSize int
}

func NewIndexer(embedder core.EmbeddingProvider, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = 16
	}
	return &Indexer{embedder: embedder, batchSize: batchSize}
}

// Build embeds every chunk and assembles the index. Batches run through an
// errgroup so one failure cancels the rest; on any error no partial index is
// returned. All vectors must share one dimension and are L2-normalized.
func (ix *Indexer) Build(ctx context.Context, chunks []core.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, &core.EmbeddingError{Err: core.ErrEmptyDocument}
	}

	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for start := 0; start < len(chunks); start += ix.batchSize {
		start := start
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Text)
			}
			vecs, err := ix.embedder.EmbedTexts(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed batch at %d: %w", start, err)
			}
			if len(vecs) != len(texts) {
				return fmt.Errorf("embed batch at %d: got %d vectors for %d texts", start, len(vecs), len(texts))
			}
			copy(vectors[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &core.EmbeddingError{Err: err}
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("embedder returned empty vectors")}
	}
	entries := make([]entry, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) != dim {
			return nil, &core.EmbeddingError{
				Err: fmt.Errorf("chunk %d: vector dimension %d, want %d", i, len(vectors[i]), dim),
			}
		}
		entries[i] = entry{chunk: c, vec: normalize(vectors[i])}
	}
	return &Index{entries: entries, dim: dim}, nil
}
