// Package pipeline implements the document question-answering core: text
// chunking, embedding and indexing, top-k retrieval, and grounded answer
// generation, composed by the Pipeline orchestrator.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"docchat/internal/core"
)

// Config tunes one pipeline instance. Zero values fall back to the defaults
// the constructors apply.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	RetrieverK   int
	EmbedBatch   int
	Generation   core.GenerateOptions
}

// Pipeline orchestrates ingestion and answering for a single document.
// Providers are injected (shared across sessions); the index is built once
// by Ingest and read-only afterwards.
type Pipeline struct {
	extractor core.DocumentExtractor
	embedder  core.EmbeddingProvider
	llm       core.LLMProvider
	cfg       Config

	mu    sync.RWMutex
	index *Index
}

func New(extractor core.DocumentExtractor, embedder core.EmbeddingProvider, llm core.LLMProvider, cfg Config) *Pipeline {
	if cfg.RetrieverK <= 0 {
		cfg.RetrieverK = 3
	}
	return &Pipeline{extractor: extractor, embedder: embedder, llm: llm, cfg: cfg}
}

// Ingest extracts, chunks and indexes the raw document. On failure the
// pipeline keeps no partial index; on success the index becomes visible
// atomically.
func (p *Pipeline) Ingest(ctx context.Context, raw []byte) error {
	if p.extractor == nil || p.embedder == nil {
		return &core.IngestionError{Err: core.ErrNotInitialized}
	}

	pages, err := p.extractor.Extract(ctx, raw)
	if err != nil {
		return &core.IngestionError{Err: fmt.Errorf("extract text: %w", err)}
	}

	chunks, err := NewChunker(p.cfg.ChunkSize, p.cfg.ChunkOverlap).Split(pages)
	if err != nil {
		return &core.IngestionError{Err: err}
	}

	idx, err := NewIndexer(p.embedder, p.cfg.EmbedBatch).Build(ctx, chunks)
	if err != nil {
		return &core.IngestionError{Err: err}
	}

	p.mu.Lock()
	p.index = idx
	p.mu.Unlock()
	return nil
}

// Answer retrieves the top-k chunks for the question and generates a
// grounded answer. It fails with ErrNotInitialized until Ingest succeeded.
func (p *Pipeline) Answer(ctx context.Context, question string) (core.Answer, error) {
	p.mu.RLock()
	idx := p.index
	p.mu.RUnlock()

	if idx == nil || p.embedder == nil || p.llm == nil {
		return core.Answer{}, core.ErrNotInitialized
	}

	vecs, err := p.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return core.Answer{}, &core.GenerationError{Err: fmt.Errorf("embed question: %w", err)}
	}
	if len(vecs) == 0 {
		return core.Answer{}, &core.GenerationError{Err: fmt.Errorf("embed question: no vector returned")}
	}

	hits := idx.Search(vecs[0], p.cfg.RetrieverK)
	return NewGenerator(p.llm, p.cfg.Generation).Answer(ctx, question, hits)
}

// Index returns the built index, or nil before a successful Ingest.
func (p *Pipeline) Index() *Index {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index
}
