// Package llm provides embedding and generation model adapters (Gemini and
// Ollama) plus a process-wide pool that shares one provider per model
// identifier across all sessions.
package llm

import (
	"context"
	"fmt"
	"sync"

	"docchat/internal/core"
)

// Provider names accepted by NewPool.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Pool hands out embedding and generation providers keyed by model
// identifier. Each model is initialized at most once for the process, so
// concurrent sessions share clients instead of loading their own.
type Pool struct {
	provider  string
	apiKey    string
	ollamaURL string

	mu        sync.Mutex
	embedders map[string]core.EmbeddingProvider
	llms      map[string]core.LLMProvider
}

func NewPool(provider, apiKey, ollamaURL string) (*Pool, error) {
	switch provider {
	case ProviderGemini, ProviderOllama:
	default:
		return nil, fmt.Errorf("unknown model provider %q", provider)
	}
	return &Pool{
		provider:  provider,
		apiKey:    apiKey,
		ollamaURL: ollamaURL,
		embedders: make(map[string]core.EmbeddingProvider),
		llms:      make(map[string]core.LLMProvider),
	}, nil
}

// Embedder returns the shared embedding provider for the model, creating
// it on first use.
func (p *Pool) Embedder(ctx context.Context, model string) (core.EmbeddingProvider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.embedders[model]; ok {
		return e, nil
	}
	var (
		e   core.EmbeddingProvider
		err error
	)
	switch p.provider {
	case ProviderGemini:
		e, err = NewGeminiEmbedder(ctx, p.apiKey, model)
	case ProviderOllama:
		e = NewOllamaEmbedder(p.ollamaURL, model)
	}
	if err != nil {
		return nil, fmt.Errorf("init embedder %q: %w", model, err)
	}
	p.embedders[model] = e
	return e, nil
}

// LLM returns the shared generation provider for the model, creating it on
// first use.
func (p *Pool) LLM(ctx context.Context, model string) (core.LLMProvider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.llms[model]; ok {
		return l, nil
	}
	var (
		l   core.LLMProvider
		err error
	)
	switch p.provider {
	case ProviderGemini:
		l, err = NewGeminiLLM(ctx, p.apiKey, model)
	case ProviderOllama:
		l = NewOllamaLLM(p.ollamaURL, model)
	}
	if err != nil {
		return nil, fmt.Errorf("init llm %q: %w", model, err)
	}
	p.llms[model] = l
	return l, nil
}
