package core

import "context"

// EmbeddingProvider converts texts into fixed-dimension vectors.
// Implementations must return one vector per input text, in order.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider produces a completion for a fully assembled prompt.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// DocumentExtractor turns raw document bytes into per-page text.
type DocumentExtractor interface {
	Extract(ctx context.Context, raw []byte) ([]Page, error)
}

// ObjectStore keeps uploaded files so the background ingestion worker
// can read them back. Abstract so local disk and S3 are interchangeable.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (ref string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
