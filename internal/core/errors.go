package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDocument means extraction produced no text at all.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrNotInitialized means a question was asked before models and an
	// index were both available.
	ErrNotInitialized = errors.New("pipeline not initialized")

	// ErrSessionNotReady means the session is still processing its document.
	ErrSessionNotReady = errors.New("session not ready")

	// ErrSessionNotFound means the session id was never created.
	ErrSessionNotFound = errors.New("session not found")
)

// EmbeddingError reports a failed index build. No partial index survives it.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding failed: %v", e.Err) }
func (e *EmbeddingError) Unwrap() error { return e.Err }

// IngestionError aggregates any failure during extract/chunk/index so the
// caller can attach a single root cause to session state.
type IngestionError struct {
	Err error
}

func (e *IngestionError) Error() string { return fmt.Sprintf("ingestion failed: %v", e.Err) }
func (e *IngestionError) Unwrap() error { return e.Err }

// GenerationError reports a failure while answering a single question.
// It never mutates session state.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation failed: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }
