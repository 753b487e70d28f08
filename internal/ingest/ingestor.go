// Package ingest runs document processing in the background so upload
// requests return immediately while extraction, chunking and indexing
// happen on worker goroutines.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"docchat/internal/core"
	"docchat/internal/pipeline"
	"docchat/internal/session"
)

// Job tells a worker which stored upload belongs to which session.
type Job struct {
	SessionID string
	Key       string
}

// PipelineFactory builds a fresh pipeline for one document. Providers
// inside it are shared; the index it builds is session-owned.
type PipelineFactory func() *pipeline.Pipeline

// Ingestor processes upload jobs from a bounded queue and resolves each
// session to Ready or Error exactly once. A failed document never affects
// the registry or other sessions.
type Ingestor struct {
	store       core.ObjectStore
	registry    *session.Registry
	newPipeline PipelineFactory
	jobs        chan Job
	timeout     time.Duration
	log         *zap.Logger
}

func NewIngestor(store core.ObjectStore, registry *session.Registry, factory PipelineFactory, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{
		store:       store,
		registry:    registry,
		newPipeline: factory,
		jobs:        make(chan Job, 64),
		timeout:     5 * time.Minute,
		log:         log,
	}
}

// Start launches numWorkers goroutines reading from the jobs channel.
func (i *Ingestor) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					i.log.Info("ingest worker shutting down", zap.Int("worker", w))
					return
				case job := <-i.jobs:
					i.log.Info("processing document",
						zap.String("session_id", job.SessionID), zap.Int("worker", w))
					i.processOne(ctx, job)
				}
			}
		}(w)
	}
}

// Enqueue schedules a job. If the queue is full, this call blocks until
// space frees up.
func (i *Ingestor) Enqueue(job Job) {
	i.jobs <- job
}

// processOne reads the stored upload, runs the pipeline, and attaches the
// outcome to the session. Errors stop here: they become session state.
func (i *Ingestor) processOne(ctx context.Context, job Job) {
	procCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	raw, err := i.store.Get(procCtx, job.Key)
	if err != nil {
		err = &core.IngestionError{Err: fmt.Errorf("read upload: %w", err)}
		i.log.Error("ingestion failed",
			zap.String("session_id", job.SessionID), zap.Error(err))
		i.registry.Fail(job.SessionID, err.Error())
		return
	}

	p := i.newPipeline()
	if err := p.Ingest(procCtx, raw); err != nil {
		i.log.Error("ingestion failed",
			zap.String("session_id", job.SessionID), zap.Error(err))
		i.registry.Fail(job.SessionID, err.Error())
		return
	}

	i.registry.Ready(job.SessionID, p)
	i.log.Info("document ready",
		zap.String("session_id", job.SessionID), zap.Int("chunks", p.Index().Len()))
}
