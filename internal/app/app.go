package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docchat/internal/config"
	"docchat/internal/core"
	"docchat/internal/core/extract"
	"docchat/internal/core/llm"
	"docchat/internal/ingest"
	"docchat/internal/pipeline"
	"docchat/internal/session"
	"docchat/internal/storage"
)

// App wires the upload store, model pool, session registry, background
// ingestor and HTTP server together.
type App struct {
	Registry *session.Registry
	Ingestor *ingest.Ingestor
	Server   *Server

	log *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("upload store ready", zap.String("backend", cfg.Storage))

	pool, err := llm.NewPool(cfg.Provider, cfg.AIAPIKey, cfg.OllamaURL)
	if err != nil {
		return nil, err
	}

	// Models are shared across sessions: the pool initializes one provider
	// per model identifier for the whole process.
	embedder, err := pool.Embedder(ctx, cfg.EmbedModel)
	if err != nil {
		return nil, err
	}
	generator, err := pool.LLM(ctx, cfg.GenModel)
	if err != nil {
		return nil, err
	}
	log.Info("model providers ready",
		zap.String("provider", cfg.Provider),
		zap.String("embed_model", cfg.EmbedModel),
		zap.String("gen_model", cfg.GenModel))

	pipeCfg := pipeline.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		RetrieverK:   cfg.RetrieverK,
		EmbedBatch:   cfg.EmbedBatch,
		Generation: core.GenerateOptions{
			MaxTokens:     cfg.MaxNewTokens,
			Temperature:   cfg.Temperature,
			TopP:          cfg.TopP,
			RepeatPenalty: cfg.RepetitionPenalty,
		},
	}
	factory := func() *pipeline.Pipeline {
		return pipeline.New(extract.NewPDFExtractor(), embedder, generator, pipeCfg)
	}

	registry := session.NewRegistry(log)
	ingestor := ingest.NewIngestor(store, registry, factory, log)
	ingestor.Start(ctx, cfg.IngestWorkers)

	server := NewServer(cfg, store, registry, ingestor, log)

	return &App{Registry: registry, Ingestor: ingestor, Server: server, log: log}, nil
}

func newStore(ctx context.Context, cfg *config.Config) (core.ObjectStore, error) {
	switch cfg.Storage {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			AccessKey: cfg.AwsAccessKey,
			SecretKey: cfg.AwsSecretKey,
			Region:    cfg.AwsRegion,
			Bucket:    cfg.BucketName,
		})
	case "disk", "":
		return storage.NewDiskStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
