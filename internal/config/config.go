package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Pipeline tuning.
	ChunkSize     int
	ChunkOverlap  int
	RetrieverK    int
	EmbedBatch    int
	IngestWorkers int

	// Generation sampling parameters.
	MaxNewTokens      int
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64

	// Model selection.
	Provider   string // "gemini" or "ollama"
	EmbedModel string
	GenModel   string
	AIAPIKey   string
	OllamaURL  string

	// Upload retention.
	Storage      string // "disk" or "s3"
	UploadDir    string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8000"),

		ChunkSize:     getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:  getEnvInt("CHUNK_OVERLAP", 50),
		RetrieverK:    getEnvInt("RETRIEVER_K", 3),
		EmbedBatch:    getEnvInt("EMBED_BATCH", 16),
		IngestWorkers: getEnvInt("INGEST_WORKERS", 2),

		MaxNewTokens:      getEnvInt("MAX_NEW_TOKENS", 512),
		Temperature:       getEnvFloat("TEMPERATURE", 0.7),
		TopP:              getEnvFloat("TOP_P", 0.95),
		RepetitionPenalty: getEnvFloat("REPETITION_PENALTY", 1.1),

		Provider:   getEnv("MODEL_PROVIDER", "ollama"),
		EmbedModel: getEnv("EMBED_MODEL", "nomic-embed-text"),
		GenModel:   getEnv("GEN_MODEL", "tinyllama"),
		AIAPIKey:   getEnv("GEMINI_API_KEY", ""),
		OllamaURL:  getEnv("OLLAMA_URL", "http://localhost:11434"),

		Storage:      getEnv("STORAGE", "disk"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "docchat-uploads"),
	}
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %g", key, v, def)
		return def
	}
	return f
}
