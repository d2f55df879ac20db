package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-large"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"3072"`

	ChunkMaxWords int `envconfig:"CHUNK_MAX_WORDS" default:"800"`
	EmbedWorkers  int `envconfig:"EMBED_WORKERS" default:"4"`

	SearchK             int `envconfig:"SEARCH_K" default:"5"`
	SearchCandidatePool int `envconfig:"SEARCH_CANDIDATE_POOL" default:"1000"`

	IngestTimeout time.Duration `envconfig:"INGEST_TIMEOUT" default:"5m"`
	QueryTimeout  time.Duration `envconfig:"QUERY_TIMEOUT" default:"30s"`

	// Orchestration service notified after each successful ingestion.
	WebhookURL string `envconfig:"WEBHOOK_URL"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"minutex-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("MINUTEX", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasWebhook() bool {
	return c.WebhookURL != ""
}
