// Package config loads configuration from environment variables and .env files.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the promotion search service
type Config struct {
	// Server
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Embeddings
	EmbeddingProvider     string        `env:"EMBEDDING_PROVIDER" envDefault:"mock"`
	EmbeddingModel        string        `env:"EMBEDDING_MODEL" envDefault:"all-minilm"`
	EmbeddingsCachePath   string        `env:"EMBEDDINGS_CACHE_PATH" envDefault:"data/embeddings"`
	EmbedTimeout          time.Duration `env:"EMBED_TIMEOUT" envDefault:"10s"`
	EmbedBatchConcurrency int           `env:"EMBED_BATCH_CONCURRENCY" envDefault:"4"`

	// Ollama
	OllamaBaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`

	// Corpus
	PromotionsDataPath string `env:"PROMOTIONS_DATA_PATH" envDefault:"data/promotions.jsonl"`

	// Search
	MaxSearchResults int `env:"MAX_SEARCH_RESULTS" envDefault:"20"`

	// Ranking
	RankingModelType   string `env:"RANKING_MODEL_TYPE" envDefault:"fallback"`
	RankingWeightsPath string `env:"RANKING_WEIGHTS_PATH" envDefault:"models/ranker_weights.json"`

	// Query expansion
	LLMProvider        string `env:"LLM_PROVIDER" envDefault:"none"`
	LLMModel           string `env:"LLM_MODEL" envDefault:"llama3.2"`
	MaxExpandedQueries int    `env:"MAX_EXPANDED_QUERIES" envDefault:"5"`
}

// Load loads configuration from .env file (if present) and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
