// Package embedder provides interfaces and implementations for text embedding.
package embedder

import "context"

// DefaultModel is the embedding model used when none is configured. Its
// 384-dimension vectors are small enough to keep the full promotion
// matrix in memory.
const DefaultModel = "all-minilm"

// Embedder defines the interface for text embedding services.
type Embedder interface {
	// Embed generates an embedding vector for a single text input.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for multiple text inputs.
	// Returns a slice of embeddings in the same order as the input texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the embedding vectors.
	Dimension() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}

// ModelConfig holds configuration for a specific embedding model.
type ModelConfig struct {
	Dimension int // Embedding dimension
}

// KnownModels maps embedding model names to their configurations.
// Promotion titles and descriptions are short, so context limits are
// not tracked here.
var KnownModels = map[string]ModelConfig{
	"all-minilm": {
		Dimension: 384,
	},
	"nomic-embed-text": {
		Dimension: 768,
	},
	"mxbai-embed-large": {
		Dimension: 1024,
	},
	"snowflake-arctic-embed": {
		Dimension: 1024,
	},
}

// GetModelConfig returns the configuration for a model, or defaults if unknown.
func GetModelConfig(modelName string) ModelConfig {
	if cfg, ok := KnownModels[modelName]; ok {
		return cfg
	}
	return ModelConfig{Dimension: 384}
}
