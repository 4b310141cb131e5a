package embedder

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
)

// MockEmbedder generates deterministic pseudo-embeddings without a model
// backend. The vector for a text is drawn from a random source seeded by
// a hash of the lower-cased input, then normalized to unit length, so
// equal texts (ignoring case) always yield bit-identical vectors. It
// serves as the default provider and as the failover target when a real
// provider is unreachable.
type MockEmbedder struct {
	model     string
	dimension int
}

// NewMockEmbedder creates a mock embedder whose vector dimension matches
// the named model, so it can stand in for the real provider.
func NewMockEmbedder(model string) *MockEmbedder {
	if model == "" {
		model = DefaultModel
	}
	return &MockEmbedder{
		model:     model,
		dimension: GetModelConfig(model).Dimension,
	}
}

// Embed generates the deterministic unit-length vector for a single text.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(text)))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	raw := make([]float64, m.dimension)
	var sumSq float64
	for i := range raw {
		raw[i] = rng.NormFloat64()
		sumSq += raw[i] * raw[i]
	}
	norm := math.Sqrt(sumSq)

	vec := make([]float32, m.dimension)
	for i, v := range raw {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// EmbedBatch generates vectors for multiple texts in input order.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimension returns the dimensionality of the embedding vectors.
func (m *MockEmbedder) Dimension() int {
	return m.dimension
}

// ModelName returns the model this mock stands in for.
func (m *MockEmbedder) ModelName() string {
	return m.model
}

var _ Embedder = (*MockEmbedder)(nil)
