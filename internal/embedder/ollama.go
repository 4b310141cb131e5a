package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultOllamaBaseURL is the default Ollama API base URL.
	DefaultOllamaBaseURL = "http://localhost:11434"

	// DefaultBatchConcurrency bounds concurrent embed requests when none
	// is configured.
	DefaultBatchConcurrency = 4

	// maxInputsPerRequest caps how many texts one embed call carries.
	// Larger batches are split into chunks and embedded concurrently.
	maxInputsPerRequest = 32
)

// OllamaEmbedder embeds text through Ollama's batched /api/embed
// endpoint. It never retries or falls back on its own: errors surface
// to the semantic index, which owns the failover to the mock provider
// and flags results served that way as degraded.
type OllamaEmbedder struct {
	baseURL     string
	model       string
	dimension   int
	concurrency int
	httpClient  *http.Client
}

// OllamaOption is a functional option for configuring OllamaEmbedder.
type OllamaOption func(*OllamaEmbedder)

// WithBaseURL points the embedder at a non-default Ollama instance.
func WithBaseURL(url string) OllamaOption {
	return func(e *OllamaEmbedder) {
		if url != "" {
			e.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithModel selects the embedding model. The vector dimension is
// resolved from KnownModels.
func WithModel(model string) OllamaOption {
	return func(e *OllamaEmbedder) {
		if model != "" {
			e.model = model
		}
	}
}

// WithBatchConcurrency bounds how many embed requests run at once
// during EmbedBatch. Values below one keep the default.
func WithBatchConcurrency(n int) OllamaOption {
	return func(e *OllamaEmbedder) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewOllamaEmbedder creates an embedder with the given options. Request
// deadlines come from the caller's context, not the HTTP client.
func NewOllamaEmbedder(opts ...OllamaOption) *OllamaEmbedder {
	e := &OllamaEmbedder{
		baseURL:     DefaultOllamaBaseURL,
		model:       DefaultModel,
		concurrency: DefaultBatchConcurrency,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dimension = GetModelConfig(e.model).Dimension
	return e
}

// ollamaEmbedRequest is the body for Ollama's batched embed API.
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse carries one vector per input, in input order.
type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed generates the embedding vector for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in chunks of maxInputsPerRequest, running up
// to the configured number of requests concurrently. Vectors come back
// in input order; the first failed chunk aborts the rest.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for start := 0; start < len(texts); start += maxInputsPerRequest {
		end := min(start+maxInputsPerRequest, len(texts))
		g.Go(func() error {
			vecs, err := e.embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embedding texts %d-%d: %w", start, end-1, err)
			}
			copy(results[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// embed performs one embed call and validates the response shape. Every
// vector must match the model's dimension: the flat disk cache and the
// mock failover both assume it.
func (e *OllamaEmbedder) embed(ctx context.Context, input []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Embeddings) != len(input) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs", len(result.Embeddings), len(input))
	}
	for i, vec := range result.Embeddings {
		if len(vec) != e.dimension {
			return nil, fmt.Errorf("input %d: got %d-dimensional vector, want %d", i, len(vec), e.dimension)
		}
	}
	return result.Embeddings, nil
}

// apiError extracts the message Ollama returns as {"error": ...},
// falling back to the raw body.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
}

// Dimension returns the dimensionality of the embedding vectors.
func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model being used.
func (e *OllamaEmbedder) ModelName() string {
	return e.model
}

var _ Embedder = (*OllamaEmbedder)(nil)
