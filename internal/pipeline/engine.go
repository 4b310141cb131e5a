// Package pipeline composes retrieval, ranking, placement, and query
// expansion into a single engine behind transport-independent operations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gypgypgyp/PromoSearchMCP/internal/config"
	"github.com/gypgypgyp/PromoSearchMCP/internal/corpus"
	"github.com/gypgypgyp/PromoSearchMCP/internal/embedder"
	"github.com/gypgypgyp/PromoSearchMCP/internal/expander"
	"github.com/gypgypgyp/PromoSearchMCP/internal/index"
	"github.com/gypgypgyp/PromoSearchMCP/internal/llm"
	"github.com/gypgypgyp/PromoSearchMCP/internal/metrics"
	"github.com/gypgypgyp/PromoSearchMCP/internal/placement"
	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
	"github.com/gypgypgyp/PromoSearchMCP/internal/ranker"
)

var (
	// ErrNotReady reports that the corpus could not be loaded or the
	// promotion index could not be built.
	ErrNotReady = errors.New("engine not ready")

	// ErrEmptyQuery reports a missing search or expansion query.
	ErrEmptyQuery = errors.New("query is required")
)

// DegradeReason identifies the stage that substituted a fallback for
// its primary behavior.
type DegradeReason string

const (
	// DegradeEmbedderFallback reports that the query was embedded by the
	// fallback provider.
	DegradeEmbedderFallback DegradeReason = "embedder_fallback"

	// DegradeScorerDefault reports that candidates received the default
	// score because the scorer failed.
	DegradeScorerDefault DegradeReason = "scorer_default"

	// DegradeRuleExpansion reports that a configured LLM failed and the
	// query was expanded by rules instead.
	DegradeRuleExpansion DegradeReason = "rule_expansion"

	// DegradePlacementSkipped reports that placement failed and the
	// organic results were returned unchanged.
	DegradePlacementSkipped DegradeReason = "placement_skipped"
)

// SearchResult is one scored promotion from the index.
type SearchResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Link        string  `json:"link"`
	Score       float64 `json:"score"`
}

// SearchResponse is the result of a Search operation.
type SearchResponse struct {
	Results  []SearchResult  `json:"results"`
	Degraded []DegradeReason `json:"degraded,omitempty"`
}

// RankResponse is the result of a Rank operation.
type RankResponse struct {
	RankedPromotions []promo.RankedPromotion `json:"ranked_promotions"`
	Degraded         []DegradeReason         `json:"degraded,omitempty"`
}

// PlaceResponse is the result of a Place operation.
type PlaceResponse struct {
	InjectedResults []string        `json:"injected_results"`
	Degraded        []DegradeReason `json:"degraded,omitempty"`
}

// ExpandResponse is the result of an Expand operation.
type ExpandResponse struct {
	ExpandedQueries []string        `json:"expanded_queries"`
	Degraded        []DegradeReason `json:"degraded,omitempty"`
}

// Engine owns the pipeline stages and exposes the boundary operations.
// All methods are safe for concurrent use.
type Engine struct {
	cfg      *config.Config
	index    *index.SemanticIndex
	ranker   *ranker.Ranker
	planner  *placement.Planner
	expander *expander.Expander
	metrics  *metrics.Metrics
	embCache *embedder.CachedEmbedder
	logger   *slog.Logger

	mu    sync.Mutex
	ready bool
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the Engine and its stages.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New assembles an Engine from configuration. The index stays empty
// until EnsureReady loads the corpus.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		metrics: metrics.New(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	indexOpts := []index.Option{
		index.WithDiskCache(cfg.EmbeddingsCachePath),
		index.WithEmbedTimeout(cfg.EmbedTimeout),
		index.WithLogger(e.logger.With("component", "index")),
	}

	var primary embedder.Embedder
	switch cfg.EmbeddingProvider {
	case "ollama":
		e.embCache = embedder.NewCachedEmbedder(
			embedder.NewOllamaEmbedder(
				embedder.WithBaseURL(cfg.OllamaBaseURL),
				embedder.WithModel(cfg.EmbeddingModel),
				embedder.WithBatchConcurrency(cfg.EmbedBatchConcurrency),
			),
			embedder.DefaultCacheEntries,
			embedder.DefaultCacheTTL,
		)
		primary = e.embCache
		indexOpts = append(indexOpts, index.WithFallback(embedder.NewMockEmbedder(cfg.EmbeddingModel)))
	case "mock":
		primary = embedder.NewMockEmbedder(cfg.EmbeddingModel)
	default:
		e.logger.Warn("unknown embedding provider, using mock",
			"provider", cfg.EmbeddingProvider)
		primary = embedder.NewMockEmbedder(cfg.EmbeddingModel)
	}
	e.index = index.New(primary, indexOpts...)

	rankerLogger := e.logger.With("component", "ranker")
	scorer := ranker.ScorerForType(cfg.RankingModelType, cfg.RankingWeightsPath, rankerLogger)
	e.ranker = ranker.New(scorer, ranker.WithLogger(rankerLogger))

	e.planner = placement.NewPlanner(placement.WithLogger(e.logger.With("component", "placement")))

	expOpts := []expander.Option{
		expander.WithMaxQueries(cfg.MaxExpandedQueries),
		expander.WithLogger(e.logger.With("component", "expander")),
	}
	switch cfg.LLMProvider {
	case "ollama":
		expOpts = append(expOpts, expander.WithGenerator(llm.NewOllamaClient(
			llm.WithBaseURL(cfg.OllamaBaseURL),
			llm.WithModel(cfg.LLMModel),
		)))
	case "", "none":
	default:
		e.logger.Warn("unknown llm provider, query expansion is rule-based",
			"provider", cfg.LLMProvider)
	}
	e.expander = expander.New(expOpts...)

	return e
}

// Metrics returns the engine's metric collectors for registration.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// EnsureReady loads the promotion corpus and warms the index. It is
// safe to call concurrently and is a no-op after the first success.
func (e *Engine) EnsureReady(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		return nil
	}

	if e.index.Len() == 0 {
		e.index.Add(corpus.Load(e.cfg.PromotionsDataPath, e.logger)...)
	}
	if err := e.index.Rebuild(ctx, false); err != nil {
		return fmt.Errorf("building promotion index: %w", err)
	}

	e.metrics.SetIndexPromotions(e.index.Len())
	e.ready = true
	return nil
}

// Ready reports whether the corpus is loaded and the index is built.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Close releases background resources held by the engine.
func (e *Engine) Close() {
	if e.embCache != nil {
		e.embCache.Close()
	}
}

// Search embeds the query and returns the closest promotions, boosted
// by the profile when one is given.
func (e *Engine) Search(ctx context.Context, query string, topK int, profile *promo.UserProfile) (SearchResponse, error) {
	start := time.Now()

	if query == "" {
		return SearchResponse{}, ErrEmptyQuery
	}
	if err := e.EnsureReady(ctx); err != nil {
		return SearchResponse{}, fmt.Errorf("%w: %v", ErrNotReady, err)
	}

	if topK <= 0 || topK > e.cfg.MaxSearchResults {
		topK = e.cfg.MaxSearchResults
	}

	scored, degraded, err := e.index.Search(ctx, query, topK, profile)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("searching promotions: %w", err)
	}

	resp := SearchResponse{Results: make([]SearchResult, 0, len(scored))}
	for _, s := range scored {
		resp.Results = append(resp.Results, SearchResult{
			ID:          s.Promotion.ID,
			Title:       s.Promotion.Title,
			Description: s.Promotion.Description,
			Link:        s.Promotion.Link,
			Score:       s.Score,
		})
	}
	if degraded {
		resp.Degraded = append(resp.Degraded, DegradeEmbedderFallback)
		e.metrics.IncFallback(string(DegradeEmbedderFallback))
	}

	e.metrics.ObserveOp(metrics.OpSearch, time.Since(start).Seconds(), degraded)
	return resp, nil
}

// Rank orders candidates by predicted click-through score.
func (e *Engine) Rank(ctx context.Context, candidates []promo.Promotion, profile *promo.UserProfile) RankResponse {
	start := time.Now()

	var p promo.UserProfile
	if profile != nil {
		p = *profile
	}

	ranked, degraded := e.ranker.Rank(candidates, p)

	resp := RankResponse{RankedPromotions: ranked}
	if degraded {
		resp.Degraded = append(resp.Degraded, DegradeScorerDefault)
		e.metrics.IncFallback(string(DegradeScorerDefault))
	}

	e.metrics.ObserveOp(metrics.OpRank, time.Since(start).Seconds(), degraded)
	return resp
}

// Place interleaves sponsored content into organic results. A placement
// failure returns the organic results unchanged rather than an error.
func (e *Engine) Place(ctx context.Context, organic []string, promotions []promo.Promotion) PlaceResponse {
	start := time.Now()

	placed, degraded := e.place(organic, promotions)

	resp := PlaceResponse{InjectedResults: placed}
	if degraded {
		resp.Degraded = append(resp.Degraded, DegradePlacementSkipped)
		e.metrics.IncFallback(string(DegradePlacementSkipped))
	}

	e.metrics.ObserveOp(metrics.OpPlace, time.Since(start).Seconds(), degraded)
	return resp
}

// place shields callers from planner panics.
func (e *Engine) place(organic []string, promotions []promo.Promotion) (placed []string, degraded bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("placement failed, returning organic results unchanged",
				"panic", r)
			placed = organic
			if placed == nil {
				placed = []string{}
			}
			degraded = true
		}
	}()

	return e.planner.Place(organic, promotions), false
}

// Expand fans the query out into long-tail variants.
func (e *Engine) Expand(ctx context.Context, query string) (ExpandResponse, error) {
	start := time.Now()

	if query == "" {
		return ExpandResponse{}, ErrEmptyQuery
	}

	queries, degraded := e.expander.Expand(ctx, query)

	resp := ExpandResponse{ExpandedQueries: queries}
	if degraded {
		resp.Degraded = append(resp.Degraded, DegradeRuleExpansion)
		e.metrics.IncFallback(string(DegradeRuleExpansion))
	}

	e.metrics.ObserveOp(metrics.OpExpand, time.Since(start).Seconds(), degraded)
	return resp, nil
}
