// Package index implements the in-memory semantic index over the
// promotion corpus: embedding rows parallel to the record slice, cosine
// scoring, and profile-based boosting.
package index

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gypgypgyp/PromoSearchMCP/internal/embedder"
	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

const (
	interestBoost    = 0.1
	budgetMatchBoost = 0.05
	budgetNearBoost  = 0.02
	maxBoostedScore  = 1.0
)

// SemanticIndex holds promotions and their embedding vectors in parallel
// slices: matrix[i] is the vector for records[i]. Adding records marks
// the index stale; the next search rebuilds it.
type SemanticIndex struct {
	primary  embedder.Embedder
	fallback embedder.Embedder

	embedTimeout time.Duration
	cache        *vectorCache
	logger       *slog.Logger

	mu            sync.RWMutex
	records       []promo.Promotion
	matrix        [][]float32
	built         bool
	builtDegraded bool
}

// Option configures a SemanticIndex.
type Option func(*SemanticIndex)

// WithFallback sets an embedder used when the primary one fails or
// times out. Queries answered through it are reported as degraded.
func WithFallback(fb embedder.Embedder) Option {
	return func(idx *SemanticIndex) {
		idx.fallback = fb
	}
}

// WithDiskCache persists the embedding matrix under dir and reuses it
// across restarts when the record count matches.
func WithDiskCache(dir string) Option {
	return func(idx *SemanticIndex) {
		idx.cache = &vectorCache{dir: dir}
	}
}

// WithEmbedTimeout bounds each call to the primary embedder.
func WithEmbedTimeout(d time.Duration) Option {
	return func(idx *SemanticIndex) {
		idx.embedTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(idx *SemanticIndex) {
		idx.logger = logger
	}
}

// New creates an empty index backed by the given embedder.
func New(primary embedder.Embedder, opts ...Option) *SemanticIndex {
	idx := &SemanticIndex{
		primary: primary,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	if idx.cache != nil {
		idx.cache.logger = idx.logger
	}
	return idx
}

// Add appends promotions and marks the index for rebuild.
func (idx *SemanticIndex) Add(promotions ...promo.Promotion) {
	if len(promotions) == 0 {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.records = append(idx.records, promotions...)
	idx.built = false
	idx.logger.Info("added promotions to index",
		"count", len(promotions),
		"total", len(idx.records),
	)
}

// Len returns the number of indexed promotions.
func (idx *SemanticIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// Get returns the indexed promotion with the given id.
func (idx *SemanticIndex) Get(id string) (promo.Promotion, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, p := range idx.records {
		if p.ID == id {
			return p, true
		}
	}
	return promo.Promotion{}, false
}

// Rebuild computes embedding rows for every record. With force false it
// is a no-op on a current index. A disk-cached matrix with a matching
// record count is reused instead of re-embedding; the count is the only
// staleness key, so replacing records without changing their number
// keeps serving the cached vectors until a forced rebuild.
func (idx *SemanticIndex) Rebuild(ctx context.Context, force bool) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.rebuildLocked(ctx, force)
}

func (idx *SemanticIndex) rebuildLocked(ctx context.Context, force bool) error {
	if idx.built && !force {
		return nil
	}
	if len(idx.records) == 0 {
		idx.logger.Warn("no promotions to index")
		return nil
	}

	if idx.cache != nil && !force {
		if rows, ok := idx.cache.load(len(idx.records)); ok {
			idx.matrix = rows
			idx.built = true
			idx.builtDegraded = false
			idx.logger.Info("using cached promotion embeddings", "count", len(rows))
			return nil
		}
	}

	texts := make([]string, len(idx.records))
	for i, p := range idx.records {
		texts[i] = p.EmbeddingText()
	}

	idx.logger.Info("building promotion embeddings",
		"count", len(texts),
		"model", idx.primary.ModelName(),
	)
	rows, degraded, err := idx.embedBatch(ctx, texts)
	if err != nil {
		return err
	}

	idx.matrix = rows
	idx.built = true
	idx.builtDegraded = degraded

	if idx.cache != nil {
		if err := idx.cache.save(idx.primary.ModelName(), idx.primary.Dimension(), rows); err != nil {
			idx.logger.Warn("failed to cache promotion embeddings", "error", err)
		}
	}
	return nil
}

// Search embeds the query and returns up to topK promotions ordered by
// boosted cosine similarity, highest first. Promotions with equal scores
// keep their insertion order. The degraded flag reports whether any
// fallback embedding was involved, either for this query or when the
// matrix was built. A non-positive topK yields no results.
func (idx *SemanticIndex) Search(ctx context.Context, query string, topK int, profile *promo.UserProfile) ([]promo.ScoredPromotion, bool, error) {
	if err := idx.ensureBuilt(ctx); err != nil {
		return nil, false, err
	}

	qvec, queryDegraded, err := idx.embedQuery(ctx, query)
	if err != nil {
		return nil, false, err
	}

	idx.mu.RLock()
	// A concurrent Add between build and scoring leaves the new records
	// without rows; they are invisible until the next rebuild.
	n := len(idx.matrix)
	if n > len(idx.records) {
		n = len(idx.records)
	}
	scored := make([]promo.ScoredPromotion, 0, n)
	for i := 0; i < n; i++ {
		score := cosine(qvec, idx.matrix[i])
		if profile != nil {
			score = boostScore(score, idx.records[i], *profile)
		}
		scored = append(scored, promo.ScoredPromotion{
			Promotion: idx.records[i],
			Score:     score,
		})
	}
	degraded := queryDegraded || idx.builtDegraded
	idx.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < 0 {
		topK = 0
	}
	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, degraded, nil
}

func (idx *SemanticIndex) ensureBuilt(ctx context.Context) error {
	idx.mu.RLock()
	built := idx.built
	idx.mu.RUnlock()
	if built {
		return nil
	}
	return idx.Rebuild(ctx, false)
}

// embedQuery embeds through the primary embedder, degrading to the
// fallback on failure. Cancellation of the caller's context is never
// masked by the fallback.
func (idx *SemanticIndex) embedQuery(ctx context.Context, query string) ([]float32, bool, error) {
	ectx := ctx
	if idx.embedTimeout > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, idx.embedTimeout)
		defer cancel()
	}

	vec, err := idx.primary.Embed(ectx, query)
	if err == nil {
		return vec, false, nil
	}
	if idx.fallback == nil || ctx.Err() != nil {
		return nil, false, err
	}

	idx.logger.Warn("query embedding failed, using fallback embedder", "error", err)
	vec, ferr := idx.fallback.Embed(ctx, query)
	if ferr != nil {
		return nil, false, ferr
	}
	return vec, true, nil
}

func (idx *SemanticIndex) embedBatch(ctx context.Context, texts []string) ([][]float32, bool, error) {
	ectx := ctx
	if idx.embedTimeout > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, idx.embedTimeout)
		defer cancel()
	}

	rows, err := idx.primary.EmbedBatch(ectx, texts)
	if err == nil {
		return rows, false, nil
	}
	if idx.fallback == nil || ctx.Err() != nil {
		return nil, false, err
	}

	idx.logger.Warn("batch embedding failed, using fallback embedder", "error", err)
	rows, ferr := idx.fallback.EmbedBatch(ctx, texts)
	if ferr != nil {
		return nil, false, ferr
	}
	return rows, true, nil
}

// boostScore adjusts a base similarity using the user profile: 0.1 per
// distinct interest/category overlap, 0.05 for an exact budget/tier
// match, 0.02 when a high budget meets a medium tier or a medium budget
// meets a low tier. The boosted score is capped at 1.0.
func boostScore(base float64, p promo.Promotion, profile promo.UserProfile) float64 {
	score := base

	if overlap := promo.CountOverlap(profile.Interests, p.Categories); overlap > 0 {
		score += interestBoost * float64(overlap)
	}

	budget := profile.BudgetOrDefault()
	tier := p.TierOrDefault()
	switch {
	case string(budget) == string(tier):
		score += budgetMatchBoost
	case budget == promo.BudgetHigh && tier == promo.PriceTierMedium,
		budget == promo.BudgetMedium && tier == promo.PriceTierLow:
		score += budgetNearBoost
	}

	return math.Min(score, maxBoostedScore)
}

// cosine returns the cosine similarity of two vectors, 0 when either
// has zero norm. Mismatched lengths compare over the shorter prefix.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
