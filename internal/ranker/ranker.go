// Package ranker orders promotion candidates by predicted click-through
// rate. A Scorer turns feature vectors into scores; the Ranker extracts
// features, scores the batch, and sorts. Scoring failures never surface
// as errors: every candidate falls back to a default score instead.
package ranker

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

// DefaultScore is assigned to every candidate when scoring fails.
const DefaultScore = 0.1

// Ranker scores and orders promotion candidates.
type Ranker struct {
	scorer Scorer
	logger *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) {
		r.logger = logger
	}
}

// New creates a Ranker around the given scorer; nil gets the fallback scorer.
func New(scorer Scorer, opts ...Option) *Ranker {
	if scorer == nil {
		scorer = FallbackScorer{}
	}
	r := &Ranker{
		scorer: scorer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ScorerName reports which scorer is in use.
func (r *Ranker) ScorerName() string {
	return r.scorer.Name()
}

// Rank returns one entry per candidate ordered by score, highest first.
// Candidates with equal scores keep their input order, and candidates
// without an id are addressed by input position. When the scorer fails
// every candidate gets DefaultScore and the degraded flag is set.
func (r *Ranker) Rank(candidates []promo.Promotion, profile promo.UserProfile) ([]promo.RankedPromotion, bool) {
	if len(candidates) == 0 {
		return []promo.RankedPromotion{}, false
	}

	batch := make([]Features, len(candidates))
	for i, c := range candidates {
		batch[i] = ExtractFeatures(c, profile)
	}

	scores, err := r.score(batch)
	degraded := false
	if err != nil {
		r.logger.Warn("scoring failed, using default scores",
			"scorer", r.scorer.Name(),
			"candidates", len(candidates),
			"error", err,
		)
		scores = make([]float64, len(candidates))
		for i := range scores {
			scores[i] = DefaultScore
		}
		degraded = true
	}

	ranked := make([]promo.RankedPromotion, len(candidates))
	for i, c := range candidates {
		id := c.ID
		if id == "" {
			id = fmt.Sprintf("promo_%d", i)
		}
		ranked[i] = promo.RankedPromotion{ID: id, Score: scores[i]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, degraded
}

// score shields the pipeline from scorer panics and length mismatches.
func (r *Ranker) score(batch []Features) (scores []float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			scores = nil
			err = fmt.Errorf("scorer panic: %v", rec)
		}
	}()

	scores, err = r.scorer.Score(batch)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(batch) {
		return nil, fmt.Errorf("scorer returned %d scores for %d candidates", len(scores), len(batch))
	}
	return scores, nil
}
