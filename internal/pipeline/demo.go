package pipeline

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

const (
	// demoFanOut bounds how many expanded queries are searched.
	demoFanOut = 3

	// demoTopPromotions bounds how many ranked promotions are placed.
	demoTopPromotions = 3
)

// RunResult carries every intermediate stage of one full pipeline run.
type RunResult struct {
	ExpandedQueries  []string                `json:"expanded_queries"`
	Candidates       []SearchResult          `json:"candidates"`
	RankedPromotions []promo.RankedPromotion `json:"ranked_promotions"`
	TopPromotions    []promo.Promotion       `json:"top_promotions"`
	InjectedResults  []string                `json:"injected_results"`
	Degraded         []DegradeReason         `json:"degraded,omitempty"`
}

// Run executes the full pipeline: expand the query, search each variant,
// merge and rank the candidates, and place the top promotions into the
// organic results.
func (e *Engine) Run(ctx context.Context, query string, profile *promo.UserProfile, organic []string) (RunResult, error) {
	if query == "" {
		return RunResult{}, ErrEmptyQuery
	}
	if err := e.EnsureReady(ctx); err != nil {
		return RunResult{}, fmt.Errorf("%w: %v", ErrNotReady, err)
	}

	var result RunResult

	expandResp, err := e.Expand(ctx, query)
	if err != nil {
		return RunResult{}, err
	}
	result.ExpandedQueries = expandResp.ExpandedQueries
	result.Degraded = mergeReasons(result.Degraded, expandResp.Degraded)

	queries := expandResp.ExpandedQueries
	if len(queries) > demoFanOut {
		queries = queries[:demoFanOut]
	}

	perQuery := make([]SearchResponse, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			resp, err := e.Search(gctx, q, 0, profile)
			if err != nil {
				return fmt.Errorf("searching %q: %w", q, err)
			}
			perQuery[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunResult{}, err
	}

	// Merge in query order, first occurrence of an id wins.
	seen := make(map[string]bool)
	for _, resp := range perQuery {
		for _, r := range resp.Results {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			result.Candidates = append(result.Candidates, r)
		}
		result.Degraded = mergeReasons(result.Degraded, resp.Degraded)
	}

	candidates := make([]promo.Promotion, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		if p, ok := e.index.Get(c.ID); ok {
			candidates = append(candidates, p)
			continue
		}
		candidates = append(candidates, promo.Promotion{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Link:        c.Link,
		})
	}

	rankResp := e.Rank(ctx, candidates, profile)
	result.RankedPromotions = rankResp.RankedPromotions
	result.Degraded = mergeReasons(result.Degraded, rankResp.Degraded)

	byID := make(map[string]promo.Promotion, len(candidates))
	for _, p := range candidates {
		byID[p.ID] = p
	}
	for _, rp := range rankResp.RankedPromotions {
		if len(result.TopPromotions) >= demoTopPromotions {
			break
		}
		if p, ok := byID[rp.ID]; ok {
			result.TopPromotions = append(result.TopPromotions, p)
		}
	}

	placeResp := e.Place(ctx, organic, result.TopPromotions)
	result.InjectedResults = placeResp.InjectedResults
	result.Degraded = mergeReasons(result.Degraded, placeResp.Degraded)

	return result, nil
}

func mergeReasons(dst, src []DegradeReason) []DegradeReason {
	for _, r := range src {
		if !slices.Contains(dst, r) {
			dst = append(dst, r)
		}
	}
	return dst
}
