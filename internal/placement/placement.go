// Package placement interleaves sponsored entries into organic search
// result lists. The first organic result is never displaced, slot count
// scales with list length, and every sponsored entry is rendered with a
// visible marker and copy tuned to the surrounding results.
package placement

import (
	"log/slog"

	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

const (
	// DefaultMaxAds caps sponsored entries per result page.
	DefaultMaxAds = 3

	// organicPerAd requires this many organic results per sponsored slot.
	organicPerAd = 3

	// defaultContextWindow is how many results on each side feed the ad copy.
	defaultContextWindow = 2
)

// Planner decides where sponsored entries go and renders their copy.
type Planner struct {
	maxAds int
	window int
	logger *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithMaxAds overrides the per-page sponsored entry cap.
func WithMaxAds(n int) Option {
	return func(pl *Planner) {
		if n > 0 {
			pl.maxAds = n
		}
	}
}

// WithContextWindow overrides how many neighboring results inform ad copy.
func WithContextWindow(n int) Option {
	return func(pl *Planner) {
		if n >= 0 {
			pl.window = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(pl *Planner) {
		pl.logger = logger
	}
}

// NewPlanner creates a Planner with the default slot policy.
func NewPlanner(opts ...Option) *Planner {
	pl := &Planner{
		maxAds: DefaultMaxAds,
		window: defaultContextWindow,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// Place returns the organic results with sponsored entries interleaved.
// The slot count is the smallest of the promotion count, the per-page
// cap, and one per three organic results. Lists with fewer than two
// results, and calls without promotions, come back unchanged.
func (pl *Planner) Place(organic []string, promotions []promo.Promotion) []string {
	if len(organic) == 0 {
		return []string{}
	}
	if len(promotions) == 0 || len(organic) < 2 {
		return organic
	}

	maxAds := min(len(promotions), pl.maxAds, len(organic)/organicPerAd)
	if maxAds == 0 {
		return organic
	}
	selected := promotions[:maxAds]

	positions := insertionPositions(len(organic), maxAds)
	posSet := make(map[int]struct{}, len(positions))
	for _, pos := range positions {
		posSet[pos] = struct{}{}
	}

	injected := make([]string, 0, len(organic)+len(selected))
	adIdx := 0
	for i, result := range organic {
		injected = append(injected, result)
		if _, ok := posSet[i+1]; ok && adIdx < len(selected) {
			injected = append(injected, pl.renderAdCopy(selected[adIdx], organic, i))
			adIdx++
		}
	}

	pl.logger.Info("placed sponsored results",
		"ads", adIdx,
		"organic", len(organic),
	)
	return injected
}

// insertionPositions returns the 1-indexed organic positions after which
// an ad is inserted: after position 2, then 4 for short lists, or 5 and
// 8 for longer ones. Positions at or past the list end are dropped.
func insertionPositions(numResults, numAds int) []int {
	if numAds == 0 || numResults < 2 {
		return nil
	}

	var positions []int
	if numResults <= 5 {
		if numAds >= 1 {
			positions = append(positions, 2)
		}
		if numAds >= 2 && numResults >= 4 {
			positions = append(positions, 4)
		}
	} else {
		positions = append(positions, 2)
		if numAds >= 2 {
			positions = append(positions, 5)
		}
		if numAds >= 3 && numResults >= 9 {
			positions = append(positions, 8)
		}
	}

	kept := positions[:0]
	for _, pos := range positions {
		if pos < numResults {
			kept = append(kept, pos)
		}
	}
	if len(kept) > numAds {
		kept = kept[:numAds]
	}
	return kept
}
