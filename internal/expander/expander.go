// Package expander fans a user query out into long-tail search queries,
// using an LLM when one is configured and deterministic rules otherwise.
package expander

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gypgypgyp/PromoSearchMCP/internal/llm"
)

const (
	// DefaultMaxQueries caps the expansion fan-out.
	DefaultMaxQueries = 5

	// ruleExpansionCap bounds the rule-based expansion independently of
	// the configured fan-out.
	ruleExpansionCap = 5

	expandTemperature = 0.7
	expandMaxTokens   = 200
)

const expandPromptTemplate = `Expand this search query into %d related long-tail keyword variations that would help find relevant promotions and deals:

Original Query: %q

Generate variations that include:
- Specific product names and brands
- Feature-focused terms (e.g., "discount", "sale", "offer", "deal")
- Category-specific terms
- Price and budget related terms
- Seasonal or time-sensitive terms

Return ONLY a JSON array of strings, no other text:
["variation1", "variation2", "variation3", ...]`

// promoTerms are appended to queries that do not already mention them.
var promoTerms = []string{"deal", "discount", "sale", "offer", "promotion", "coupon"}

// Expander generates variants of a search query.
type Expander struct {
	generator  llm.LLM
	maxQueries int
	logger     *slog.Logger
}

// Option is a functional option for configuring the Expander.
type Option func(*Expander)

// WithGenerator sets the LLM used for expansion. Without one the
// Expander is rule-based only.
func WithGenerator(g llm.LLM) Option {
	return func(e *Expander) {
		e.generator = g
	}
}

// WithMaxQueries caps the number of expanded queries returned.
func WithMaxQueries(n int) Option {
	return func(e *Expander) {
		if n > 0 {
			e.maxQueries = n
		}
	}
}

// WithLogger sets the logger for the Expander.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) {
		e.logger = logger
	}
}

// New creates an Expander with the given options.
func New(opts ...Option) *Expander {
	e := &Expander{
		maxQueries: DefaultMaxQueries,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Expand returns up to maxQueries variants of query, original query
// first. The degraded flag reports that a configured generator failed
// and the rule-based expansion was used in its place.
func (e *Expander) Expand(ctx context.Context, query string) ([]string, bool) {
	if e.generator == nil {
		return e.ruleExpand(query), false
	}

	variants, err := e.llmExpand(ctx, query)
	if err != nil {
		e.logger.Warn("llm query expansion failed, using rule-based expansion",
			"query", query,
			"error", err)
		return e.ruleExpand(query), true
	}

	out := make([]string, 0, e.maxQueries)
	out = append(out, query)
	for _, v := range variants {
		if len(out) >= e.maxQueries {
			break
		}
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, query) {
			continue
		}
		out = append(out, v)
	}

	return out, false
}

func (e *Expander) llmExpand(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(expandPromptTemplate, e.maxQueries, query)

	resp, err := e.generator.Generate(ctx, prompt, llm.GenerateOptions{
		Temperature: expandTemperature,
		MaxTokens:   expandMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generating expansions: %w", err)
	}

	return parseVariants(resp)
}

// parseVariants decodes a JSON array of strings, salvaging the first
// bracketed span when the model wraps the array in prose.
func parseVariants(content string) ([]string, error) {
	content = strings.TrimSpace(content)

	var variants []string
	if err := json.Unmarshal([]byte(content), &variants); err == nil {
		return variants, nil
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &variants); err != nil {
		return nil, fmt.Errorf("parsing response array: %w", err)
	}

	return variants, nil
}

// ruleExpand is the deterministic expansion used when no generator is
// configured or the generator fails.
func (e *Expander) ruleExpand(query string) []string {
	lower := strings.ToLower(query)
	expansions := []string{query}

	for _, term := range promoTerms {
		if !strings.Contains(lower, term) {
			expansions = append(expansions, query+" "+term)
		}
	}

	switch {
	case containsAny(lower, "cloud", "aws", "server", "hosting"):
		expansions = append(expansions,
			query+" cloud computing",
			query+" web hosting deal",
			"aws "+query+" discount",
		)
	case containsAny(lower, "phone", "mobile", "smartphone"):
		expansions = append(expansions,
			query+" smartphone deal",
			query+" mobile phone offer",
			query+" electronics sale",
		)
	case containsAny(lower, "laptop", "computer", "pc"):
		expansions = append(expansions,
			query+" computer deal",
			query+" laptop discount",
			query+" electronics promotion",
		)
	default:
		expansions = append(expansions,
			"best "+query+" deals",
			query+" special offer",
			"cheap "+query,
		)
	}

	limit := min(ruleExpansionCap, e.maxQueries)
	if len(expansions) > limit {
		expansions = expansions[:limit]
	}

	return expansions
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
