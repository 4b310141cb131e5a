package placement

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

// SponsoredMarker prefixes every rendered ad so sponsored content is
// always distinguishable from organic results.
const SponsoredMarker = "🎯 [SPONSORED]"

const topKeywordCount = 5

// IsSponsored reports whether a feed entry is a rendered ad.
func IsSponsored(entry string) bool {
	return strings.HasPrefix(entry, SponsoredMarker)
}

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "i": {}, "you": {}, "he": {},
	"she": {}, "it": {}, "we": {}, "they": {},
}

var (
	techKeywords = map[string]struct{}{
		"cloud": {}, "server": {}, "hosting": {}, "aws": {}, "api": {},
		"database": {}, "software": {},
	}
	mobileKeywords = map[string]struct{}{
		"phone": {}, "mobile": {}, "smartphone": {}, "android": {}, "ios": {},
	}
	businessKeywords = map[string]struct{}{
		"business": {}, "enterprise": {}, "professional": {}, "office": {},
		"productivity": {},
	}
)

// renderAdCopy renders the sponsored entry for a promotion inserted
// after the organic result at position (0-indexed).
func (pl *Planner) renderAdCopy(p promo.Promotion, organic []string, position int) string {
	title := p.Title
	if title == "" {
		title = "Special Offer"
	}
	link := p.Link
	if link == "" {
		link = "#"
	}

	keywords := contextKeywords(organic, position, pl.window)
	intro := contextualIntro(keywords)

	return fmt.Sprintf("%s %s\n\n**%s**\n%s\n\n👉 Learn more: %s\n\n---",
		SponsoredMarker, intro, title, p.Description, link)
}

// contextKeywords returns up to five keywords from the results around
// position, most frequent first. Equally frequent words keep their
// first-appearance order.
func contextKeywords(results []string, position, window int) []string {
	start := position - window
	if start < 0 {
		start = 0
	}
	end := position + window + 1
	if end > len(results) {
		end = len(results)
	}
	text := strings.ToLower(strings.Join(results[start:end], " "))

	counts := make(map[string]int)
	var order []string
	for _, word := range wordPattern.FindAllString(text, -1) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topKeywordCount {
		order = order[:topKeywordCount]
	}
	return order
}

// contextualIntro picks an intro line from the keyword mix: tech beats
// mobile beats business, then a generic line built on the top keyword.
func contextualIntro(keywords []string) string {
	if len(keywords) == 0 {
		return "Looking for great deals?"
	}

	switch {
	case containsAny(keywords, techKeywords):
		return "Perfect for your tech needs!"
	case containsAny(keywords, mobileKeywords):
		return "Great mobile deals for you!"
	case containsAny(keywords, businessKeywords):
		return "Boost your business with these offers!"
	default:
		return fmt.Sprintf("Related to %s - check this out!", keywords[0])
	}
}

func containsAny(keywords []string, set map[string]struct{}) bool {
	for _, kw := range keywords {
		if _, ok := set[kw]; ok {
			return true
		}
	}
	return false
}
