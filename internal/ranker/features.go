package ranker

import (
	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

// FeatureCount is the width of every feature vector.
const FeatureCount = 6

// FeatureNames lists the features in vector order.
var FeatureNames = [FeatureCount]string{
	"base_ctr",
	"interest_match_score",
	"budget_compatibility",
	"category_diversity",
	"price_tier_numeric",
	"user_type_numeric",
}

// Features is the feature vector for one candidate, ordered as FeatureNames.
type Features [FeatureCount]float64

// ExtractFeatures derives the ranking features for a candidate under a
// user profile. All features are deterministic in their inputs.
func ExtractFeatures(p promo.Promotion, profile promo.UserProfile) Features {
	var f Features
	f[0] = p.BaseCTROrDefault()
	f[1] = interestMatch(profile.Interests, p.Categories)
	f[2] = budgetCompatibility(profile.BudgetOrDefault(), p.TierOrDefault())
	f[3] = float64(len(p.Categories)) / 10.0
	f[4] = priceTierNumeric(p.TierOrDefault())
	f[5] = userTypeNumeric(profile.TypeOrDefault())
	return f
}

// interestMatch is the distinct interest/category overlap divided by the
// number of distinct interests (at least 1, so no interests yields 0).
func interestMatch(interests, categories []string) float64 {
	distinct := make(map[string]struct{}, len(interests))
	for _, s := range interests {
		distinct[s] = struct{}{}
	}
	denom := len(distinct)
	if denom < 1 {
		denom = 1
	}
	return float64(promo.CountOverlap(interests, categories)) / float64(denom)
}

var budgetCompatMatrix = map[[2]string]float64{
	{"low", "low"}:       1.0,
	{"low", "medium"}:    0.3,
	{"low", "high"}:      0.1,
	{"medium", "low"}:    0.8,
	{"medium", "medium"}: 1.0,
	{"medium", "high"}:   0.6,
	{"high", "low"}:      0.9,
	{"high", "medium"}:   0.9,
	{"high", "high"}:     1.0,
}

// budgetCompatibility scores how well a budget level fits a price tier.
// Pairs outside the matrix score 0.5.
func budgetCompatibility(budget promo.BudgetLevel, tier promo.PriceTier) float64 {
	if v, ok := budgetCompatMatrix[[2]string{string(budget), string(tier)}]; ok {
		return v
	}
	return 0.5
}

// priceTierNumeric maps tiers onto [0, 1]; unknown tiers land in the middle.
func priceTierNumeric(tier promo.PriceTier) float64 {
	switch tier {
	case promo.PriceTierLow:
		return 0.0
	case promo.PriceTierMedium:
		return 0.5
	case promo.PriceTierHigh:
		return 1.0
	default:
		return 0.5
	}
}

// userTypeNumeric maps user types onto [0, 1]. Only casual, professional
// and enterprise are mapped; every other type, business included, scores 0.
func userTypeNumeric(ut promo.UserType) float64 {
	switch ut {
	case promo.UserTypeProfessional:
		return 0.5
	case promo.UserTypeEnterprise:
		return 1.0
	default:
		return 0.0
	}
}
