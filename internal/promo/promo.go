// Package promo defines the core domain types shared by the retrieval,
// ranking, and placement stages: promotion records, user profiles, and
// the scored/ranked wrappers the stages hand to each other.
package promo

// PriceTier buckets a promotion by how expensive the promoted offer is.
type PriceTier string

const (
	PriceTierLow    PriceTier = "low"
	PriceTierMedium PriceTier = "medium"
	PriceTierHigh   PriceTier = "high"
)

// BudgetLevel describes how much a user is willing to spend.
type BudgetLevel string

const (
	BudgetLow    BudgetLevel = "low"
	BudgetMedium BudgetLevel = "medium"
	BudgetHigh   BudgetLevel = "high"
)

// UserType segments users by how they shop.
type UserType string

const (
	UserTypeCasual       UserType = "casual"
	UserTypeProfessional UserType = "professional"
	UserTypeBusiness     UserType = "business"
	UserTypeEnterprise   UserType = "enterprise"
)

// Promotion is a single sponsored item in the corpus. BaseCTR is the
// historical click-through rate; a zero value means "unknown" and is
// replaced by a default during feature extraction, so a genuine 0.0
// cannot be represented.
type Promotion struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Categories  []string  `json:"categories"`
	PriceTier   PriceTier `json:"price_tier"`
	BaseCTR     float64   `json:"base_ctr"`
}

// EmbeddingText returns the text that represents the promotion in the
// semantic index.
func (p Promotion) EmbeddingText() string {
	return p.Title + " " + p.Description
}

// TierOrDefault returns the price tier, or medium when unset.
func (p Promotion) TierOrDefault() PriceTier {
	if p.PriceTier == "" {
		return PriceTierMedium
	}
	return p.PriceTier
}

// BaseCTROrDefault returns the base CTR, or 0.1 when unset.
func (p Promotion) BaseCTROrDefault() float64 {
	if p.BaseCTR == 0 {
		return 0.1
	}
	return p.BaseCTR
}

// UserProfile carries the per-user signals used for boosting and feature
// extraction. All fields are optional; accessors apply the documented
// defaults.
type UserProfile struct {
	UserType    UserType    `json:"user_type,omitempty"`
	Interests   []string    `json:"interests,omitempty"`
	BudgetLevel BudgetLevel `json:"budget_level,omitempty"`
}

// TypeOrDefault returns the user type, or casual when unset.
func (u UserProfile) TypeOrDefault() UserType {
	if u.UserType == "" {
		return UserTypeCasual
	}
	return u.UserType
}

// BudgetOrDefault returns the budget level, or medium when unset.
func (u UserProfile) BudgetOrDefault() BudgetLevel {
	if u.BudgetLevel == "" {
		return BudgetMedium
	}
	return u.BudgetLevel
}

// ScoredPromotion is a retrieval hit: the promotion plus its relevance
// score from the semantic index.
type ScoredPromotion struct {
	Promotion Promotion `json:"promotion"`
	Score     float64   `json:"score"`
}

// RankedPromotion is a ranking output: the promotion id plus its
// predicted click-through score.
type RankedPromotion struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// CountOverlap returns the number of distinct strings present in both
// slices. Duplicates within a slice count once.
func CountOverlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	n := 0
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			n++
		}
	}
	return n
}
