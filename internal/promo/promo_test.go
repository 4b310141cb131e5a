package promo

import "testing"

func TestCountOverlap(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want int
	}{
		{"disjoint", []string{"cloud", "aws"}, []string{"mobile", "phone"}, 0},
		{"partial", []string{"cloud", "aws", "hosting"}, []string{"aws", "storage"}, 1},
		{"full", []string{"a", "b"}, []string{"b", "a"}, 2},
		{"duplicates collapse", []string{"a", "a", "b"}, []string{"a", "a"}, 1},
		{"empty a", nil, []string{"a"}, 0},
		{"empty b", []string{"a"}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("CountOverlap(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestProfileDefaults(t *testing.T) {
	var u UserProfile
	if got := u.TypeOrDefault(); got != UserTypeCasual {
		t.Errorf("TypeOrDefault() = %q, want %q", got, UserTypeCasual)
	}
	if got := u.BudgetOrDefault(); got != BudgetMedium {
		t.Errorf("BudgetOrDefault() = %q, want %q", got, BudgetMedium)
	}

	u = UserProfile{UserType: UserTypeEnterprise, BudgetLevel: BudgetHigh}
	if got := u.TypeOrDefault(); got != UserTypeEnterprise {
		t.Errorf("TypeOrDefault() = %q, want %q", got, UserTypeEnterprise)
	}
	if got := u.BudgetOrDefault(); got != BudgetHigh {
		t.Errorf("BudgetOrDefault() = %q, want %q", got, BudgetHigh)
	}
}

func TestPromotionDefaults(t *testing.T) {
	var p Promotion
	if got := p.TierOrDefault(); got != PriceTierMedium {
		t.Errorf("TierOrDefault() = %q, want %q", got, PriceTierMedium)
	}
	if got := p.BaseCTROrDefault(); got != 0.1 {
		t.Errorf("BaseCTROrDefault() = %v, want 0.1", got)
	}

	p = Promotion{PriceTier: PriceTierHigh, BaseCTR: 0.25}
	if got := p.TierOrDefault(); got != PriceTierHigh {
		t.Errorf("TierOrDefault() = %q, want %q", got, PriceTierHigh)
	}
	if got := p.BaseCTROrDefault(); got != 0.25 {
		t.Errorf("BaseCTROrDefault() = %v, want 0.25", got)
	}
}

func TestEmbeddingText(t *testing.T) {
	p := Promotion{Title: "Cloud Server Sale", Description: "50% off dedicated hosting"}
	want := "Cloud Server Sale 50% off dedicated hosting"
	if got := p.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
}
