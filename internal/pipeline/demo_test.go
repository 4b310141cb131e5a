package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

func demoOrganic() []string {
	return []string{
		"AWS EC2 Documentation - Learn about Amazon Elastic Compute Cloud instances",
		"AWS Pricing Calculator - Calculate your cloud computing costs",
		"AWS Free Tier - Get started with AWS for free",
		"Cloud Computing Best Practices - Guide to efficient cloud usage",
		"AWS Instance Types - Choose the right instance for your workload",
		"Server Migration to AWS - Step-by-step migration guide",
		"AWS Security Best Practices - Keep your cloud infrastructure secure",
		"Cost Optimization on AWS - Reduce your cloud spending",
	}
}

func TestEngine_Run(t *testing.T) {
	e := testEngine(t)
	profile := &promo.UserProfile{
		UserType:    promo.UserTypeProfessional,
		Interests:   []string{"cloud", "aws", "hosting", "development"},
		BudgetLevel: promo.BudgetMedium,
	}
	organic := demoOrganic()

	result, err := e.Run(context.Background(), "aws cloud discounts", profile, organic)
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	if len(result.ExpandedQueries) == 0 || result.ExpandedQueries[0] != "aws cloud discounts" {
		t.Errorf("expanded queries should lead with the original, got %v", result.ExpandedQueries)
	}
	if len(result.Candidates) == 0 {
		t.Fatal("Run() produced no candidates")
	}
	if len(result.RankedPromotions) != len(result.Candidates) {
		t.Errorf("ranked %d promotions for %d candidates", len(result.RankedPromotions), len(result.Candidates))
	}
	if len(result.TopPromotions) != 3 {
		t.Errorf("len(TopPromotions) = %d, want 3", len(result.TopPromotions))
	}

	// 8 organic results and 3 promotions allow min(3, 3, 8/3) = 2 ads.
	if len(result.InjectedResults) != len(organic)+2 {
		t.Errorf("len(InjectedResults) = %d, want %d", len(result.InjectedResults), len(organic)+2)
	}
	sponsored := 0
	for _, r := range result.InjectedResults {
		if strings.HasPrefix(r, "🎯 [SPONSORED]") {
			sponsored++
		}
	}
	if sponsored != 2 {
		t.Errorf("sponsored entries = %d, want 2", sponsored)
	}
	if strings.HasPrefix(result.InjectedResults[0], "🎯 [SPONSORED]") {
		t.Error("first result must not be sponsored")
	}
	if len(result.Degraded) != 0 {
		t.Errorf("mock pipeline run should not be degraded, got %v", result.Degraded)
	}
}

func TestEngine_Run_CandidatesAreUnique(t *testing.T) {
	e := testEngine(t)

	result, err := e.Run(context.Background(), "cloud hosting", nil, demoOrganic())
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	seen := make(map[string]bool)
	for _, c := range result.Candidates {
		if seen[c.ID] {
			t.Errorf("candidate %s appears more than once", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestEngine_Run_EmptyQuery(t *testing.T) {
	e := testEngine(t)

	if _, err := e.Run(context.Background(), "", nil, demoOrganic()); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Run(\"\") error = %v, want ErrEmptyQuery", err)
	}
}

func TestMergeReasons(t *testing.T) {
	got := mergeReasons(nil, []DegradeReason{DegradeEmbedderFallback})
	got = mergeReasons(got, []DegradeReason{DegradeEmbedderFallback, DegradeScorerDefault})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 distinct reasons", len(got))
	}
	if got[0] != DegradeEmbedderFallback || got[1] != DegradeScorerDefault {
		t.Errorf("merged reasons = %v", got)
	}
}
