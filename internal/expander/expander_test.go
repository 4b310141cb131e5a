package expander

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gypgypgyp/PromoSearchMCP/internal/llm"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, _ llm.GenerateOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestExpand_RuleBasedWithoutGenerator(t *testing.T) {
	e := New()

	queries, degraded := e.Expand(context.Background(), "cloud hosting")

	if degraded {
		t.Error("rule-based expansion without a generator should not be degraded")
	}

	want := []string{
		"cloud hosting",
		"cloud hosting deal",
		"cloud hosting discount",
		"cloud hosting sale",
		"cloud hosting offer",
	}
	if !reflect.DeepEqual(queries, want) {
		t.Errorf("Expand() = %v, want %v", queries, want)
	}
}

func TestRuleExpand(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "generic query",
			query: "yoga mats",
			want: []string{
				"yoga mats",
				"yoga mats deal",
				"yoga mats discount",
				"yoga mats sale",
				"yoga mats offer",
			},
		},
		{
			name:  "promo term already present is skipped",
			query: "discount phone",
			want: []string{
				"discount phone",
				"discount phone deal",
				"discount phone sale",
				"discount phone offer",
				"discount phone promotion",
			},
		},
		{
			name:  "cloud branch reached when promo terms saturated",
			query: "cloud deal discount sale offer promotion coupon",
			want: []string{
				"cloud deal discount sale offer promotion coupon",
				"cloud deal discount sale offer promotion coupon cloud computing",
				"cloud deal discount sale offer promotion coupon web hosting deal",
				"aws cloud deal discount sale offer promotion coupon discount",
			},
		},
		{
			name:  "laptop branch reached when promo terms saturated",
			query: "laptop deal discount sale offer promotion coupon",
			want: []string{
				"laptop deal discount sale offer promotion coupon",
				"laptop deal discount sale offer promotion coupon computer deal",
				"laptop deal discount sale offer promotion coupon laptop discount",
				"laptop deal discount sale offer promotion coupon electronics promotion",
			},
		},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ruleExpand(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ruleExpand(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestRuleExpand_RespectsSmallMaxQueries(t *testing.T) {
	e := New(WithMaxQueries(3))

	got := e.ruleExpand("cloud hosting")

	want := []string{"cloud hosting", "cloud hosting deal", "cloud hosting discount"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ruleExpand() = %v, want %v", got, want)
	}
}

func TestExpand_GeneratorPath(t *testing.T) {
	gen := &stubGenerator{response: `["smart tv deal", "4k tv sale"]`}
	e := New(WithGenerator(gen))

	queries, degraded := e.Expand(context.Background(), "smart tv")

	if degraded {
		t.Error("successful generator expansion should not be degraded")
	}
	want := []string{"smart tv", "smart tv deal", "4k tv sale"}
	if !reflect.DeepEqual(queries, want) {
		t.Errorf("Expand() = %v, want %v", queries, want)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], `"smart tv"`) {
		t.Errorf("prompt does not include the original query: %s", gen.prompts[0])
	}
}

func TestExpand_GeneratorDuplicateOfOriginalSkipped(t *testing.T) {
	gen := &stubGenerator{response: `["Smart TV", "smart tv deal", "  ", "smart tv sale"]`}
	e := New(WithGenerator(gen))

	queries, _ := e.Expand(context.Background(), "smart tv")

	want := []string{"smart tv", "smart tv deal", "smart tv sale"}
	if !reflect.DeepEqual(queries, want) {
		t.Errorf("Expand() = %v, want %v", queries, want)
	}
}

func TestExpand_GeneratorOutputCapped(t *testing.T) {
	gen := &stubGenerator{response: `["a1", "a2", "a3", "a4", "a5", "a6"]`}
	e := New(WithGenerator(gen), WithMaxQueries(3))

	queries, _ := e.Expand(context.Background(), "gadgets")

	if len(queries) != 3 {
		t.Fatalf("len(queries) = %d, want 3", len(queries))
	}
	if queries[0] != "gadgets" {
		t.Errorf("queries[0] = %q, want the original query first", queries[0])
	}
}

func TestExpand_GeneratorErrorFallsBackDegraded(t *testing.T) {
	gen := &stubGenerator{err: errors.New("connection refused")}
	e := New(WithGenerator(gen))

	queries, degraded := e.Expand(context.Background(), "cloud hosting")

	if !degraded {
		t.Error("generator failure should mark the expansion degraded")
	}
	if len(queries) == 0 || queries[0] != "cloud hosting" {
		t.Errorf("fallback expansion should lead with the original query, got %v", queries)
	}
}

func TestExpand_UnparseableOutputFallsBackDegraded(t *testing.T) {
	gen := &stubGenerator{response: "I could not think of any variations."}
	e := New(WithGenerator(gen))

	queries, degraded := e.Expand(context.Background(), "cloud hosting")

	if !degraded {
		t.Error("unparseable generator output should mark the expansion degraded")
	}
	if len(queries) != 5 {
		t.Errorf("len(queries) = %d, want 5 rule-based queries", len(queries))
	}
}

func TestParseVariants(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{
			name:    "clean array",
			content: `["a", "b"]`,
			want:    []string{"a", "b"},
		},
		{
			name:    "array wrapped in prose",
			content: "Here you go:\n[\"a\", \"b\"]\nHope that helps!",
			want:    []string{"a", "b"},
		},
		{
			name:    "no array",
			content: "nothing useful",
			wantErr: true,
		},
		{
			name:    "malformed array",
			content: `["a", "b"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVariants(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseVariants() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseVariants() = %v, want %v", got, tt.want)
			}
		})
	}
}
