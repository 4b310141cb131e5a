package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

func resetProfileFlags() {
	flagUserType = ""
	flagInterests = nil
	flagBudget = ""
}

func TestProfileFromFlags_Empty(t *testing.T) {
	resetProfileFlags()
	if p := profileFromFlags(); p != nil {
		t.Errorf("expected nil profile without flags, got %+v", p)
	}
}

func TestProfileFromFlags_Populated(t *testing.T) {
	resetProfileFlags()
	t.Cleanup(resetProfileFlags)
	flagUserType = "Professional"
	flagInterests = []string{"cloud", "aws"}
	flagBudget = "MEDIUM"

	p := profileFromFlags()
	if p == nil {
		t.Fatal("expected a profile when flags are set")
	}
	if p.UserType != promo.UserTypeProfessional {
		t.Errorf("UserType = %q, want %q", p.UserType, promo.UserTypeProfessional)
	}
	if p.BudgetLevel != promo.BudgetMedium {
		t.Errorf("BudgetLevel = %q, want %q", p.BudgetLevel, promo.BudgetMedium)
	}
	if len(p.Interests) != 2 {
		t.Errorf("Interests = %v, want 2 entries", p.Interests)
	}
}

func TestNewEngine(t *testing.T) {
	flagDataPath = ""
	engine, err := newEngine()
	if err != nil {
		t.Fatalf("newEngine() error: %v", err)
	}
	if engine == nil {
		t.Fatal("newEngine() returned a nil engine")
	}
	engine.Close()
}

func TestNewEngine_DataOverride(t *testing.T) {
	t.Cleanup(func() { flagDataPath = "" })

	flagDataPath = filepath.Join(t.TempDir(), "missing.jsonl")
	if _, err := newEngine(); err == nil {
		t.Error("expected an error for a missing data file")
	}

	path := filepath.Join(t.TempDir(), "promos.jsonl")
	if err := os.WriteFile(path, []byte(`{"id":"a","title":"A"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	flagDataPath = path
	engine, err := newEngine()
	if err != nil {
		t.Fatalf("newEngine() error with data override: %v", err)
	}
	engine.Close()
}

func TestReadPromotions_JSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promos.json")
	data := `[{"id":"a","title":"A"},{"id":"b","title":"B"}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	promos, err := readPromotions(path)
	if err != nil {
		t.Fatalf("readPromotions() error: %v", err)
	}
	if len(promos) != 2 || promos[0].ID != "a" {
		t.Errorf("unexpected promotions: %+v", promos)
	}
}

func TestReadPromotions_JSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promos.jsonl")
	data := `{"id":"a","title":"A"}` + "\n" + `{"id":"b","title":"B"}` + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	promos, err := readPromotions(path)
	if err != nil {
		t.Fatalf("readPromotions() error: %v", err)
	}
	if len(promos) != 2 || promos[1].ID != "b" {
		t.Errorf("unexpected promotions: %+v", promos)
	}
}

func TestReadPromotions_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := readPromotions(path); err == nil {
		t.Error("expected an error for non-JSON input")
	}
}
