package embedder

import (
	"context"
	"testing"
	"time"
)

// countingEmbedder records how often the wrapped embedder is consulted.
type countingEmbedder struct {
	inner   Embedder
	embeds  int
	batches [][]string
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.embeds++
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.batches = append(c.batches, append([]string(nil), texts...))
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) Dimension() int    { return c.inner.Dimension() }
func (c *countingEmbedder) ModelName() string { return c.inner.ModelName() }

func TestCachedEmbedder_Hit(t *testing.T) {
	counting := &countingEmbedder{inner: NewMockEmbedder("all-minilm")}
	cache := NewCachedEmbedder(counting, 16, time.Minute)
	defer cache.Close()
	ctx := context.Background()

	first, err := cache.Embed(ctx, "aws discount")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	second, err := cache.Embed(ctx, "aws discount")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if counting.embeds != 1 {
		t.Errorf("inner embeds = %d, want 1", counting.embeds)
	}
	if !vecEqual(first, second) {
		t.Error("cached vector differs from original")
	}
}

func TestCachedEmbedder_Expiry(t *testing.T) {
	counting := &countingEmbedder{inner: NewMockEmbedder("all-minilm")}
	cache := NewCachedEmbedder(counting, 16, 10*time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	if _, err := cache.Embed(ctx, "expiring"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	time.Sleep(25 * time.Millisecond)
	if _, err := cache.Embed(ctx, "expiring"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if counting.embeds != 2 {
		t.Errorf("inner embeds = %d, want 2 after TTL expiry", counting.embeds)
	}
}

func TestCachedEmbedder_CopyOnGet(t *testing.T) {
	cache := NewCachedEmbedder(NewMockEmbedder("all-minilm"), 16, time.Minute)
	defer cache.Close()
	ctx := context.Background()

	vec, err := cache.Embed(ctx, "mutation check")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	original := vec[0]
	vec[0] = original + 1

	again, err := cache.Embed(ctx, "mutation check")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if again[0] != original {
		t.Error("mutating a returned vector corrupted the cache")
	}
}

func TestCachedEmbedder_Eviction(t *testing.T) {
	cache := NewCachedEmbedder(NewMockEmbedder("all-minilm"), 2, time.Minute)
	defer cache.Close()
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if _, err := cache.Embed(ctx, text); err != nil {
			t.Fatalf("Embed(%q) error = %v", text, err)
		}
	}

	if got := cache.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2 after eviction", got)
	}
}

func TestCachedEmbedder_BatchPartialHit(t *testing.T) {
	counting := &countingEmbedder{inner: NewMockEmbedder("all-minilm")}
	cache := NewCachedEmbedder(counting, 16, time.Minute)
	defer cache.Close()
	ctx := context.Background()

	warm, err := cache.Embed(ctx, "warm")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	batch, err := cache.EmbedBatch(ctx, []string{"cold-a", "warm", "cold-b"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	if len(counting.batches) != 1 {
		t.Fatalf("inner batches = %d, want 1", len(counting.batches))
	}
	if got := counting.batches[0]; len(got) != 2 || got[0] != "cold-a" || got[1] != "cold-b" {
		t.Errorf("inner batch texts = %v, want [cold-a cold-b]", got)
	}
	if !vecEqual(batch[1], warm) {
		t.Error("cached vector not used for warm text")
	}
}
