package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.EmbeddingProvider != "mock" {
		t.Errorf("EmbeddingProvider = %q, want %q", cfg.EmbeddingProvider, "mock")
	}
	if cfg.EmbeddingModel != "all-minilm" {
		t.Errorf("EmbeddingModel = %q, want %q", cfg.EmbeddingModel, "all-minilm")
	}
	if cfg.EmbedTimeout != 10*time.Second {
		t.Errorf("EmbedTimeout = %v, want 10s", cfg.EmbedTimeout)
	}
	if cfg.EmbedBatchConcurrency != 4 {
		t.Errorf("EmbedBatchConcurrency = %d, want 4", cfg.EmbedBatchConcurrency)
	}
	if cfg.MaxSearchResults != 20 {
		t.Errorf("MaxSearchResults = %d, want 20", cfg.MaxSearchResults)
	}
	if cfg.RankingModelType != "fallback" {
		t.Errorf("RankingModelType = %q, want %q", cfg.RankingModelType, "fallback")
	}
	if cfg.LLMProvider != "none" {
		t.Errorf("LLMProvider = %q, want %q", cfg.LLMProvider, "none")
	}
	if cfg.MaxExpandedQueries != 5 {
		t.Errorf("MaxExpandedQueries = %d, want 5", cfg.MaxExpandedQueries)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("EMBEDDING_PROVIDER", "ollama")
	t.Setenv("MAX_SEARCH_RESULTS", "7")
	t.Setenv("EMBED_TIMEOUT", "250ms")
	t.Setenv("EMBED_BATCH_CONCURRENCY", "2")
	t.Setenv("LLM_PROVIDER", "ollama")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9999")
	}
	if cfg.EmbeddingProvider != "ollama" {
		t.Errorf("EmbeddingProvider = %q, want %q", cfg.EmbeddingProvider, "ollama")
	}
	if cfg.MaxSearchResults != 7 {
		t.Errorf("MaxSearchResults = %d, want 7", cfg.MaxSearchResults)
	}
	if cfg.EmbedTimeout != 250*time.Millisecond {
		t.Errorf("EmbedTimeout = %v, want 250ms", cfg.EmbedTimeout)
	}
	if cfg.EmbedBatchConcurrency != 2 {
		t.Errorf("EmbedBatchConcurrency = %d, want 2", cfg.EmbedBatchConcurrency)
	}
	if cfg.LLMProvider != "ollama" {
		t.Errorf("LLMProvider = %q, want %q", cfg.LLMProvider, "ollama")
	}
}

func TestLoad_InvalidInteger(t *testing.T) {
	t.Setenv("MAX_SEARCH_RESULTS", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on a non-numeric MAX_SEARCH_RESULTS")
	}
}
