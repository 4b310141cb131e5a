package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gypgypgyp/PromoSearchMCP/internal/config"
	"github.com/gypgypgyp/PromoSearchMCP/internal/embedder"
	"github.com/gypgypgyp/PromoSearchMCP/internal/llm"
	"github.com/gypgypgyp/PromoSearchMCP/internal/pipeline"
	"github.com/gypgypgyp/PromoSearchMCP/internal/ranker"
	"github.com/gypgypgyp/PromoSearchMCP/internal/server"
)

func main() {
	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Rebuild the logger at the configured level
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("starting promotion search service",
		"addr", cfg.HTTPAddr,
		"environment", cfg.Environment,
		"embedding_provider", cfg.EmbeddingProvider,
		"ranking_model", cfg.RankingModelType,
	)

	// Assemble the pipeline engine
	engine := pipeline.New(cfg, pipeline.WithLogger(logger))
	defer engine.Close()

	// Load the corpus and build the index before accepting traffic
	if err := engine.EnsureReady(ctx); err != nil {
		return fmt.Errorf("failed to warm the engine: %w", err)
	}
	slog.Info("promotion index ready")

	// Create HTTP server
	httpServer, err := server.NewHTTPServer(server.HTTPServerConfig{
		Addr:           cfg.HTTPAddr,
		Engine:         engine,
		Logger:         slog.Default(),
		AllowedOrigins: []string{"*"}, // Configure in production
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	// Start server
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown HTTP server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Ensure interfaces are satisfied at compile time
var (
	_ embedder.Embedder = (*embedder.OllamaEmbedder)(nil)
	_ embedder.Embedder = (*embedder.MockEmbedder)(nil)
	_ embedder.Embedder = (*embedder.CachedEmbedder)(nil)
	_ ranker.Scorer     = ranker.FallbackScorer{}
	_ ranker.Scorer     = (*ranker.LinearScorer)(nil)
	_ llm.LLM           = (*llm.OllamaClient)(nil)
)
