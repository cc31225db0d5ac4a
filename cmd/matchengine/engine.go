package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/recruitech/matchengine/internal/anonymize"
	"github.com/recruitech/matchengine/internal/compliance"
	"github.com/recruitech/matchengine/internal/config"
	"github.com/recruitech/matchengine/internal/extraction"
	"github.com/recruitech/matchengine/internal/llm"
	"github.com/recruitech/matchengine/internal/matching"
	"github.com/recruitech/matchengine/internal/pipeline"
	"github.com/recruitech/matchengine/internal/report"
	"github.com/recruitech/matchengine/internal/scoring"
)

// engine bundles the assembled pipeline with everything that needs closing.
type engine struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
	client   *llm.GeminiClient
}

func (e *engine) close() {
	if e.client != nil {
		_ = e.client.Close()
	}
	_ = e.logger.Sync()
}

// buildEngine loads configuration, connects the Gemini client, and wires the
// full pipeline. Configuration problems are fatal here, before any request is
// accepted.
func buildEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*engine, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, &config.ConfigurationError{
			Field:   "gemini.api-key",
			Message: "GEMINI_API_KEY environment variable is required",
		}
	}

	client, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	synonyms, err := extraction.LoadSynonyms(cfg.SynonymsPath)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	catalog, err := compliance.LoadCatalog(cfg.RulesPath)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	embedder, err := llm.NewCachedEmbedder(client, cfg.EmbedCacheSize)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	anonymizer := anonymize.New(logger)
	extractor := extraction.New(client, synonyms, extraction.Options{
		MaxRetries:     cfg.Extraction.MaxRetries,
		Timeout:        cfg.Extraction.Timeout,
		InitialBackoff: cfg.Extraction.InitialBackoff,
	}, logger)
	matcher := matching.New(embedder, matching.Config{
		HardThreshold: cfg.Thresholds.Hard,
		SoftThreshold: cfg.Thresholds.Soft,
	}, logger)
	checker := compliance.NewChecker(catalog, logger)
	aggregator := scoring.NewAggregator(cfg.Weights, time.Now)

	builder, err := report.NewBuilder(anonymizer)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	p := pipeline.New(anonymizer, extractor, matcher, checker, aggregator, builder, logger)

	return &engine{pipeline: p, logger: logger, client: client}, nil
}
