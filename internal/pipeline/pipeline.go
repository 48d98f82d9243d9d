package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"polemia/internal/cache"
	"polemia/internal/cascade"
	"polemia/internal/llm"
	"polemia/internal/markers"
	"polemia/internal/model"
	"polemia/internal/worker"
	"polemia/internal/zeroshot"
)

// Pipeline wires the marker detector, the four cascade layers, the shared
// rate budget and the decision cache into a single classifier for claims.
type Pipeline struct {
	orchestrator *cascade.Orchestrator
	cache        cache.Cache // nil when caching disabled
	config       *model.Config
}

// New creates a pipeline from configuration
func New(cfg *model.Config) (*Pipeline, error) {
	detector := markers.NewDetector(cfg.Markers)

	judge, err := llm.NewJudge(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create semantic judge: %w", err)
	}

	// One budget shared by every concurrently processed claim
	limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)

	var classifier cascade.ZeroShotClassifier
	if cfg.ZeroShot.BaseURL != "" {
		classifier = zeroshot.NewClient(cfg.ZeroShot)
	}

	layers := []cascade.Layer{
		cascade.NewOverrideLayer(),
		cascade.NewSemanticLayer(judge, cfg.LLM, limiter),
		cascade.NewRuleLayer(cfg.Rules),
		cascade.NewZeroShotLayer(classifier, cfg.ZeroShot.TieMargin, limiter),
	}

	var decisionCache cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			decisionCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		} else {
			decisionCache = cache.NewMemoryCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
		}
	}

	return &Pipeline{
		orchestrator: cascade.NewOrchestrator(detector, layers, cfg.Cascade),
		cache:        decisionCache,
		config:       cfg,
	}, nil
}

// Classify runs the cascade for one claim. Identical claim text is served
// from the cache when enabled; cached decisions are re-bound to the incoming
// claim's id.
func (p *Pipeline) Classify(ctx context.Context, claim model.Claim) model.Decision {
	var key string
	if p.cache != nil && claim.Text != "" {
		key = cache.Key(claim.Text)
		if data, found := p.cache.Get(key); found {
			var cached model.Decision
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.ClaimID = claim.ID
				cached.Text = claim.Text
				return cached
			}
		}
	}

	decision := p.orchestrator.Classify(ctx, claim)

	// Only settled verdicts are worth remembering: UNDECIDED and
	// INVALID_INPUT may resolve differently once services recover
	if key != "" && decision.DecidedBy != model.LayerUndecided && decision.DecidedBy != model.LayerInvalidInput {
		if data, err := json.Marshal(decision); err == nil {
			if err := p.cache.Set(key, data, 0); err != nil && p.config.Output.Verbose {
				fmt.Fprintf(os.Stderr, "Warning: cache write failed: %v\n", err)
			}
		}
	}

	return decision
}

// ClassifyBatch fans independent claims over the worker pool, up to the
// configured concurrency. Decisions come back in input order.
func (p *Pipeline) ClassifyBatch(ctx context.Context, claims []model.Claim) []model.Decision {
	processor := worker.NewBatchProcessor(p, p.config.Concurrency.Workers)
	return processor.ProcessClaims(ctx, claims)
}
