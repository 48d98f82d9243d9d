package worker

import (
	"context"
	"time"

	"polemia/internal/model"
)

// Classifier decides a single claim. Satisfied by the pipeline; stubbed in
// tests. Classification never errors: every claim gets a Decision.
type Classifier interface {
	Classify(ctx context.Context, claim model.Claim) model.Decision
}

// ClassifyJob carries one claim through the pool
type ClassifyJob struct {
	Index      int // Position in the input batch, for order restoration
	Claim      model.Claim
	Classifier Classifier
}

// Execute runs the cascade for the job's claim
func (j *ClassifyJob) Execute(ctx context.Context) Result {
	decision := j.Classifier.Classify(ctx, j.Claim)
	return &ClassifyResult{
		Index:    j.Index,
		Decision: decision,
	}
}

// ClassifyResult holds one claim's decision
type ClassifyResult struct {
	Index    int
	Decision model.Decision
}

// GetError always returns nil: per-claim failures are recorded inside the
// Decision's provenance, never surfaced as job errors, so one claim's
// trouble cannot abort its siblings.
func (r *ClassifyResult) GetError() error {
	return nil
}

// BatchProcessor fans a batch of independent claims over a worker pool
type BatchProcessor struct {
	classifier  Classifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(classifier Classifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		classifier:  classifier,
		concurrency: concurrency,
	}
}

// ProcessClaims classifies claims concurrently, preserving input order in
// the returned decisions.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []model.Claim) []model.Decision {
	if len(claims) == 0 {
		return []model.Decision{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Cancel pool workers if the enclosing batch context ends first
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.cancelFunc()
		case <-done:
		}
	}()

	for i, claim := range claims {
		pool.Submit(&ClassifyJob{
			Index:      i,
			Claim:      claim,
			Classifier: b.classifier,
		})
	}

	results := pool.Wait()
	close(done)

	// Restore input order: claim_id sequence is preserved across the pipeline
	decisions := make([]model.Decision, len(claims))
	filled := make([]bool, len(claims))
	for _, result := range results {
		r := result.(*ClassifyResult)
		decisions[r.Index] = r.Decision
		filled[r.Index] = true
	}

	// Claims whose jobs were abandoned on cancellation still get a terminal
	// decision rather than being silently dropped
	for i, ok := range filled {
		if !ok {
			decisions[i] = model.Decision{
				ClaimID:    claims[i].ID,
				Text:       claims[i].Text,
				Label:      model.LabelNonDebatable,
				Confidence: 0,
				DecidedBy:  model.LayerUndecided,
				Provenance: []model.LayerOutcome{
					model.Failed(model.LayerUndecided, "batch cancelled before classification"),
				},
				DecidedAt: time.Now().UTC(),
			}
		}
	}

	return decisions
}
