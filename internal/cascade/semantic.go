package cascade

import (
	"context"
	"fmt"
	"os"

	"polemia/internal/llm"
	"polemia/internal/model"
)

// SemanticLayer (L2) wraps a single judgment call to an external reasoning
// service. Transport and timeout failures are retried a bounded number of
// times; quota and malformed-response failures fall through immediately.
type SemanticLayer struct {
	judge  llm.Judge
	config model.LLMConfig
	budget Budget
}

// NewSemanticLayer creates the semantic reasoning layer. A nil judge means
// the layer is disabled; it then always fails and the cascade falls through.
func NewSemanticLayer(judge llm.Judge, cfg model.LLMConfig, budget Budget) *SemanticLayer {
	return &SemanticLayer{
		judge:  judge,
		config: cfg,
		budget: budget,
	}
}

// ID identifies the layer
func (l *SemanticLayer) ID() model.LayerID {
	return model.LayerL2
}

// Evaluate asks the reasoning service for a verdict, retrying only transient
// transport failures up to the configured budget.
func (l *SemanticLayer) Evaluate(ctx context.Context, claim model.Claim, _ model.MarkerSet) model.LayerOutcome {
	if l.judge == nil {
		return model.Failed(model.LayerL2, "semantic layer disabled (no provider configured)")
	}

	req := llm.JudgeRequest{
		ClaimText:     claim.Text,
		PromptVersion: l.config.PromptVersion,
	}

	attempts := l.config.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if l.budget != nil {
			if err := l.budget.Wait(ctx, ServiceSemantic); err != nil {
				return model.Failed(model.LayerL2, fmt.Sprintf("cancelled: %v", err))
			}
		}

		judgment, err := l.judge.JudgeClaim(ctx, req)
		if err == nil {
			return model.Decided(model.LayerL2, judgment.Label, judgment.Confidence)
		}
		lastErr = err

		switch {
		case llm.IsQuota(err):
			// Distinct log line: quota exhaustion needs operational attention
			fmt.Fprintf(os.Stderr, "QUOTA: semantic provider %s rejected claim %d: %v\n", l.judge.Name(), claim.ID, err)
			return model.Failed(model.LayerL2, err.Error())
		case llm.IsMalformed(err):
			return model.Failed(model.LayerL2, err.Error())
		case llm.IsTransient(err):
			if ctx.Err() != nil {
				return model.Failed(model.LayerL2, fmt.Sprintf("cancelled: %v", ctx.Err()))
			}
			// Retry
		default:
			return model.Failed(model.LayerL2, err.Error())
		}
	}

	return model.Failed(model.LayerL2, fmt.Sprintf("transient failure after %d attempts: %v", attempts, lastErr))
}
