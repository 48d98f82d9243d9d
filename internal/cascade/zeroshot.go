package cascade

import (
	"context"
	"fmt"
	"math"

	"polemia/internal/model"
	"polemia/internal/zeroshot"
)

// ZeroShotClassifier scores a claim against the debatability labels.
// Satisfied by *zeroshot.Client; stubbed in tests.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, claimText string) (zeroshot.Scores, error)
}

// ZeroShotLayer (L4) is the last resort: a generic pretrained classifier with
// fixed candidate labels. When its top two scores are within the tie margin
// it abstains — an uncertain zero-shot call is less trustworthy than deferring
// to the cascade default.
type ZeroShotLayer struct {
	classifier ZeroShotClassifier
	tieMargin  float64
	budget     Budget
}

// NewZeroShotLayer creates the zero-shot fallback layer
func NewZeroShotLayer(classifier ZeroShotClassifier, tieMargin float64, budget Budget) *ZeroShotLayer {
	return &ZeroShotLayer{
		classifier: classifier,
		tieMargin:  tieMargin,
		budget:     budget,
	}
}

// ID identifies the layer
func (l *ZeroShotLayer) ID() model.LayerID {
	return model.LayerL4
}

// Evaluate scores the claim and picks the higher-scoring label unless the
// margin is too thin to trust.
func (l *ZeroShotLayer) Evaluate(ctx context.Context, claim model.Claim, _ model.MarkerSet) model.LayerOutcome {
	if l.classifier == nil {
		return model.Failed(model.LayerL4, "zero-shot layer disabled (no classifier configured)")
	}

	if l.budget != nil {
		if err := l.budget.Wait(ctx, ServiceZeroShot); err != nil {
			return model.Failed(model.LayerL4, fmt.Sprintf("cancelled: %v", err))
		}
	}

	scores, err := l.classifier.Classify(ctx, claim.Text)
	if err != nil {
		return model.Failed(model.LayerL4, err.Error())
	}

	debatable := scores[model.LabelDebatable]
	nonDebatable := scores[model.LabelNonDebatable]

	if math.Abs(debatable-nonDebatable) < l.tieMargin {
		return model.Inconclusive(model.LayerL4,
			fmt.Sprintf("scores within tie margin (%.3f vs %.3f)", debatable, nonDebatable))
	}

	if debatable > nonDebatable {
		return model.Decided(model.LayerL4, model.LabelDebatable, debatable)
	}
	return model.Decided(model.LayerL4, model.LabelNonDebatable, nonDebatable)
}
