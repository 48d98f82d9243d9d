package cascade

import (
	"context"

	"polemia/internal/model"
)

// OverrideLayer (L1) short-circuits claims that carry both a numeric+year
// token and an institutional source mention: those read as reported official
// figures and are treated as settled. The layer only ever asserts
// non-debatable; a conservative override never suppresses a contested claim.
type OverrideLayer struct{}

// NewOverrideLayer creates the authoritative override layer
func NewOverrideLayer() *OverrideLayer {
	return &OverrideLayer{}
}

// ID identifies the layer
func (l *OverrideLayer) ID() model.LayerID {
	return model.LayerL1
}

// Evaluate decides non-debatable iff both authoritative markers hold.
// No external dependency: never fails.
func (l *OverrideLayer) Evaluate(_ context.Context, _ model.Claim, markers model.MarkerSet) model.LayerOutcome {
	if markers.HasNumericYear && markers.HasInstitutionalSource {
		return model.Decided(model.LayerL1, model.LabelNonDebatable, 1.0)
	}
	return model.Inconclusive(model.LayerL1, "no authoritative marker pair")
}
