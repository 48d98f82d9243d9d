package cascade

import (
	"context"

	"polemia/internal/model"
)

// RuleLayer (L3) is the deterministic fallback when semantic reasoning is
// unavailable: attributed opinions and hedged predictions read as debatable.
//
//	attribution marker        -> debatable (attribution confidence)
//	modality hedge only       -> debatable (modality confidence)
//	neither                   -> inconclusive
//
// Pure function of the MarkerSet: either decides or defers, never fails.
type RuleLayer struct {
	attributionConfidence float64
	modalityConfidence    float64
}

// NewRuleLayer creates the rule-based fallback layer
func NewRuleLayer(cfg model.RuleConfig) *RuleLayer {
	return &RuleLayer{
		attributionConfidence: cfg.AttributionConfidence,
		modalityConfidence:    cfg.ModalityConfidence,
	}
}

// ID identifies the layer
func (l *RuleLayer) ID() model.LayerID {
	return model.LayerL3
}

// Evaluate applies the attribution/modality decision table
func (l *RuleLayer) Evaluate(_ context.Context, _ model.Claim, markers model.MarkerSet) model.LayerOutcome {
	switch {
	case markers.HasAttributionMarker:
		return model.Decided(model.LayerL3, model.LabelDebatable, l.attributionConfidence)
	case markers.HasModalityHedge:
		return model.Decided(model.LayerL3, model.LabelDebatable, l.modalityConfidence)
	default:
		return model.Inconclusive(model.LayerL3, "no attribution or modality markers")
	}
}
