package cascade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"polemia/internal/markers"
	"polemia/internal/model"
)

// Orchestrator runs the L1→L2→L3→L4 cascade for one claim at a time. The
// first layer to decide short-circuits the rest; layers that fail or defer
// leave a provenance entry and the cascade advances. Classify never returns
// an error — every claim gets exactly one Decision.
type Orchestrator struct {
	detector       *markers.Detector
	layers         []Layer
	undecidedLabel model.Label
}

// NewOrchestrator creates a cascade orchestrator. Layers are attempted in the
// order given.
func NewOrchestrator(detector *markers.Detector, layers []Layer, cfg model.CascadeConfig) *Orchestrator {
	undecided := cfg.UndecidedLabel
	if !undecided.Valid() {
		undecided = model.LabelNonDebatable
	}

	return &Orchestrator{
		detector:       detector,
		layers:         layers,
		undecidedLabel: undecided,
	}
}

// Classify produces the single terminal Decision for a claim
func (o *Orchestrator) Classify(ctx context.Context, claim model.Claim) model.Decision {
	// Malformed input is the one fault that aborts a claim's cascade before
	// any layer runs. Always non-debatable: the undecided-label policy covers
	// exhausted cascades only, and unusable input must never trigger retrieval.
	if strings.TrimSpace(claim.Text) == "" {
		return model.Decision{
			ClaimID:    claim.ID,
			Text:       claim.Text,
			Label:      model.LabelNonDebatable,
			Confidence: 0,
			DecidedBy:  model.LayerInvalidInput,
			Provenance: []model.LayerOutcome{},
			DecidedAt:  time.Now().UTC(),
		}
	}

	// Markers are computed once per claim and shared by every layer
	markerSet := o.detector.Detect(claim.Text)

	provenance := make([]model.LayerOutcome, 0, len(o.layers))

	for _, layer := range o.layers {
		if err := ctx.Err(); err != nil {
			// Batch cancelled: do not start further layers, record why
			provenance = append(provenance, model.Failed(layer.ID(), fmt.Sprintf("cancelled before attempt: %v", err)))
			return o.undecided(claim, provenance)
		}

		outcome := layer.Evaluate(ctx, claim, markerSet)
		provenance = append(provenance, outcome)

		if outcome.Kind == model.OutcomeDecided {
			return model.Decision{
				ClaimID:    claim.ID,
				Text:       claim.Text,
				Label:      outcome.Label,
				Confidence: outcome.Confidence,
				DecidedBy:  outcome.Layer,
				Provenance: provenance,
				DecidedAt:  time.Now().UTC(),
			}
		}
	}

	return o.undecided(claim, provenance)
}

// undecided builds the terminal Decision when no layer decided. The label
// defaults conservatively (configurable) so downstream retrieval always has
// a concrete answer.
func (o *Orchestrator) undecided(claim model.Claim, provenance []model.LayerOutcome) model.Decision {
	return model.Decision{
		ClaimID:    claim.ID,
		Text:       claim.Text,
		Label:      o.undecidedLabel,
		Confidence: 0,
		DecidedBy:  model.LayerUndecided,
		Provenance: provenance,
		DecidedAt:  time.Now().UTC(),
	}
}
