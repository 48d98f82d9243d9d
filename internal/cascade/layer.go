package cascade

import (
	"context"

	"polemia/internal/model"
)

// Layer is the uniform contract every cascade layer satisfies: given a claim
// and its precomputed markers, produce exactly one LayerOutcome. Layers never
// return errors; every failure is expressed as a failed outcome so the
// orchestrator can fall through.
type Layer interface {
	// ID identifies the layer in decisions and provenance traces
	ID() model.LayerID

	// Evaluate attempts to classify the claim
	Evaluate(ctx context.Context, claim model.Claim, markers model.MarkerSet) model.LayerOutcome
}

// Budget gates network-backed layers on a shared per-service rate limit so
// concurrent claims cannot exceed external quota together.
type Budget interface {
	Wait(ctx context.Context, service string) error
}

// Service names used with a Budget
const (
	ServiceSemantic = "l2"
	ServiceZeroShot = "l4"
)
