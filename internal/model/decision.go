package model

import "time"

// Label is the closed set of debatability labels. Every layer boundary uses
// this type rather than free-form strings.
type Label string

const (
	LabelDebatable    Label = "debatable"     // Admits reasonable disagreement
	LabelNonDebatable Label = "non-debatable" // Settled fact
)

// Valid reports whether the label is one of the two known values
func (l Label) Valid() bool {
	return l == LabelDebatable || l == LabelNonDebatable
}

// LayerID identifies which cascade layer produced an outcome or decision
type LayerID string

const (
	LayerL1 LayerID = "L1" // Authoritative override
	LayerL2 LayerID = "L2" // Semantic reasoning (LLM)
	LayerL3 LayerID = "L3" // Rule-based fallback
	LayerL4 LayerID = "L4" // Zero-shot fallback

	// Terminal markers, never attempted as layers
	LayerUndecided    LayerID = "UNDECIDED"     // All four layers failed or were inconclusive
	LayerInvalidInput LayerID = "INVALID_INPUT" // Claim text was empty or unusable
)

// OutcomeKind tags the result of a single layer attempt
type OutcomeKind string

const (
	OutcomeDecided      OutcomeKind = "decided"
	OutcomeInconclusive OutcomeKind = "inconclusive"
	OutcomeFailed       OutcomeKind = "failed"
)

// LayerOutcome is the result of invoking one layer on one claim
type LayerOutcome struct {
	Layer      LayerID     `json:"layer"`
	Kind       OutcomeKind `json:"kind"`
	Label      Label       `json:"label,omitempty"`      // Set only when Kind == decided
	Confidence float64     `json:"confidence,omitempty"` // [0,1], set only when Kind == decided
	Reason     string      `json:"reason,omitempty"`     // Failure reason or inconclusive note
}

// Decided constructs a decided outcome for a layer
func Decided(layer LayerID, label Label, confidence float64) LayerOutcome {
	return LayerOutcome{Layer: layer, Kind: OutcomeDecided, Label: label, Confidence: confidence}
}

// Inconclusive constructs a deferring outcome for a layer
func Inconclusive(layer LayerID, reason string) LayerOutcome {
	return LayerOutcome{Layer: layer, Kind: OutcomeInconclusive, Reason: reason}
}

// Failed constructs a failure outcome for a layer
func Failed(layer LayerID, reason string) LayerOutcome {
	return LayerOutcome{Layer: layer, Kind: OutcomeFailed, Reason: reason}
}

// Decision is the terminal cascade output for one claim. Created exactly once
// per claim; never revised after creation.
type Decision struct {
	ClaimID    int            `json:"claim_id"`
	Text       string         `json:"claim"`
	Label      Label          `json:"label"`
	Confidence float64        `json:"confidence"`
	DecidedBy  LayerID        `json:"decided_by_layer"`
	Provenance []LayerOutcome `json:"provenance"` // Ordered record of attempted layers
	DecidedAt  time.Time      `json:"decided_at"`
}

// Triggered reports whether this decision should trigger downstream evidence
// retrieval. Only debatable claims are worth the search/scrape cost.
func (d Decision) Triggered() bool {
	return d.Label == LabelDebatable
}
