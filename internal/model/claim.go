package model

// Claim represents a single factual assertion delivered by the upstream
// extraction/simplification stage. The cascade reads ID and Text; everything
// else is passed through untouched.
type Claim struct {
	ID         int      `json:"claim_id"`                   // Sequence order, preserved across the pipeline
	Text       string   `json:"claim"`                      // The claim text itself
	Simplified string   `json:"simplified_claim,omitempty"` // Optional simplified form from upstream
	Entities   []Entity `json:"entities,omitempty"`         // Optional entity enrichment (ignored by the cascade)
}

// Entity is enrichment metadata attached by the upstream NER stage
type Entity struct {
	Name       string `json:"name"`
	Definition string `json:"definition,omitempty"`
}

// MarkerSet holds the surface markers detected in a claim's text.
// Pure function of the text: recomputing it is always deterministic.
type MarkerSet struct {
	HasNumericYear         bool `json:"has_numeric_year"`         // Numeric quantity + four-digit year in the same sentence
	HasInstitutionalSource bool `json:"has_institutional_source"` // Government agency, standards body, journal phrasing
	HasAttributionMarker   bool `json:"has_attribution_marker"`   // "argue", "claim", "critics say"
	HasModalityHedge       bool `json:"has_modality_hedge"`       // "could", "may", "is expected to"
}
