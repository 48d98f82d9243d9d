package markers

import (
	"regexp"
	"strings"

	"polemia/internal/model"
)

var (
	numericPattern = regexp.MustCompile(`\d+(\.\d+)?%?`)
	yearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// Detector scans claim text for the surface markers the cascade's
// deterministic layers consume. Stateless and pure: the same text always
// yields the same MarkerSet, and degenerate input yields all-false.
type Detector struct {
	institutional []string
	attribution   []string
	modality      []string
}

// NewDetector creates a detector from the configured term lists
func NewDetector(cfg model.MarkerConfig) *Detector {
	return &Detector{
		institutional: lowerAll(cfg.InstitutionalSources),
		attribution:   lowerAll(cfg.AttributionMarkers),
		modality:      lowerAll(cfg.ModalityMarkers),
	}
}

// Detect computes the MarkerSet for a claim's text
func (d *Detector) Detect(text string) model.MarkerSet {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.MarkerSet{}
	}

	lower := strings.ToLower(text)

	return model.MarkerSet{
		HasNumericYear:         hasNumericYear(lower),
		HasInstitutionalSource: containsAny(lower, d.institutional),
		HasAttributionMarker:   containsAny(lower, d.attribution),
		HasModalityHedge:       containsAny(lower, d.modality),
	}
}

// hasNumericYear reports whether a numeric quantity and a four-digit year
// co-occur within the same sentence. A bare year also matches the numeric
// pattern, so the quantity must be a distinct token.
func hasNumericYear(text string) bool {
	for _, sentence := range splitSentences(text) {
		year := yearPattern.FindString(sentence)
		if year == "" {
			continue
		}
		for _, num := range numericPattern.FindAllString(sentence, -1) {
			if num != year {
				return true
			}
		}
	}
	return false
}

// splitSentences splits text on sentence terminators (simple heuristic)
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return out
}
