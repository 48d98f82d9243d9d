package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"polemia/internal/model"
)

// Judge defines the interface for semantic debatability judgment providers
type Judge interface {
	// Name returns the provider name
	Name() string

	// JudgeClaim asks the provider whether a claim is debatable
	JudgeClaim(ctx context.Context, req JudgeRequest) (*Judgment, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// JudgeRequest contains the input for a single judgment call
type JudgeRequest struct {
	// ClaimText is the claim to judge
	ClaimText string

	// PromptVersion selects the prompt template (recorded for auditing)
	PromptVersion string
}

// Judgment is a parsed provider verdict
type Judgment struct {
	Label      model.Label
	Confidence float64 // Provider certainty signal, or the configured default
	Rationale  string  // Short free-text justification, advisory only
	Model      string
	TokensUsed int
}

var confidencePattern = regexp.MustCompile(`(?i)confidence:\s*(0(\.\d+)?|1(\.0+)?)`)

// BuildPrompt constructs the fixed judgment prompt. The template is versioned
// so provenance records which wording produced a verdict.
func BuildPrompt(claimText, version string) string {
	return fmt.Sprintf(`You are classifying a single factual claim as "debatable" or "non-debatable" (prompt %s).

A claim is DEBATABLE if reasonable, informed people can disagree about it: predictions, value judgments, contested interpretations, attributed opinions.
A claim is NON-DEBATABLE if it states a settled, verifiable fact.

Respond with exactly one of the words "debatable" or "non-debatable" on the first line.
Optionally add "confidence: <number between 0 and 1>" on the second line, then a one-sentence justification.

Claim: %s`, version, claimText)
}

// ParseJudgment extracts a label, optional confidence, and justification from
// raw provider output. Anything that does not contain exactly one of the two
// labels is a MalformedError.
func ParseJudgment(raw string, defaultConfidence float64) (*Judgment, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &MalformedError{Reason: "empty response"}
	}

	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
	}
	firstLine = strings.ToLower(strings.Trim(strings.TrimSpace(firstLine), `"'.,:!`))

	// "debatable" is a substring of "non-debatable", so match the longer
	// label first. The verdict must be the entire first line; a label buried
	// in prose is not a verdict.
	var label model.Label
	switch firstLine {
	case string(model.LabelNonDebatable), "non debatable", "nondebatable":
		label = model.LabelNonDebatable
	case string(model.LabelDebatable):
		label = model.LabelDebatable
	default:
		return nil, &MalformedError{Reason: "no recognizable label in response"}
	}

	confidence := defaultConfidence
	if m := confidencePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0 && v <= 1 {
			confidence = v
		}
	}

	// Justification is whatever follows the label line
	rationale := ""
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		rationale = strings.TrimSpace(text[idx+1:])
	}

	return &Judgment{
		Label:      label,
		Confidence: confidence,
		Rationale:  rationale,
	}, nil
}
