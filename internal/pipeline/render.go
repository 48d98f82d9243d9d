package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"polemia/internal/model"
)

// Renderer writes decisions as JSON (machine-readable, handed to the
// evidence-retrieval stage) and Markdown (human-readable audit view).
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// batchReport is the JSON envelope for a batch of decisions
type batchReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Total       int              `json:"total"`
	Debatable   int              `json:"debatable"`
	Decisions   []model.Decision `json:"decisions"`
}

// RenderJSON writes decisions to a JSON file
func (r *Renderer) RenderJSON(decisions []model.Decision, path string) error {
	report := batchReport{
		GeneratedAt: time.Now().UTC(),
		Total:       len(decisions),
		Decisions:   decisions,
	}
	for _, d := range decisions {
		if d.Triggered() {
			report.Debatable++
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal decisions: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}

	return nil
}

// RenderMarkdown writes a human-readable decision summary to a Markdown file
func (r *Renderer) RenderMarkdown(decisions []model.Decision, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create markdown file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return r.WriteMarkdown(file, decisions)
}

// WriteMarkdown renders the decision table and provenance traces to w
func (r *Renderer) WriteMarkdown(w io.Writer, decisions []model.Decision) error {
	var b strings.Builder

	b.WriteString("# Debatability Decisions\n\n")

	debatable := 0
	for _, d := range decisions {
		if d.Triggered() {
			debatable++
		}
	}
	fmt.Fprintf(&b, "%d claims, %d debatable (retrieval triggered), %d non-debatable.\n\n",
		len(decisions), debatable, len(decisions)-debatable)

	b.WriteString("| ID | Label | Confidence | Decided By | Claim |\n")
	b.WriteString("|----|-------|------------|------------|-------|\n")
	for _, d := range decisions {
		fmt.Fprintf(&b, "| %d | %s | %.2f | %s | %s |\n",
			d.ClaimID, d.Label, d.Confidence, d.DecidedBy, truncate(d.Text, 80))
	}

	b.WriteString("\n## Provenance\n\n")
	for _, d := range decisions {
		fmt.Fprintf(&b, "### Claim %d\n\n", d.ClaimID)
		if len(d.Provenance) == 0 {
			b.WriteString("No layers attempted.\n\n")
			continue
		}
		for _, outcome := range d.Provenance {
			switch outcome.Kind {
			case model.OutcomeDecided:
				fmt.Fprintf(&b, "- %s: decided %s (%.2f)\n", outcome.Layer, outcome.Label, outcome.Confidence)
			default:
				fmt.Fprintf(&b, "- %s: %s (%s)\n", outcome.Layer, outcome.Kind, outcome.Reason)
			}
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n")
		fmt.Fprintf(&b, "Generated by polemia at %s\n", time.Now().UTC().Format(time.RFC3339))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// truncate shortens claim text for the Markdown table, counting runes so a
// multi-byte character at the boundary is never split.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}
