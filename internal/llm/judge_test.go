package llm

import (
	"strings"
	"testing"

	"polemia/internal/model"
)

func TestParseJudgment(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		label      model.Label
		confidence float64
		wantErr    bool
	}{
		{"plain debatable", "debatable", model.LabelDebatable, 0.7, false},
		{"plain non-debatable", "non-debatable", model.LabelNonDebatable, 0.7, false},
		{"capitalized with period", "Debatable.", model.LabelDebatable, 0.7, false},
		{"quoted", `"non-debatable"`, model.LabelNonDebatable, 0.7, false},
		{"space variant", "Non debatable", model.LabelNonDebatable, 0.7, false},
		{
			"with confidence and rationale",
			"debatable\nconfidence: 0.85\nThe claim is a prediction about future events.",
			model.LabelDebatable, 0.85, false,
		},
		{
			"rationale mentioning the other label",
			"debatable\nThis is not a non-debatable settled fact.",
			model.LabelDebatable, 0.7, false,
		},
		{"confidence out of range ignored", "debatable\nconfidence: 1.5", model.LabelDebatable, 0.7, false},
		{"empty", "", "", 0, true},
		{"no label", "I cannot classify this claim.", "", 0, true},
		{"label buried in prose", "The claim is debatable in my view", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			judgment, err := ParseJudgment(tt.raw, 0.7)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsMalformed(err) {
					t.Errorf("expected malformed error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if judgment.Label != tt.label {
				t.Errorf("label = %s, want %s", judgment.Label, tt.label)
			}
			if judgment.Confidence != tt.confidence {
				t.Errorf("confidence = %.2f, want %.2f", judgment.Confidence, tt.confidence)
			}
		})
	}
}

func TestParseJudgment_Rationale(t *testing.T) {
	judgment, err := ParseJudgment("debatable\nconfidence: 0.9\nPure speculation about the future.", 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if judgment.Rationale == "" {
		t.Error("expected rationale to be captured")
	}
}

func TestBuildPrompt_ContainsClaimAndVersion(t *testing.T) {
	prompt := BuildPrompt("The moon is made of cheese.", "v1")

	for _, want := range []string{"The moon is made of cheese.", "v1", "debatable", "non-debatable"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
