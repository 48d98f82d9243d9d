package cascade

import (
	"context"
	"errors"
	"testing"

	"polemia/internal/llm"
	"polemia/internal/markers"
	"polemia/internal/model"
	"polemia/internal/zeroshot"
)

// stubJudge implements llm.Judge with scripted behavior
type stubJudge struct {
	calls    int
	errs     []error       // consumed per call; nil entry means success
	judgment llm.Judgment  // returned on success
}

func (s *stubJudge) Name() string { return "stub" }

func (s *stubJudge) IsAvailable(ctx context.Context) bool { return true }

func (s *stubJudge) JudgeClaim(ctx context.Context, req llm.JudgeRequest) (*llm.Judgment, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	j := s.judgment
	return &j, nil
}

// stubClassifier implements ZeroShotClassifier with fixed scores
type stubClassifier struct {
	calls  int
	scores zeroshot.Scores
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, claimText string) (zeroshot.Scores, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func testLLMConfig() model.LLMConfig {
	cfg := model.DefaultConfig().LLM
	cfg.MaxRetries = 1
	return cfg
}

func newTestOrchestrator(judge llm.Judge, classifier ZeroShotClassifier) *Orchestrator {
	cfg := model.DefaultConfig()
	detector := markers.NewDetector(cfg.Markers)
	layers := []Layer{
		NewOverrideLayer(),
		NewSemanticLayer(judge, testLLMConfig(), nil),
		NewRuleLayer(cfg.Rules),
		NewZeroShotLayer(classifier, cfg.ZeroShot.TieMargin, nil),
	}
	return NewOrchestrator(detector, layers, cfg.Cascade)
}

func TestOverrideLayer(t *testing.T) {
	l := NewOverrideLayer()
	claim := model.Claim{ID: 1, Text: "x"}

	tests := []struct {
		name    string
		markers model.MarkerSet
		decided bool
	}{
		{"both markers", model.MarkerSet{HasNumericYear: true, HasInstitutionalSource: true}, true},
		{"numeric year only", model.MarkerSet{HasNumericYear: true}, false},
		{"institutional only", model.MarkerSet{HasInstitutionalSource: true}, false},
		{"neither", model.MarkerSet{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := l.Evaluate(context.Background(), claim, tt.markers)
			if tt.decided {
				if outcome.Kind != model.OutcomeDecided {
					t.Fatalf("expected decided, got %s", outcome.Kind)
				}
				if outcome.Label != model.LabelNonDebatable || outcome.Confidence != 1.0 {
					t.Errorf("expected non-debatable at 1.0, got %s at %.2f", outcome.Label, outcome.Confidence)
				}
			} else if outcome.Kind != model.OutcomeInconclusive {
				t.Errorf("expected inconclusive, got %s", outcome.Kind)
			}
		})
	}
}

func TestRuleLayer_DecisionTable(t *testing.T) {
	cfg := model.RuleConfig{AttributionConfidence: 0.6, ModalityConfidence: 0.55}
	l := NewRuleLayer(cfg)
	claim := model.Claim{ID: 1, Text: "x"}

	tests := []struct {
		name        string
		markers     model.MarkerSet
		kind        model.OutcomeKind
		confidence  float64
	}{
		{"attribution", model.MarkerSet{HasAttributionMarker: true}, model.OutcomeDecided, 0.6},
		{"attribution and modality", model.MarkerSet{HasAttributionMarker: true, HasModalityHedge: true}, model.OutcomeDecided, 0.6},
		{"modality only", model.MarkerSet{HasModalityHedge: true}, model.OutcomeDecided, 0.55},
		{"neither", model.MarkerSet{}, model.OutcomeInconclusive, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := l.Evaluate(context.Background(), claim, tt.markers)
			if outcome.Kind != tt.kind {
				t.Fatalf("expected %s, got %s", tt.kind, outcome.Kind)
			}
			if outcome.Kind == model.OutcomeDecided {
				if outcome.Label != model.LabelDebatable {
					t.Errorf("expected debatable, got %s", outcome.Label)
				}
				if outcome.Confidence != tt.confidence {
					t.Errorf("expected confidence %.2f, got %.2f", tt.confidence, outcome.Confidence)
				}
			}
		})
	}
}

func TestSemanticLayer_RetriesTransientOnly(t *testing.T) {
	claim := model.Claim{ID: 1, Text: "Some claim."}

	t.Run("transient then success", func(t *testing.T) {
		judge := &stubJudge{
			errs:     []error{&llm.TransientError{Err: errors.New("timeout")}, nil},
			judgment: llm.Judgment{Label: model.LabelDebatable, Confidence: 0.8},
		}
		l := NewSemanticLayer(judge, testLLMConfig(), nil)

		outcome := l.Evaluate(context.Background(), claim, model.MarkerSet{})
		if outcome.Kind != model.OutcomeDecided {
			t.Fatalf("expected decided after retry, got %s (%s)", outcome.Kind, outcome.Reason)
		}
		if judge.calls != 2 {
			t.Errorf("expected 2 calls (1 retry), got %d", judge.calls)
		}
	})

	t.Run("transient exhausted", func(t *testing.T) {
		judge := &stubJudge{errs: []error{
			&llm.TransientError{Err: errors.New("timeout")},
			&llm.TransientError{Err: errors.New("timeout")},
		}}
		l := NewSemanticLayer(judge, testLLMConfig(), nil)

		outcome := l.Evaluate(context.Background(), claim, model.MarkerSet{})
		if outcome.Kind != model.OutcomeFailed {
			t.Fatalf("expected failed, got %s", outcome.Kind)
		}
		if judge.calls != 2 {
			t.Errorf("expected 2 calls, got %d", judge.calls)
		}
	})

	t.Run("quota not retried", func(t *testing.T) {
		judge := &stubJudge{errs: []error{&llm.QuotaError{Err: errors.New("429")}}}
		l := NewSemanticLayer(judge, testLLMConfig(), nil)

		outcome := l.Evaluate(context.Background(), claim, model.MarkerSet{})
		if outcome.Kind != model.OutcomeFailed {
			t.Fatalf("expected failed, got %s", outcome.Kind)
		}
		if judge.calls != 1 {
			t.Errorf("quota errors must not be retried, got %d calls", judge.calls)
		}
	})

	t.Run("malformed not retried", func(t *testing.T) {
		judge := &stubJudge{errs: []error{&llm.MalformedError{Reason: "gibberish"}}}
		l := NewSemanticLayer(judge, testLLMConfig(), nil)

		outcome := l.Evaluate(context.Background(), claim, model.MarkerSet{})
		if outcome.Kind != model.OutcomeFailed {
			t.Fatalf("expected failed, got %s", outcome.Kind)
		}
		if judge.calls != 1 {
			t.Errorf("malformed responses must not be retried, got %d calls", judge.calls)
		}
	})

	t.Run("disabled judge fails", func(t *testing.T) {
		l := NewSemanticLayer(nil, testLLMConfig(), nil)
		outcome := l.Evaluate(context.Background(), claim, model.MarkerSet{})
		if outcome.Kind != model.OutcomeFailed {
			t.Fatalf("expected failed for disabled layer, got %s", outcome.Kind)
		}
	})
}

func TestZeroShotLayer_TieMargin(t *testing.T) {
	claim := model.Claim{ID: 1, Text: "Some claim."}

	t.Run("clear winner", func(t *testing.T) {
		c := &stubClassifier{scores: zeroshot.Scores{
			model.LabelDebatable:    0.7,
			model.LabelNonDebatable: 0.3,
		}}
		l := NewZeroShotLayer(c, 0.05, nil)

		outcome := l.Evaluate(context.Background(), claim, model.MarkerSet{})
		if outcome.Kind != model.OutcomeDecided || outcome.Label != model.LabelDebatable {
			t.Fatalf("expected decided debatable, got %s %s", outcome.Kind, outcome.Label)
		}
		if outcome.Confidence != 0.7 {
			t.Errorf("expected confidence 0.7, got %.2f", outcome.Confidence)
		}
	})

	t.Run("tie abstains", func(t *testing.T) {
		c := &stubClassifier{scores: zeroshot.Scores{
			model.LabelDebatable:    0.52,
			model.LabelNonDebatable: 0.48,
		}}
		l := NewZeroShotLayer(c, 0.05, nil)

		outcome := l.Evaluate(context.Background(), claim, model.MarkerSet{})
		if outcome.Kind != model.OutcomeInconclusive {
			t.Fatalf("expected inconclusive within tie margin, got %s", outcome.Kind)
		}
	})

	t.Run("service failure", func(t *testing.T) {
		c := &stubClassifier{err: errors.New("model unavailable")}
		l := NewZeroShotLayer(c, 0.05, nil)

		outcome := l.Evaluate(context.Background(), claim, model.MarkerSet{})
		if outcome.Kind != model.OutcomeFailed {
			t.Fatalf("expected failed, got %s", outcome.Kind)
		}
	})
}

func TestOrchestrator_AuthoritativeShortCircuit(t *testing.T) {
	judge := &stubJudge{judgment: llm.Judgment{Label: model.LabelDebatable, Confidence: 0.9}}
	classifier := &stubClassifier{scores: zeroshot.Scores{model.LabelDebatable: 0.9, model.LabelNonDebatable: 0.1}}
	o := newTestOrchestrator(judge, classifier)

	claim := model.Claim{ID: 1, Text: "India's GDP grew by 7.2% in 2022, according to the Ministry of Finance."}
	decision := o.Classify(context.Background(), claim)

	if decision.Label != model.LabelNonDebatable {
		t.Errorf("expected non-debatable, got %s", decision.Label)
	}
	if decision.DecidedBy != model.LayerL1 {
		t.Errorf("expected L1, got %s", decision.DecidedBy)
	}
	if decision.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %.2f", decision.Confidence)
	}
	if len(decision.Provenance) != 1 {
		t.Errorf("expected single provenance entry, got %d", len(decision.Provenance))
	}
	if judge.calls != 0 || classifier.calls != 0 {
		t.Errorf("L1 short-circuit must not invoke L2/L4: judge=%d, zeroshot=%d", judge.calls, classifier.calls)
	}
}

func TestOrchestrator_RuleFallbackAfterSemanticFailure(t *testing.T) {
	judge := &stubJudge{errs: []error{
		&llm.TransientError{Err: errors.New("timeout")},
		&llm.TransientError{Err: errors.New("timeout")},
	}}
	classifier := &stubClassifier{scores: zeroshot.Scores{model.LabelDebatable: 0.9, model.LabelNonDebatable: 0.1}}
	o := newTestOrchestrator(judge, classifier)

	claim := model.Claim{ID: 2, Text: "Critics argue that the new policy could harm small businesses."}
	decision := o.Classify(context.Background(), claim)

	if decision.Label != model.LabelDebatable {
		t.Errorf("expected debatable, got %s", decision.Label)
	}
	if decision.DecidedBy != model.LayerL3 {
		t.Errorf("expected L3, got %s", decision.DecidedBy)
	}
	if decision.Confidence != 0.6 {
		t.Errorf("expected confidence 0.6, got %.2f", decision.Confidence)
	}
	if len(decision.Provenance) != 3 {
		t.Errorf("expected 3 provenance entries (L1, L2, L3), got %d", len(decision.Provenance))
	}
	if classifier.calls != 0 {
		t.Errorf("L3 decision must not invoke L4, got %d calls", classifier.calls)
	}
}

func TestOrchestrator_SemanticShortCircuit(t *testing.T) {
	judge := &stubJudge{judgment: llm.Judgment{Label: model.LabelDebatable, Confidence: 0.8}}
	classifier := &stubClassifier{scores: zeroshot.Scores{model.LabelDebatable: 0.9, model.LabelNonDebatable: 0.1}}
	o := newTestOrchestrator(judge, classifier)

	claim := model.Claim{ID: 3, Text: "Artificial intelligence will replace most human jobs within the next 20 years."}
	decision := o.Classify(context.Background(), claim)

	if decision.DecidedBy != model.LayerL2 {
		t.Errorf("expected L2, got %s", decision.DecidedBy)
	}
	if decision.Label != model.LabelDebatable || decision.Confidence != 0.8 {
		t.Errorf("expected debatable at 0.8, got %s at %.2f", decision.Label, decision.Confidence)
	}
	if len(decision.Provenance) != 2 {
		t.Errorf("expected 2 provenance entries (L1, L2), got %d", len(decision.Provenance))
	}
	if classifier.calls != 0 {
		t.Errorf("L2 decision must not invoke L4, got %d calls", classifier.calls)
	}
}

func TestOrchestrator_InvalidInput(t *testing.T) {
	judge := &stubJudge{}
	classifier := &stubClassifier{}
	o := newTestOrchestrator(judge, classifier)

	for _, text := range []string{"", "   "} {
		decision := o.Classify(context.Background(), model.Claim{ID: 4, Text: text})

		if decision.DecidedBy != model.LayerInvalidInput {
			t.Errorf("expected INVALID_INPUT for %q, got %s", text, decision.DecidedBy)
		}
		if len(decision.Provenance) != 0 {
			t.Errorf("expected no layers attempted, got %d", len(decision.Provenance))
		}
	}

	if judge.calls != 0 || classifier.calls != 0 {
		t.Errorf("invalid input must not invoke any layer: judge=%d, zeroshot=%d", judge.calls, classifier.calls)
	}
}

func TestOrchestrator_AllLayersExhausted(t *testing.T) {
	judge := &stubJudge{errs: []error{
		&llm.QuotaError{Err: errors.New("429")},
	}}
	classifier := &stubClassifier{err: errors.New("model unavailable")}
	o := newTestOrchestrator(judge, classifier)

	// No markers at all: L1 and L3 defer, L2 and L4 fail
	claim := model.Claim{ID: 5, Text: "Paris is the capital of France."}
	decision := o.Classify(context.Background(), claim)

	if decision.DecidedBy != model.LayerUndecided {
		t.Errorf("expected UNDECIDED, got %s", decision.DecidedBy)
	}
	if decision.Label != model.LabelNonDebatable {
		t.Errorf("expected conservative non-debatable default, got %s", decision.Label)
	}
	if decision.Confidence != 0 {
		t.Errorf("expected confidence 0, got %.2f", decision.Confidence)
	}
	if len(decision.Provenance) != 4 {
		t.Fatalf("expected 4 provenance entries, got %d", len(decision.Provenance))
	}

	wantLayers := []model.LayerID{model.LayerL1, model.LayerL2, model.LayerL3, model.LayerL4}
	for i, want := range wantLayers {
		if decision.Provenance[i].Layer != want {
			t.Errorf("provenance[%d] = %s, want %s", i, decision.Provenance[i].Layer, want)
		}
	}
}

func TestOrchestrator_ConfigurableUndecidedLabel(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cascade.UndecidedLabel = model.LabelDebatable

	detector := markers.NewDetector(cfg.Markers)
	layers := []Layer{
		NewOverrideLayer(),
		NewSemanticLayer(nil, testLLMConfig(), nil),
		NewRuleLayer(cfg.Rules),
		NewZeroShotLayer(nil, cfg.ZeroShot.TieMargin, nil),
	}
	o := NewOrchestrator(detector, layers, cfg.Cascade)

	decision := o.Classify(context.Background(), model.Claim{ID: 6, Text: "Paris is the capital of France."})

	if decision.DecidedBy != model.LayerUndecided {
		t.Fatalf("expected UNDECIDED, got %s", decision.DecidedBy)
	}
	if decision.Label != model.LabelDebatable {
		t.Errorf("expected configured debatable default, got %s", decision.Label)
	}
}

func TestOrchestrator_InvalidInputIgnoresUndecidedLabel(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cascade.UndecidedLabel = model.LabelDebatable

	detector := markers.NewDetector(cfg.Markers)
	layers := []Layer{
		NewOverrideLayer(),
		NewSemanticLayer(nil, testLLMConfig(), nil),
		NewRuleLayer(cfg.Rules),
		NewZeroShotLayer(nil, cfg.ZeroShot.TieMargin, nil),
	}
	o := NewOrchestrator(detector, layers, cfg.Cascade)

	for _, text := range []string{"", "   "} {
		decision := o.Classify(context.Background(), model.Claim{ID: 7, Text: text})

		if decision.DecidedBy != model.LayerInvalidInput {
			t.Fatalf("expected INVALID_INPUT for %q, got %s", text, decision.DecidedBy)
		}
		// The undecided-label policy applies to exhausted cascades only;
		// unusable input must never gate retrieval open
		if decision.Label != model.LabelNonDebatable {
			t.Errorf("invalid input for %q got label %s, want non-debatable", text, decision.Label)
		}
		if decision.Triggered() {
			t.Errorf("invalid input for %q must not trigger downstream retrieval", text)
		}
	}
}

func TestOrchestrator_Idempotent(t *testing.T) {
	claims := []model.Claim{
		{ID: 1, Text: "India's GDP grew by 7.2% in 2022, according to the Ministry of Finance."},
		{ID: 2, Text: "Critics argue that the new policy could harm small businesses."},
		{ID: 3, Text: "Paris is the capital of France."},
	}

	for _, claim := range claims {
		makeOrchestrator := func() *Orchestrator {
			judge := &stubJudge{errs: []error{&llm.QuotaError{Err: errors.New("429")}}}
			classifier := &stubClassifier{scores: zeroshot.Scores{
				model.LabelDebatable:    0.3,
				model.LabelNonDebatable: 0.7,
			}}
			return newTestOrchestrator(judge, classifier)
		}

		first := makeOrchestrator().Classify(context.Background(), claim)
		second := makeOrchestrator().Classify(context.Background(), claim)

		if first.Label != second.Label || first.DecidedBy != second.DecidedBy ||
			first.Confidence != second.Confidence || len(first.Provenance) != len(second.Provenance) {
			t.Errorf("claim %d: decisions differ across identical runs:\n%+v\n%+v", claim.ID, first, second)
		}
	}
}

func TestOrchestrator_Cancellation(t *testing.T) {
	judge := &stubJudge{judgment: llm.Judgment{Label: model.LabelDebatable, Confidence: 0.8}}
	classifier := &stubClassifier{}
	o := newTestOrchestrator(judge, classifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decision := o.Classify(ctx, model.Claim{ID: 7, Text: "Paris is the capital of France."})

	if decision.DecidedBy != model.LayerUndecided {
		t.Errorf("expected UNDECIDED on cancellation, got %s", decision.DecidedBy)
	}
	if len(decision.Provenance) != 1 {
		t.Fatalf("expected single cancellation provenance entry, got %d", len(decision.Provenance))
	}
	if decision.Provenance[0].Kind != model.OutcomeFailed {
		t.Errorf("expected failed cancellation entry, got %s", decision.Provenance[0].Kind)
	}
	if judge.calls != 0 || classifier.calls != 0 {
		t.Errorf("cancelled cascade must not invoke layers: judge=%d, zeroshot=%d", judge.calls, classifier.calls)
	}
}
