package zeroshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"polemia/internal/llm"
	"polemia/internal/model"
)

// Client calls a hosted zero-shot classification endpoint (Hugging Face
// inference API shape): the model scores arbitrary candidate labels without
// task-specific fine-tuning.
type Client struct {
	baseURL    string
	model      string
	apiToken   string
	httpClient *http.Client
}

// Scores holds per-label probabilities, normalized to sum to 1.0
type Scores map[model.Label]float64

// Inference API structures
type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type inferenceResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type inferenceError struct {
	Error string `json:"error"`
}

// NewClient creates a zero-shot client from configuration
func NewClient(cfg model.ZeroShotConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		model:    cfg.Model,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Classify scores the claim against the two debatability labels. The response
// must cover both candidates with scores summing to 1.0 (small tolerance) or
// it is rejected as malformed.
func (c *Client) Classify(ctx context.Context, claimText string) (Scores, error) {
	body := inferenceRequest{
		Inputs: claimText,
		Parameters: inferenceParameters{
			CandidateLabels: []string{
				string(model.LabelDebatable),
				string(model.LabelNonDebatable),
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &llm.TransientError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.TransientError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &llm.QuotaError{Err: fmt.Errorf("inference API returned 429")}
	case resp.StatusCode == http.StatusServiceUnavailable:
		// The hosted model is still loading; retryable
		return nil, &llm.TransientError{Err: fmt.Errorf("inference API returned 503 (model loading)")}
	case resp.StatusCode >= 500:
		return nil, &llm.TransientError{Err: fmt.Errorf("inference API returned %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		var apiErr inferenceError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("inference API error: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("inference API returned %d", resp.StatusCode)
	}

	var infResp inferenceResponse
	if err := json.Unmarshal(data, &infResp); err != nil {
		return nil, &llm.MalformedError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	return validateScores(infResp)
}

// validateScores converts the parallel label/score arrays into a Scores map,
// rejecting responses that miss a candidate or whose scores do not sum to 1.0
func validateScores(resp inferenceResponse) (Scores, error) {
	if len(resp.Labels) != len(resp.Scores) {
		return nil, &llm.MalformedError{Reason: "labels and scores length mismatch"}
	}

	scores := make(Scores, len(resp.Labels))
	sum := 0.0
	for i, raw := range resp.Labels {
		label := model.Label(strings.ToLower(strings.TrimSpace(raw)))
		if !label.Valid() {
			return nil, &llm.MalformedError{Reason: fmt.Sprintf("unexpected label %q", raw)}
		}
		scores[label] = resp.Scores[i]
		sum += resp.Scores[i]
	}

	if _, ok := scores[model.LabelDebatable]; !ok {
		return nil, &llm.MalformedError{Reason: "missing debatable score"}
	}
	if _, ok := scores[model.LabelNonDebatable]; !ok {
		return nil, &llm.MalformedError{Reason: "missing non-debatable score"}
	}

	if math.Abs(sum-1.0) > 0.01 {
		return nil, &llm.MalformedError{Reason: fmt.Sprintf("scores sum to %.3f, expected 1.0", sum)}
	}

	return scores, nil
}
