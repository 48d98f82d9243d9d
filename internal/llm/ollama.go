package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"polemia/internal/model"
)

// OllamaJudge implements the Judge interface for Ollama local models
type OllamaJudge struct {
	baseURL    string
	httpClient *http.Client
	config     model.LLMConfig
}

// Ollama API structures
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count,omitempty"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaJudge creates a new Ollama judge
func NewOllamaJudge(config model.LLMConfig) (*OllamaJudge, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second // Local models can be slow on first load
	}

	return &OllamaJudge{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (j *OllamaJudge) Name() string {
	return "ollama"
}

// IsAvailable checks if Ollama is reachable
func (j *OllamaJudge) IsAvailable(ctx context.Context) bool {
	url := fmt.Sprintf("%s/api/tags", j.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (connection to %s): %v\n", j.baseURL, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// JudgeClaim asks the local model for a binary debatability verdict
func (j *OllamaJudge) JudgeClaim(ctx context.Context, req JudgeRequest) (*Judgment, error) {
	modelName := j.config.Model
	if modelName == "" {
		modelName = "llama3.2"
	}

	body := ollamaRequest{
		Model:  modelName,
		Prompt: BuildPrompt(req.ClaimText, req.PromptVersion),
		Stream: false,
		System: "You classify factual claims as debatable or non-debatable. Answer with the label only, then optional confidence and justification.",
		Options: ollamaOptions{
			Temperature: 0,
			NumPredict:  150,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", j.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := j.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &QuotaError{Err: fmt.Errorf("ollama returned 429")}
	case resp.StatusCode >= 500:
		return nil, &TransientError{Err: fmt.Errorf("ollama returned %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		var apiErr ollamaError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("ollama error: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("ollama returned %d", resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(data, &ollamaResp); err != nil {
		return nil, &MalformedError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	judgment, err := ParseJudgment(ollamaResp.Response, j.config.DefaultConfidence)
	if err != nil {
		return nil, err
	}

	judgment.Model = modelName
	judgment.TokensUsed = ollamaResp.EvalCount
	return judgment, nil
}
