package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"

	"polemia/internal/model"
)

// OpenAIJudge implements the Judge interface for OpenAI chat models
type OpenAIJudge struct {
	client *openai.Client
	config model.LLMConfig
}

// NewOpenAIJudge creates a new OpenAI judge
func NewOpenAIJudge(config model.LLMConfig) (*OpenAIJudge, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIJudge{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (j *OpenAIJudge) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (j *OpenAIJudge) IsAvailable(ctx context.Context) bool {
	_, err := j.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// JudgeClaim asks the model for a binary debatability verdict
func (j *OpenAIJudge) JudgeClaim(ctx context.Context, req JudgeRequest) (*Judgment, error) {
	modelName := j.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	timeout := time.Duration(j.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You classify factual claims as debatable or non-debatable. Answer with the label only, then optional confidence and justification.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req.ClaimText, req.PromptVersion),
			},
		},
		MaxTokens:   150,
		Temperature: 0, // Deterministic as the API allows; this is a classifier, not a writer
	}

	resp, err := j.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &MalformedError{Reason: "no choices in response"}
	}

	judgment, err := ParseJudgment(resp.Choices[0].Message.Content, j.config.DefaultConfidence)
	if err != nil {
		return nil, err
	}

	judgment.Model = modelName
	judgment.TokensUsed = resp.Usage.TotalTokens
	return judgment, nil
}

// classifyOpenAIError maps SDK errors onto the cascade failure taxonomy
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return &QuotaError{Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &TransientError{Err: err}
		default:
			return fmt.Errorf("OpenAI API error: %w", err)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 429 {
			return &QuotaError{Err: err}
		}
		return &TransientError{Err: err}
	}

	// Timeouts, connection failures and cancellations surface here
	return &TransientError{Err: err}
}
