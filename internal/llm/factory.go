package llm

import (
	"fmt"
	"strings"

	"polemia/internal/model"
)

// NewJudge creates a semantic judge based on configuration. An empty provider
// disables the semantic layer: the caller receives (nil, nil) and the cascade
// treats L2 as failed, falling through to the rule-based layer.
func NewJudge(config model.LLMConfig) (Judge, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIJudge(config)

	case "ollama":
		return NewOllamaJudge(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}
