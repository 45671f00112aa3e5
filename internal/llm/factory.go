package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "stub":
		return NewStubProvider(), nil

	case "":
		return nil, fmt.Errorf("LLM provider is required (supported: openai, ollama, stub)")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama, stub)", config.Provider)
	}
}
