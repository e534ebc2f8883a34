package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/argus/internal/model"
)

// NewGateway creates a reasoning gateway based on configuration
func NewGateway(config Config) (Gateway, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIGateway(config)

	case "anthropic", "claude":
		return NewAnthropicGateway(config)

	case "ollama":
		return NewOllamaGateway(config)

	default:
		return nil, fmt.Errorf("unknown gateway provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider: mc.Provider,
		Model:    mc.Model,
		APIKey:   mc.APIKey,
		BaseURL:  mc.BaseURL,
		Timeout:  mc.Timeout,
	}
}
