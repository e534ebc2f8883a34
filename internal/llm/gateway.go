// Package llm is the reasoning-service gateway: the contract the analysis
// core consumes, plus providers for OpenAI, Anthropic, and Ollama. Providers
// return raw structured payloads; shape validation happens in the validate
// package so a misbehaving provider degrades a single call, not the analysis.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// TaskKind identifies the generation pass a task belongs to
type TaskKind string

const (
	TaskDecompose       TaskKind = "decompose"
	TaskAttack          TaskKind = "attack"
	TaskDefend          TaskKind = "defend"
	TaskDetectFallacies TaskKind = "detect_fallacies"
)

// Task is one reasoning request. Prompt construction and tuning defaults live
// in this package (see prompts.go); the analysis core only hands over tasks.
type Task struct {
	Kind        TaskKind
	Prompt      string
	System      string
	Model       string  // Empty = provider default
	Temperature float64
	MaxTokens   int
}

// Gateway is the consumed interface to the external reasoning service
type Gateway interface {
	// Name returns the provider name
	Name() string

	// Invoke runs one task and returns the raw JSON payload. The payload has
	// had markdown fences stripped but is otherwise unvalidated.
	Invoke(ctx context.Context, task Task) (json.RawMessage, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Gateway error kinds. Callers branch with errors.Is: rate limits are
// retried, everything else degrades the single call that failed.
var (
	ErrRateLimited       = errors.New("gateway rate limited")
	ErrTimeout           = errors.New("gateway timeout")
	ErrUnavailable       = errors.New("gateway unavailable")
	ErrMalformedResponse = errors.New("gateway response malformed")
)

// Config holds gateway provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific, empty = provider default)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout per gateway call, seconds
	Timeout int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Timeout:  60,
	}
}
