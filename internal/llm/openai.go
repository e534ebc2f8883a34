package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGateway implements the Gateway interface for OpenAI models
type OpenAIGateway struct {
	client *openai.Client
	config Config
}

// NewOpenAIGateway creates a new OpenAI gateway
func NewOpenAIGateway(config Config) (*OpenAIGateway, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIGateway{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (g *OpenAIGateway) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (g *OpenAIGateway) IsAvailable(ctx context.Context) bool {
	_, err := g.client.ListModels(ctx)
	return err == nil
}

// Invoke runs one task via the Chat Completions API
func (g *OpenAIGateway) Invoke(ctx context.Context, task Task) (json.RawMessage, error) {
	model := task.Model
	if model == "" {
		model = g.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := time.Duration(g.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: task.System},
			{Role: openai.ChatMessageRoleUser, Content: task.Prompt},
		},
		MaxTokens:   task.MaxTokens,
		Temperature: float32(task.Temperature),
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response: %w", ErrMalformedResponse)
	}

	return ExtractJSON(resp.Choices[0].Message.Content)
}

// classifyOpenAIError maps client errors onto the gateway error kinds
func classifyOpenAIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai: %w", ErrTimeout)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return fmt.Errorf("openai: %v: %w", apiErr.Message, ErrRateLimited)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("openai: %v: %w", apiErr.Message, ErrUnavailable)
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.HTTPStatusCode == 429:
			return fmt.Errorf("openai: %w", ErrRateLimited)
		case reqErr.HTTPStatusCode >= 500:
			return fmt.Errorf("openai: %w", ErrUnavailable)
		}
	}
	return fmt.Errorf("openai: %v: %w", err, ErrUnavailable)
}
