package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AnthropicGateway implements the Gateway interface for Anthropic Claude models
type AnthropicGateway struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Anthropic API structures
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicGateway creates a new Anthropic gateway
func NewAnthropicGateway(config Config) (*AnthropicGateway, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &AnthropicGateway{
		apiKey:  config.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (g *AnthropicGateway) Name() string {
	return "anthropic"
}

// IsAvailable checks if the provider is properly configured
func (g *AnthropicGateway) IsAvailable(ctx context.Context) bool {
	req := anthropicRequest{
		Model:     g.defaultModel(),
		MaxTokens: 10,
		Messages: []anthropicMessage{
			{Role: "user", Content: "Hi"},
		},
	}
	_, err := g.makeRequest(ctx, req)
	return err == nil
}

// Invoke runs one task via the Messages API
func (g *AnthropicGateway) Invoke(ctx context.Context, task Task) (json.RawMessage, error) {
	model := task.Model
	if model == "" {
		model = g.config.Model
	}
	if model == "" {
		model = g.defaultModel()
	}

	apiReq := anthropicRequest{
		Model:       model,
		MaxTokens:   task.MaxTokens,
		System:      task.System,
		Temperature: task.Temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: task.Prompt},
		},
	}

	resp, err := g.makeRequest(ctx, apiReq)
	if err != nil {
		return nil, err
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("no content in response: %w", ErrMalformedResponse)
	}

	return ExtractJSON(resp.Content[0].Text)
}

func (g *AnthropicGateway) defaultModel() string {
	return "claude-sonnet-4-20250514"
}

// makeRequest makes an HTTP request to the Anthropic API
func (g *AnthropicGateway) makeRequest(ctx context.Context, apiReq anthropicRequest) (*anthropicResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", g.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("anthropic: %w", ErrTimeout)
		}
		return nil, fmt.Errorf("anthropic: %v: %w", err, ErrUnavailable)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		kind := ErrUnavailable
		if httpResp.StatusCode == http.StatusTooManyRequests {
			kind = ErrRateLimited
		}
		var apiErr anthropicError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("anthropic (%d): %s: %w", httpResp.StatusCode, apiErr.Error.Message, kind)
		}
		return nil, fmt.Errorf("anthropic (%d): %w", httpResp.StatusCode, kind)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %v: %w", err, ErrMalformedResponse)
	}

	return &resp, nil
}
