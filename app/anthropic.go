package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Custom errors for Anthropic API failures.
var (
	ErrAnthropicUnauthorized    = errors.New("anthropic: unauthorized - invalid API key")
	ErrAnthropicServerError     = errors.New("anthropic: server error")
	ErrAnthropicNetworkError    = errors.New("anthropic: network error")
	ErrAnthropicInvalidResponse = errors.New("anthropic: invalid response")
)

// LLMClient sends a structured prompt to a completion service and returns
// the raw text of the reply.
type LLMClient interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// AnthropicClient is an HTTP client for the Anthropic Messages API.
type AnthropicClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// AnthropicOption configures an AnthropicClient.
type AnthropicOption func(*AnthropicClient)

// WithAnthropicBaseURL sets a custom base URL (for testing).
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(c *AnthropicClient) {
		c.baseURL = url
	}
}

// WithAnthropicTimeout sets a custom timeout (for testing).
func WithAnthropicTimeout(timeout time.Duration) AnthropicOption {
	return func(c *AnthropicClient) {
		c.httpClient.Timeout = timeout
	}
}

// NewAnthropicClient creates a new Anthropic Messages API client.
func NewAnthropicClient(apiKey, model string, opts ...AnthropicOption) *AnthropicClient {
	client := &AnthropicClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.anthropic.com/v1/messages",
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends one system+user exchange and returns the reply text.
func (c *AnthropicClient) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	payload, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("anthropic: creating request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrAnthropicNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrAnthropicInvalidResponse, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// Continue to parse response.
	case resp.StatusCode == http.StatusUnauthorized:
		return "", ErrAnthropicUnauthorized
	case resp.StatusCode >= 500:
		return "", ErrAnthropicServerError
	default:
		return "", fmt.Errorf("anthropic: unexpected status code %d: %s", resp.StatusCode, truncateBody(body))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnthropicInvalidResponse, err)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: empty completion", ErrAnthropicInvalidResponse)
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
