// Package assist calls the configured AI provider to generate or refine map
// content. Requests are plain HTTPS to the provider's public API; the key is
// sent nowhere else.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	openAIEndpoint    = "https://api.openai.com/v1/chat/completions"
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"

	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-sonnet-4-20250514"

	maxTokens = 1024
)

// Client talks to one provider. Endpoint overrides the provider default,
// which tests use to point at a local server.
type Client struct {
	Provider string
	APIKey   string
	Model    string
	Endpoint string

	HTTPClient *http.Client
	Logger     *zap.Logger
}

func New(provider, apiKey string, logger *zap.Logger) (*Client, error) {
	switch provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("assist: unknown provider %q", provider)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("assist: no API key configured for %s", provider)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		Provider:   provider,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one prompt and returns the assistant's text. Failures come
// back as errors prefixed with "assist:"; the caller's state is untouched.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var (
		endpoint string
		body     any
	)
	switch c.Provider {
	case ProviderOpenAI:
		endpoint = openAIEndpoint
		model := c.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		body = openAIRequest{Model: model, Messages: []chatMessage{{Role: "user", Content: prompt}}}
	case ProviderAnthropic:
		endpoint = anthropicEndpoint
		model := c.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		body = anthropicRequest{Model: model, MaxTokens: maxTokens, Messages: []chatMessage{{Role: "user", Content: prompt}}}
	default:
		return "", fmt.Errorf("assist: unknown provider %q", c.Provider)
	}
	if c.Endpoint != "" {
		endpoint = c.Endpoint
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("assist: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("assist: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	switch c.Provider {
	case ProviderOpenAI:
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	case ProviderAnthropic:
		req.Header.Set("x-api-key", c.APIKey)
		req.Header.Set("anthropic-version", anthropicVersion)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assist: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("assist: read response: %w", err)
	}
	c.Logger.Debug("assist request",
		zap.String("provider", c.Provider),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("assist: %s returned %d: %s", c.Provider, resp.StatusCode, apiErrorMessage(c.Provider, raw))
	}
	return extractText(c.Provider, raw)
}

func extractText(provider string, raw []byte) (string, error) {
	switch provider {
	case ProviderOpenAI:
		var out openAIResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", fmt.Errorf("assist: decode response: %w", err)
		}
		if len(out.Choices) == 0 {
			return "", fmt.Errorf("assist: openai returned no choices")
		}
		return out.Choices[0].Message.Content, nil
	case ProviderAnthropic:
		var out anthropicResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", fmt.Errorf("assist: decode response: %w", err)
		}
		if len(out.Content) == 0 {
			return "", fmt.Errorf("assist: anthropic returned no content")
		}
		return out.Content[0].Text, nil
	}
	return "", fmt.Errorf("assist: unknown provider %q", provider)
}

func apiErrorMessage(provider string, raw []byte) string {
	switch provider {
	case ProviderOpenAI:
		var out openAIResponse
		if json.Unmarshal(raw, &out) == nil && out.Error != nil {
			return out.Error.Message
		}
	case ProviderAnthropic:
		var out anthropicResponse
		if json.Unmarshal(raw, &out) == nil && out.Error != nil {
			return out.Error.Message
		}
	}
	return "unexpected response"
}
