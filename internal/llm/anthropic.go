package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// AnthropicBaseURL is the public Messages API host.
	AnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAnthropic creates the Anthropic provider. An empty baseURL uses the
// public API.
func NewAnthropic(baseURL string) *AnthropicClient {
	if baseURL == "" {
		baseURL = AnthropicBaseURL
	}
	return &AnthropicClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: cloudTimeout},
	}
}

func (c *AnthropicClient) ID() string               { return "anthropic" }
func (c *AnthropicClient) Name() string             { return "Anthropic" }
func (c *AnthropicClient) DefaultModel() string     { return "claude-3-haiku-20240307" }
func (c *AnthropicClient) RequiresCredential() bool { return true }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate posts the prompt to /v1/messages and returns the first content block.
func (c *AnthropicClient) Generate(ctx context.Context, call Call) (string, error) {
	raw, err := postJSON(ctx, c.httpClient, c.baseURL+"/v1/messages", map[string]string{
		"x-api-key":         call.Credential,
		"anthropic-version": anthropicVersion,
	}, anthropicRequest{
		Model:     call.Model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: call.Prompt}},
	})
	if err != nil {
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", errors.New("response has no content")
	}
	return resp.Content[0].Text, nil
}
