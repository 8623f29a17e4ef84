package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	cloudTimeout = 30 * time.Second
	maxTokens    = 1000
	temperature  = 0.7
)

const (
	// GroqBaseURL is Groq's OpenAI-compatible endpoint.
	GroqBaseURL = "https://api.groq.com/openai/v1"
)

// OpenAIClient talks to any OpenAI-compatible chat completions API.
type OpenAIClient struct {
	id           string
	name         string
	baseURL      string
	defaultModel string
	httpClient   *http.Client
}

// NewOpenAI creates the OpenAI provider. An empty baseURL uses the public API.
func NewOpenAI(baseURL string) *OpenAIClient {
	return &OpenAIClient{
		id:           "openai",
		name:         "OpenAI",
		baseURL:      baseURL,
		defaultModel: openai.GPT3Dot5Turbo,
		httpClient:   &http.Client{Timeout: cloudTimeout},
	}
}

// NewGroq creates the Groq provider. An empty baseURL uses GroqBaseURL.
func NewGroq(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	return &OpenAIClient{
		id:           "groq",
		name:         "Groq",
		baseURL:      baseURL,
		defaultModel: "llama3-8b-8192",
		httpClient:   &http.Client{Timeout: cloudTimeout},
	}
}

func (c *OpenAIClient) ID() string               { return c.id }
func (c *OpenAIClient) Name() string             { return c.name }
func (c *OpenAIClient) DefaultModel() string     { return c.defaultModel }
func (c *OpenAIClient) RequiresCredential() bool { return true }

// Generate sends the prompt as a single user message.
func (c *OpenAIClient) Generate(ctx context.Context, call Call) (string, error) {
	config := openai.DefaultConfig(call.Credential)
	if c.baseURL != "" {
		config.BaseURL = c.baseURL
	}
	config.HTTPClient = c.httpClient

	api := openai.NewClientWithConfig(config)
	resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: call.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: call.Prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.name)
	}
	return resp.Choices[0].Message.Content, nil
}

// openAIError maps client library errors with an HTTP status to *StatusError.
func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &StatusError{Code: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		body := string(reqErr.Body)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &StatusError{Code: reqErr.HTTPStatusCode, Body: body}
	}
	return err
}
