package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaURL is where a local Ollama server listens by default.
const DefaultOllamaURL = "http://localhost:11434"

const localTimeout = 60 * time.Second

// OllamaClient calls a local Ollama server's generate endpoint.
type OllamaClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewOllama creates the Ollama provider. An empty endpoint uses DefaultOllamaURL.
func NewOllama(endpoint string) *OllamaClient {
	if endpoint == "" {
		endpoint = DefaultOllamaURL
	}
	return &OllamaClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: localTimeout},
	}
}

func (c *OllamaClient) ID() string               { return "ollama" }
func (c *OllamaClient) Name() string             { return "Ollama" }
func (c *OllamaClient) DefaultModel() string     { return "llama2" }
func (c *OllamaClient) RequiresCredential() bool { return false }

// Endpoint returns the configured server URL.
func (c *OllamaClient) Endpoint() string { return c.endpoint }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Generate asks the server for a single non-streamed completion.
func (c *OllamaClient) Generate(ctx context.Context, call Call) (string, error) {
	raw, err := postJSON(ctx, c.httpClient, c.endpoint+"/api/generate", nil, ollamaRequest{
		Model:  call.Model,
		Prompt: call.Prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	var resp ollamaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return resp.Response, nil
}

// Ping checks that the server answers its model listing endpoint.
func (c *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
