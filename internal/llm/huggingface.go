package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// HuggingFaceBaseURL is the serverless Inference API models root.
const HuggingFaceBaseURL = "https://api-inference.huggingface.co/models"

// DefaultHFModel is used when a request names no model.
const DefaultHFModel = "google/flan-t5-large"

const (
	msgModelLoading = "Model is loading. Please try again in a few minutes."
	msgRateLimited  = "Rate limit exceeded. Please wait a moment before trying again."
	qaContext       = "This is an educational context where a student is asking for help with learning."
)

// HFModel describes one selectable Inference API model.
type HFModel struct {
	ID          string
	Description string
}

// HFModelGroup is a titled list of models for the console's model picker.
type HFModelGroup struct {
	Category string
	Models   []HFModel
}

// HFModels lists the free models offered in the console.
var HFModels = []HFModelGroup{
	{"general", []HFModel{
		{"microsoft/DialoGPT-medium", "Conversational AI - Good for general questions"},
		{"google/flan-t5-large", "Text-to-Text - Excellent for educational content"},
		{"microsoft/DialoGPT-large", "Conversational AI - More sophisticated responses"},
	}},
	{"text_generation", []HFModel{
		{"gpt2", "GPT-2 - Classic text generation model"},
		{"distilgpt2", "DistilGPT-2 - Faster, lighter version of GPT-2"},
	}},
	{"question_answering", []HFModel{
		{"deepset/roberta-base-squad2", "Question Answering - Good for factual queries"},
		{"distilbert-base-cased-distilled-squad", "Question Answering - Fast responses"},
	}},
	{"text2text", []HFModel{
		{"google/flan-t5-base", "Text-to-Text - Good for instructions and explanations"},
		{"t5-base", "T5 - Versatile text-to-text model"},
	}},
}

// HuggingFaceClient calls the Inference API with retries for model loading.
type HuggingFaceClient struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewHuggingFace creates the Hugging Face provider. An empty baseURL uses
// HuggingFaceBaseURL.
func NewHuggingFace(baseURL string) *HuggingFaceClient {
	if baseURL == "" {
		baseURL = HuggingFaceBaseURL
	}
	return &HuggingFaceClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: cloudTimeout},
		maxAttempts: defaultMaxAttempts,
		sleep:       sleepContext,
	}
}

func (c *HuggingFaceClient) ID() string           { return "huggingface" }
func (c *HuggingFaceClient) Name() string         { return "Hugging Face" }
func (c *HuggingFaceClient) DefaultModel() string { return DefaultHFModel }

// RequiresCredential is false: the free tier accepts anonymous calls.
func (c *HuggingFaceClient) RequiresCredential() bool { return false }

// Generate queries the model, retrying while it loads.
func (c *HuggingFaceClient) Generate(ctx context.Context, call Call) (string, error) {
	model := call.Model
	if model == "" {
		model = DefaultHFModel
	}
	url := c.baseURL + "/" + model

	var headers map[string]string
	if call.Credential != "" {
		headers = map[string]string{"Authorization": "Bearer " + call.Credential}
	}
	payload := hfPayload(call.Prompt, model)

	state := NewRetryState(c.maxAttempts)
	for {
		raw, err := postJSON(ctx, c.httpClient, url, headers, payload)
		if err == nil {
			return extractHFResponse(raw), nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		outcome := classifyHF(err)
		delay, retry := state.Record(outcome)
		if !retry {
			return "", terminalHFError(outcome, err)
		}
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

func classifyHF(err error) Outcome {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusServiceUnavailable:
			return OutcomeLoading
		case http.StatusTooManyRequests:
			return OutcomeRateLimited
		}
		return OutcomeFailure
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return OutcomeTimeout
	}
	return OutcomeFailure
}

func terminalHFError(o Outcome, err error) error {
	switch o {
	case OutcomeLoading:
		return &StatusError{Code: http.StatusServiceUnavailable, Message: msgModelLoading}
	case OutcomeRateLimited:
		return &StatusError{Code: http.StatusTooManyRequests, Message: msgRateLimited}
	case OutcomeTimeout:
		return fmt.Errorf("request timed out, the model might be busy: %w", err)
	}
	return err
}

// hfPayload shapes the request body for the model family.
func hfPayload(prompt, model string) map[string]any {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "t5") || strings.Contains(m, "flan"):
		return map[string]any{
			"inputs": prompt,
			"parameters": map[string]any{
				"max_length": 512, "temperature": 0.7, "do_sample": true, "top_p": 0.9,
			},
		}
	case strings.Contains(m, "dialogpt"):
		return map[string]any{
			"inputs": map[string]any{
				"past_user_inputs":    []string{},
				"generated_responses": []string{},
				"text":                prompt,
			},
			"parameters": map[string]any{
				"max_length": 300, "temperature": 0.7, "repetition_penalty": 1.2,
			},
		}
	case strings.Contains(m, "squad") || strings.Contains(m, "roberta") || strings.Contains(m, "distilbert"):
		return map[string]any{
			"inputs": map[string]any{"question": prompt, "context": qaContext},
		}
	}
	return map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"max_length": 400, "temperature": 0.7, "top_p": 0.9, "repetition_penalty": 1.1,
		},
	}
}

// extractHFResponse pulls the reply text out of the shapes the API returns,
// falling back to the raw body.
func extractHFResponse(raw []byte) string {
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		for _, key := range []string{"generated_text", "answer"} {
			if s, ok := list[0][key].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		if s, ok := obj["generated_text"].(string); ok {
			return strings.TrimSpace(s)
		}
		if conv, ok := obj["conversation"].(map[string]any); ok {
			replies, _ := conv["generated_responses"].([]any)
			if len(replies) == 0 {
				return "No response generated"
			}
			if s, ok := replies[len(replies)-1].(string); ok {
				return s
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

// Recommend picks a model for a prompt from its wording.
func Recommend(prompt string) string {
	p := strings.ToLower(prompt)
	for _, w := range []string{"what", "why", "how", "when", "where", "who"} {
		if strings.Contains(p, w) {
			return DefaultHFModel
		}
	}
	for _, w := range []string{"explain", "tell me", "help me understand", "discuss"} {
		if strings.Contains(p, w) {
			return "microsoft/DialoGPT-medium"
		}
	}
	return DefaultHFModel
}

// EnhancePrompt frames a student prompt for general-purpose models.
func EnhancePrompt(prompt, subject string) string {
	var b strings.Builder
	b.WriteString("You are a helpful educational assistant. ")
	if subject != "" {
		fmt.Fprintf(&b, "The student is asking about %s. ", subject)
	}
	b.WriteString("Please provide a clear, educational response that helps the student learn. ")
	b.WriteString("Student question: ")
	b.WriteString(prompt)
	return b.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
