package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHF returns a client pointed at url that records requested sleeps
// instead of waiting.
func newTestHF(url string, slept *[]time.Duration) *HuggingFaceClient {
	c := NewHuggingFace(url)
	c.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return c
}

// statusSequence serves the given status codes in order, then 200 with body.
func statusSequence(t *testing.T, calls *atomic.Int32, body string, codes ...int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		if n <= len(codes) {
			w.WriteHeader(codes[n-1])
			_, _ = io.WriteString(w, `{"error":"busy"}`)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
}

func TestHFSuccessAfterLoading(t *testing.T) {
	var calls atomic.Int32
	srv := statusSequence(t, &calls, `[{"generated_text":"  Mitochondria make ATP. "}]`, 503, 503)
	defer srv.Close()

	var slept []time.Duration
	c := newTestHF(srv.URL, &slept)

	got, err := c.Generate(context.Background(), Call{Prompt: "what is atp", Model: "gpt2"})
	require.NoError(t, err)
	assert.Equal(t, "Mitochondria make ATP.", got)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{10 * time.Second, 15 * time.Second}, slept)
}

func TestHFLoadingExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := statusSequence(t, &calls, `[]`, 503, 503, 503)
	defer srv.Close()

	var slept []time.Duration
	g := NewGateway(newTestHF(srv.URL, &slept))
	got := g.Send(context.Background(), Request{Provider: "huggingface", Prompt: "hi"})

	assert.Equal(t, "Error: "+msgModelLoading, got)
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, slept, 2)
}

func TestHFRateLimitNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := statusSequence(t, &calls, `[]`, 429)
	defer srv.Close()

	var slept []time.Duration
	g := NewGateway(newTestHF(srv.URL, &slept))
	got := g.Send(context.Background(), Request{Provider: "huggingface", Prompt: "hi"})

	assert.Equal(t, "Error: "+msgRateLimited, got)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, slept)
}

func TestHFOtherStatusNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := statusSequence(t, &calls, `[]`, 500)
	defer srv.Close()

	var slept []time.Duration
	got := NewGateway(newTestHF(srv.URL, &slept)).Send(context.Background(), Request{Provider: "huggingface", Prompt: "hi"})

	assert.True(t, strings.HasPrefix(got, "Error: 500"), got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHFTimeoutRetriedOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	var slept []time.Duration
	c := newTestHF(srv.URL, &slept)
	c.httpClient.Timeout = 50 * time.Millisecond

	got := NewGateway(c).Send(context.Background(), Request{Provider: "huggingface", Prompt: "hi"})

	assert.True(t, strings.HasPrefix(got, "Error calling Hugging Face API: request timed out"), got)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []time.Duration{5 * time.Second}, slept)
}

func TestHFSendsTokenAndModelPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/google/flan-t5-large", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hi", body["inputs"])
		_, _ = io.WriteString(w, `[{"generated_text":"ok"}]`)
	}))
	defer srv.Close()

	g := NewGateway(NewHuggingFace(srv.URL))
	g.SetCredential("huggingface", "hf_test")
	assert.Equal(t, "ok", g.Send(context.Background(), Request{Provider: "huggingface", Prompt: "hi"}))
}

func TestHFPayloadShapes(t *testing.T) {
	t5 := hfPayload("q", "google/flan-t5-base")
	assert.Equal(t, "q", t5["inputs"])
	assert.Equal(t, 512, t5["parameters"].(map[string]any)["max_length"])

	dialog := hfPayload("q", "microsoft/DialoGPT-medium")
	assert.Equal(t, "q", dialog["inputs"].(map[string]any)["text"])

	qa := hfPayload("q", "deepset/roberta-base-squad2")
	assert.Equal(t, qaContext, qa["inputs"].(map[string]any)["context"])
	assert.Nil(t, qa["parameters"])

	gen := hfPayload("q", "gpt2")
	assert.Equal(t, 400, gen["parameters"].(map[string]any)["max_length"])
}

func TestExtractHFResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"generated list", `[{"generated_text":" hi "}]`, "hi"},
		{"answer list", `[{"answer":"Paris","score":0.9}]`, "Paris"},
		{"generated object", `{"generated_text":"obj"}`, "obj"},
		{"conversation", `{"conversation":{"generated_responses":["a","b"]}}`, "b"},
		{"empty conversation", `{"conversation":{"generated_responses":[]}}`, "No response generated"},
		{"unknown", `{"other":1}`, `{"other":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractHFResponse([]byte(tt.raw)))
		})
	}
}

func TestRecommendAndEnhance(t *testing.T) {
	assert.Equal(t, DefaultHFModel, Recommend("Why is the sky blue?"))
	assert.Equal(t, "microsoft/DialoGPT-medium", Recommend("Explain photosynthesis"))
	assert.Equal(t, DefaultHFModel, Recommend("photosynthesis"))

	got := EnhancePrompt("Explain photosynthesis", "biology")
	assert.Equal(t, "You are a helpful educational assistant. The student is asking about biology. "+
		"Please provide a clear, educational response that helps the student learn. "+
		"Student question: Explain photosynthesis", got)
	assert.NotContains(t, EnhancePrompt("x", ""), "asking about")
}
