package simulator

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/pavelanni/promptlab/internal/model"
)

const goodPrompt = "Act as my patient biology tutor. I'm a high school student studying cellular respiration. Can you explain this step by step with examples?"

func noSleep(context.Context, time.Duration) error { return nil }

func TestGenerateDeterministicForSeed(t *testing.T) {
	for _, prompt := range []string{goodPrompt, "explain", ""} {
		a := NewSeeded(42, 0, 0)
		b := NewSeeded(42, 0, 0)
		for range 5 {
			ra, err := a.Generate(context.Background(), prompt, "")
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			rb, _ := b.Generate(context.Background(), prompt, "")
			if ra.Text != rb.Text {
				t.Errorf("same seed gave %q and %q", ra.Text, rb.Text)
			}
		}
	}
}

func TestGenerateGoodPrompt(t *testing.T) {
	g := NewSeeded(1, 0, 0)
	resp, err := g.Generate(context.Background(), goodPrompt, "Science")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if resp.Subject != "science" {
		t.Errorf("Subject = %q, want science", resp.Subject)
	}
	if !resp.Analysis.Tier.IsPositive() {
		t.Fatalf("Tier = %q, want a positive tier", resp.Analysis.Tier)
	}
	if !strings.HasSuffix(resp.Text, "\n\n"+educationalContent["science"]) {
		t.Errorf("Text %q should end with the science tip", resp.Text)
	}
	if strings.Contains(resp.Text, "[topic]") || strings.Contains(resp.Text, "[concept]") {
		t.Errorf("Text %q still has placeholders", resp.Text)
	}
	head, _, _ := strings.Cut(resp.Text, "\n\n")
	found := false
	for _, tmpl := range responseTemplates["science"].good {
		tmpl = strings.ReplaceAll(tmpl, "[topic]", "scientific principles")
		tmpl = strings.ReplaceAll(tmpl, "[concept]", fallbackConcept)
		if head == tmpl {
			found = true
		}
	}
	if !found {
		t.Errorf("response %q is not from the science good pool", head)
	}
}

func TestGeneratePoorPrompt(t *testing.T) {
	g := NewSeeded(7, 0, 0)
	resp, err := g.Generate(context.Background(), "solve x", "")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if resp.Subject != "math" {
		t.Errorf("Subject = %q, want math", resp.Subject)
	}
	if resp.Analysis.Tier != model.TierNeedsImprovement {
		t.Fatalf("Tier = %q", resp.Analysis.Tier)
	}
	head, guidance, ok := strings.Cut(resp.Text, "\n\n")
	if !ok {
		t.Fatalf("Text %q has no guidance block", resp.Text)
	}
	if !slices.Contains(responseTemplates["math"].poor, head) {
		t.Errorf("response %q is not from the math poor pool", head)
	}
	lines := strings.Split(guidance, "\n")
	if lines[0] != guidanceHeader {
		t.Errorf("guidance header = %q", lines[0])
	}
	if len(lines) != 1+maxGuidance {
		t.Fatalf("guidance has %d bullet lines, want %d", len(lines)-1, maxGuidance)
	}
	for i, l := range lines[1:] {
		if want := "• " + resp.Analysis.Suggestions[i]; l != want {
			t.Errorf("bullet %d = %q, want %q", i, l, want)
		}
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	resp, err := NewSeeded(3, 0, 0).Generate(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if resp.Text == "" || resp.Subject != "general" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestGenerateUnknownHintFallsBack(t *testing.T) {
	resp, err := NewSeeded(3, 0, 0).Generate(context.Background(), goodPrompt, "Art")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if resp.Subject != "art" {
		t.Errorf("Subject = %q, want the lower-cased hint", resp.Subject)
	}
	if !strings.HasSuffix(resp.Text, educationalContent["general"]) {
		t.Errorf("Text %q should end with the general tip", resp.Text)
	}
}

func TestGenerateDelay(t *testing.T) {
	var slept []time.Duration
	g := New(Options{
		Rand:     rand.New(rand.NewPCG(9, 9)),
		MinDelay: time.Second,
		MaxDelay: 3 * time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	})
	for range 20 {
		resp, err := g.Generate(context.Background(), "explain", "")
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if resp.Delay < time.Second || resp.Delay > 3*time.Second {
			t.Errorf("Delay = %v, want within [1s, 3s]", resp.Delay)
		}
	}
	if len(slept) != 20 {
		t.Errorf("sleep called %d times, want 20", len(slept))
	}
}

func TestGenerateNoDelay(t *testing.T) {
	called := false
	g := New(Options{Sleep: func(context.Context, time.Duration) error {
		called = true
		return nil
	}})
	if _, err := g.Generate(context.Background(), "explain", ""); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if called {
		t.Error("sleep should not be called when delay is disabled")
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := New(Options{MinDelay: time.Hour, MaxDelay: time.Hour})
	_, err := g.Generate(ctx, "explain", "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}

func TestGenerateConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := New(Options{Sleep: noSleep})
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if _, err := g.Generate(context.Background(), goodPrompt, ""); err != nil {
					t.Errorf("Generate() error: %v", err)
				}
			}
		}()
	}
	wg.Wait()
}

func TestDetectSubject(t *testing.T) {
	tests := []struct {
		prompt, hint, want string
	}{
		{"How do I solve this equation?", "", "math"},
		{"Explain the physics of a pendulum", "", "science"},
		{"Help me write an essay", "", "english"},
		{"What caused the war of 1812?", "", "history"},
		{"Tell me something", "", "general"},
		{"analyze this chemistry experiment", "", "science"},
		{"analyze the poem", "", "english"},
		{"solve the physics problem", "", "math"},
		{"anything", "History", "history"},
	}
	for _, tt := range tests {
		if got := DetectSubject(tt.prompt, tt.hint); got != tt.want {
			t.Errorf("DetectSubject(%q, %q) = %q, want %q", tt.prompt, tt.hint, got, tt.want)
		}
	}
}

func TestPlaceholderPhrases(t *testing.T) {
	if got := topicPhrase("math"); got != "mathematical concepts" {
		t.Errorf("topicPhrase(math) = %q", got)
	}
	if got := topicPhrase("art"); got != fallbackTopic {
		t.Errorf("topicPhrase(art) = %q, want %q", got, fallbackTopic)
	}
	if got := extractConcept("How does GRAVITY and evolution work"); got != "evolution" {
		t.Errorf("extractConcept() = %q, want evolution (first in table order)", got)
	}
	if got := extractConcept("nothing known"); got != fallbackConcept {
		t.Errorf("extractConcept() = %q", got)
	}
}
