// Package simulator fakes an LLM reply whose helpfulness tracks the quality
// score of the prompt, for offline practice.
package simulator

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/pavelanni/promptlab/internal/model"
	"github.com/pavelanni/promptlab/internal/quality"
)

// Options configures a Generator. The zero value gives a time-seeded random
// source and no artificial delay.
type Options struct {
	// Rand is the source for delay and template draws.
	Rand *rand.Rand
	// MinDelay and MaxDelay bound the simulated latency. Both zero disables it.
	MinDelay time.Duration
	MaxDelay time.Duration
	// Sleep waits for the simulated latency. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Generator produces mock responses. It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	minDelay time.Duration
	maxDelay time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// Response is one simulated reply with the analysis that shaped it.
type Response struct {
	Text     string
	Subject  string
	Analysis model.QualityAnalysis
	Delay    time.Duration
}

// New creates a Generator.
func New(opts Options) *Generator {
	g := &Generator{
		rng:      opts.Rand,
		minDelay: opts.MinDelay,
		maxDelay: opts.MaxDelay,
		sleep:    opts.Sleep,
	}
	if g.rng == nil {
		seed := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if g.maxDelay < g.minDelay {
		g.maxDelay = g.minDelay
	}
	if g.sleep == nil {
		g.sleep = sleepContext
	}
	return g
}

// NewSeeded creates a Generator with a deterministic random source.
func NewSeeded(seed uint64, minDelay, maxDelay time.Duration) *Generator {
	return New(Options{
		Rand:     rand.New(rand.NewPCG(seed, seed)),
		MinDelay: minDelay,
		MaxDelay: maxDelay,
	})
}

// Generate simulates a reply to prompt. A non-empty hint overrides subject
// detection. The only error is ctx being done during the simulated delay.
func (g *Generator) Generate(ctx context.Context, prompt, hint string) (Response, error) {
	delay := g.drawDelay()
	if delay > 0 {
		if err := g.sleep(ctx, delay); err != nil {
			return Response{}, err
		}
	}

	analysis := quality.Analyze(prompt)
	subject := DetectSubject(prompt, hint)

	p, ok := responseTemplates[subject]
	if !ok {
		p = responseTemplates[subjectGeneral]
	}
	pool := p.poor
	if analysis.Tier.IsPositive() {
		pool = p.good
	}
	text := g.pick(pool)

	text = strings.ReplaceAll(text, "[topic]", topicPhrase(subject))
	text = strings.ReplaceAll(text, "[concept]", extractConcept(prompt))

	if analysis.Tier.IsPositive() {
		text += "\n\n" + educationalTip(subject)
	} else {
		text += "\n\n" + improvementGuidance(analysis.Suggestions)
	}

	return Response{Text: text, Subject: subject, Analysis: analysis, Delay: delay}, nil
}

func (g *Generator) drawDelay() time.Duration {
	if g.maxDelay <= 0 {
		return 0
	}
	span := int64(g.maxDelay - g.minDelay)
	if span <= 0 {
		return g.minDelay
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.minDelay + time.Duration(g.rng.Int64N(span+1))
}

func (g *Generator) pick(pool []string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return pool[g.rng.IntN(len(pool))]
}

// DetectSubject returns the lower-cased hint when given, otherwise the first
// subject whose keywords occur in the prompt, otherwise "general".
func DetectSubject(prompt, hint string) string {
	if hint != "" {
		return strings.ToLower(hint)
	}
	p := strings.ToLower(prompt)
	for _, s := range subjectKeywords {
		for _, k := range s.keywords {
			if strings.Contains(p, k) {
				return s.subject
			}
		}
	}
	return subjectGeneral
}

func topicPhrase(subject string) string {
	if t, ok := topicPhrases[subject]; ok {
		return t
	}
	return fallbackTopic
}

func extractConcept(prompt string) string {
	p := strings.ToLower(prompt)
	for _, c := range knownConcepts {
		if strings.Contains(p, c) {
			return c
		}
	}
	return fallbackConcept
}

func educationalTip(subject string) string {
	if tip, ok := educationalContent[subject]; ok {
		return tip
	}
	return educationalContent[subjectGeneral]
}

func improvementGuidance(suggestions []string) string {
	var b strings.Builder
	b.WriteString(guidanceHeader)
	for i, s := range suggestions {
		if i == maxGuidance {
			break
		}
		b.WriteString("\n• ")
		b.WriteString(s)
	}
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
