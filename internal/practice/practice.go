// Package practice runs one prompt through the test console in a chosen mode.
package practice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pavelanni/promptlab/internal/llm"
	"github.com/pavelanni/promptlab/internal/model"
	"github.com/pavelanni/promptlab/internal/quality"
	"github.com/pavelanni/promptlab/internal/simulator"
)

// ErrEmptyPrompt is returned when there is nothing to test.
var ErrEmptyPrompt = errors.New("prompt is empty")

// ErrUnknownMode is returned for a mode the console does not offer.
var ErrUnknownMode = errors.New("unknown test mode")

// SimulatorProvider is the provider label stored for offline modes.
const SimulatorProvider = "Educational Simulator"

var modeLabels = map[model.Mode]string{
	model.ModeSimulate: "Full Educational Simulation",
	model.ModeAnalyze:  "Prompt Quality Analysis Only",
	model.ModeQuick:    "Quick Prompt Check",
	model.ModeLLM:      "Live LLM",
}

// Modes lists the console modes in display order.
var Modes = []model.Mode{model.ModeSimulate, model.ModeAnalyze, model.ModeQuick, model.ModeLLM}

// ModeLabel returns the display label of a mode.
func ModeLabel(m model.Mode) string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return string(m)
}

// Request is one console submission.
type Request struct {
	Prompt string
	Mode   model.Mode
	// SubjectHint overrides subject detection in simulate mode.
	SubjectHint string

	// Live LLM fields.
	Provider   string
	Model      string
	Credential string
}

// Sender is the part of the gateway the runner needs.
type Sender interface {
	Send(ctx context.Context, req llm.Request) string
}

// Runner executes console requests.
type Runner struct {
	sim     *simulator.Generator
	gateway Sender
	now     func() time.Time
}

// NewRunner creates a Runner. gateway may be nil when live calls are disabled.
func NewRunner(sim *simulator.Generator, gateway Sender) *Runner {
	return &Runner{sim: sim, gateway: gateway, now: time.Now}
}

// Run executes req and returns the result to store. Every mode attaches an
// analysis of the prompt.
func (r *Runner) Run(ctx context.Context, req Request) (model.TestResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return model.TestResult{}, ErrEmptyPrompt
	}

	start := r.now()
	res := model.TestResult{
		Prompt:   req.Prompt,
		Provider: SimulatorProvider,
		Model:    ModeLabel(req.Mode),
	}

	switch req.Mode {
	case model.ModeSimulate:
		resp, err := r.sim.Generate(ctx, req.Prompt, req.SubjectHint)
		if err != nil {
			return model.TestResult{}, fmt.Errorf("simulate response: %w", err)
		}
		res.Response = &resp.Text
		res.Analysis = &resp.Analysis

	case model.ModeAnalyze:
		a := quality.Analyze(req.Prompt)
		res.Analysis = &a

	case model.ModeQuick:
		a := quality.Analyze(req.Prompt)
		text := quality.QuickAssessment(a)
		res.Response = &text
		res.Analysis = &a

	case model.ModeLLM:
		if r.gateway == nil {
			return model.TestResult{}, errors.New("live LLM calls are not configured")
		}
		text := r.gateway.Send(ctx, llm.Request{
			Provider:   req.Provider,
			Prompt:     req.Prompt,
			Model:      req.Model,
			Credential: req.Credential,
		})
		a := quality.Analyze(req.Prompt)
		res.Response = &text
		res.Analysis = &a
		res.Provider = req.Provider
		res.Model = req.Model

	default:
		return model.TestResult{}, fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}

	end := r.now()
	res.Timestamp = end.Format(model.TimestampLayout)
	res.ResponseTime = math.Round(end.Sub(start).Seconds()*100) / 100
	return res, nil
}
