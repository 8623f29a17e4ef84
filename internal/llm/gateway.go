// Package llm forwards practice prompts to hosted and local language models.
//
// The Gateway never fails toward its caller: every outcome, including missing
// credentials and transport errors, is turned into a display string.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// ErrMissingCredential reports a provider call attempted without an API key.
var ErrMissingCredential = errors.New("API key not provided")

// Call is one generation request handed to a Provider.
type Call struct {
	Prompt     string
	Model      string
	Credential string
}

// Provider is one model backend.
type Provider interface {
	// ID is the stable key used in forms and config.
	ID() string
	// Name is the display name used in messages.
	Name() string
	DefaultModel() string
	RequiresCredential() bool
	Generate(ctx context.Context, c Call) (string, error)
}

// StatusError is a non-success HTTP reply from a provider.
type StatusError struct {
	Code int
	Body string
	// Message replaces the code and body in the display string when set.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Request is what the practice console asks the Gateway to run.
type Request struct {
	Provider   string
	Prompt     string
	Model      string
	Credential string
}

// Gateway dispatches requests to registered providers.
type Gateway struct {
	providers   map[string]Provider
	credentials map[string]string
}

// NewGateway creates a Gateway with the given providers.
func NewGateway(providers ...Provider) *Gateway {
	g := &Gateway{
		providers:   make(map[string]Provider, len(providers)),
		credentials: make(map[string]string),
	}
	for _, p := range providers {
		g.Register(p)
	}
	return g
}

// Register adds or replaces a provider.
func (g *Gateway) Register(p Provider) {
	g.providers[p.ID()] = p
}

// SetCredential stores a default credential for a provider, used when a
// request carries none.
func (g *Gateway) SetCredential(providerID, credential string) {
	if credential == "" {
		delete(g.credentials, providerID)
		return
	}
	g.credentials[providerID] = credential
}

// HasCredential reports whether a default credential is configured.
func (g *Gateway) HasCredential(providerID string) bool {
	return g.credentials[providerID] != ""
}

// Provider looks up a registered provider.
func (g *Gateway) Provider(id string) (Provider, bool) {
	p, ok := g.providers[id]
	return p, ok
}

// Providers lists registered providers sorted by ID.
func (g *Gateway) Providers() []Provider {
	out := make([]Provider, 0, len(g.providers))
	for _, p := range g.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Send runs a request and returns the reply text or a display string that
// starts with "Error".
func (g *Gateway) Send(ctx context.Context, req Request) string {
	p, ok := g.providers[req.Provider]
	if !ok {
		return "Error: Unknown provider"
	}

	cred := strings.TrimSpace(req.Credential)
	if cred == "" {
		cred = g.credentials[p.ID()]
	}
	if p.RequiresCredential() && cred == "" {
		return FormatError(p.Name(), fmt.Errorf("%s %w", p.Name(), ErrMissingCredential))
	}

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	text, err := p.Generate(ctx, Call{
		Prompt:     req.Prompt,
		Model:      model,
		Credential: cred,
	})
	if err != nil {
		slog.Warn("provider call failed", "provider", p.ID(), "model", model, "error", err)
		return FormatError(p.Name(), err)
	}
	return text
}

// FormatError renders a provider failure for display.
func FormatError(providerName string, err error) string {
	if errors.Is(err, ErrMissingCredential) {
		return fmt.Sprintf("Error: %s %s", providerName, ErrMissingCredential)
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return "Error: " + se.Message
		}
		return fmt.Sprintf("Error: %d - %s", se.Code, se.Body)
	}
	return fmt.Sprintf("Error calling %s API: %v", providerName, err)
}

// IsError reports whether a Send result is an error display string.
func IsError(reply string) bool {
	return strings.HasPrefix(reply, "Error")
}
