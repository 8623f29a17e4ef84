package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockProvider struct {
	mock.Mock
	id       string
	needsKey bool
}

func (m *mockProvider) ID() string               { return m.id }
func (m *mockProvider) Name() string             { return "Mock" }
func (m *mockProvider) DefaultModel() string     { return "mock-1" }
func (m *mockProvider) RequiresCredential() bool { return m.needsKey }

func (m *mockProvider) Generate(ctx context.Context, c Call) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func TestSendUnknownProvider(t *testing.T) {
	g := NewGateway()
	assert.Equal(t, "Error: Unknown provider", g.Send(context.Background(), Request{Provider: "nope", Prompt: "hi"}))
}

func TestSendMissingCredential(t *testing.T) {
	p := &mockProvider{id: "mock", needsKey: true}
	g := NewGateway(p)

	got := g.Send(context.Background(), Request{Provider: "mock", Prompt: "hi"})

	assert.Equal(t, "Error: Mock API key not provided", got)
	p.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSendUsesDefaultCredentialAndModel(t *testing.T) {
	p := &mockProvider{id: "mock", needsKey: true}
	p.On("Generate", mock.Anything, Call{Prompt: "hi", Model: "mock-1", Credential: "configured"}).
		Return("hello", nil).Once()

	g := NewGateway(p)
	g.SetCredential("mock", "configured")

	assert.True(t, g.HasCredential("mock"))
	assert.Equal(t, "hello", g.Send(context.Background(), Request{Provider: "mock", Prompt: "hi"}))
	p.AssertExpectations(t)
}

func TestSendRequestCredentialWins(t *testing.T) {
	p := &mockProvider{id: "mock", needsKey: true}
	p.On("Generate", mock.Anything, mock.MatchedBy(func(c Call) bool {
		return c.Credential == "per-request" && c.Model == "big"
	})).Return("ok", nil).Once()

	g := NewGateway(p)
	g.SetCredential("mock", "configured")

	assert.Equal(t, "ok", g.Send(context.Background(), Request{
		Provider: "mock", Prompt: "hi", Model: "big", Credential: " per-request ",
	}))
	p.AssertExpectations(t)
}

func TestSendFormatsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"status", &StatusError{Code: 500, Body: "boom"}, "Error: 500 - boom"},
		{"status with message", &StatusError{Code: 429, Message: "slow down"}, "Error: slow down"},
		{"transport", errors.New("dial tcp: connection refused"), "Error calling Mock API: dial tcp: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{id: "mock"}
			p.On("Generate", mock.Anything, mock.Anything).Return("", tt.err).Once()

			got := NewGateway(p).Send(context.Background(), Request{Provider: "mock", Prompt: "hi"})
			assert.Equal(t, tt.want, got)
			assert.True(t, IsError(got))
		})
	}
}

func TestProvidersSorted(t *testing.T) {
	g := NewGateway(NewOllama(""), NewOpenAI(""), NewAnthropic(""), NewGroq(""))
	var ids []string
	for _, p := range g.Providers() {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []string{"anthropic", "groq", "ollama", "openai"}, ids)

	p, ok := g.Provider("groq")
	assert.True(t, ok)
	assert.Equal(t, "llama3-8b-8192", p.DefaultModel())
}
