package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInvoker struct {
	mock.Mock
}

func (m *mockInvoker) InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*bedrockruntime.InvokeModelOutput)
	return out, args.Error(1)
}

func TestBedrockGenerate(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("InvokeModel", mock.Anything, mock.MatchedBy(func(in *bedrockruntime.InvokeModelInput) bool {
		var req bedrockRequest
		if err := json.Unmarshal(in.Body, &req); err != nil {
			return false
		}
		return *in.ModelId == DefaultBedrockModel &&
			req.AnthropicVersion == "bedrock-2023-05-31" &&
			req.Messages[0].Content[0].Text == "hi"
	})).Return(&bedrockruntime.InvokeModelOutput{
		Body: []byte(`{"content":[{"type":"text","text":" from bedrock "}]}`),
	}, nil).Once()

	b := NewBedrock("us-east-1", "")
	b.svc = inv

	got := NewGateway(b).Send(context.Background(), Request{Provider: "bedrock", Prompt: "hi"})
	assert.Equal(t, "from bedrock", got)
	inv.AssertExpectations(t)
}

func TestBedrockErrors(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("InvokeModel", mock.Anything, mock.Anything).Return(nil, errors.New("AccessDeniedException")).Once()

	b := NewBedrock("us-east-1", "")
	b.svc = inv
	g := NewGateway(b)

	got := g.Send(context.Background(), Request{Provider: "bedrock", Prompt: "hi"})
	assert.Contains(t, got, "Error calling Bedrock API:")
	assert.Contains(t, got, "AccessDeniedException")

	got = g.Send(context.Background(), Request{Provider: "bedrock", Prompt: "hi", Model: "meta.llama3-8b"})
	require.True(t, IsError(got))
	assert.Contains(t, got, "unsupported Bedrock model family")
	inv.AssertExpectations(t)
}
