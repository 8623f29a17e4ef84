package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// DefaultBedrockModel is the Claude model used when a request names none.
const DefaultBedrockModel = "anthropic.claude-3-haiku-20240307-v1:0"

// bedrockInvoker is the part of the Bedrock runtime client we use.
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient calls Anthropic models hosted on Amazon Bedrock. Credentials
// come from the AWS default chain, so requests carry no API key.
type BedrockClient struct {
	region  string
	model   string
	timeout time.Duration

	mu  sync.Mutex
	svc bedrockInvoker
}

// NewBedrock creates the Bedrock provider. The AWS config is loaded on first
// use; an empty region is resolved from the environment or profile.
func NewBedrock(region, model string) *BedrockClient {
	if model == "" {
		model = DefaultBedrockModel
	}
	return &BedrockClient{region: region, model: model, timeout: cloudTimeout}
}

func (b *BedrockClient) ID() string               { return "bedrock" }
func (b *BedrockClient) Name() string             { return "Bedrock" }
func (b *BedrockClient) DefaultModel() string     { return b.model }
func (b *BedrockClient) RequiresCredential() bool { return false }

func (b *BedrockClient) client(ctx context.Context) (bedrockInvoker, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.svc != nil {
		return b.svc, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if strings.TrimSpace(b.region) != "" {
		opts = append(opts, awsconfig.WithRegion(b.region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.Region == "" {
		return nil, errors.New("AWS region not resolved: set --bedrock-region or AWS_REGION")
	}
	b.svc = bedrockruntime.NewFromConfig(cfg)
	return b.svc, nil
}

type bedrockContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type bedrockMessage struct {
	Role    string           `json:"role"`
	Content []bedrockContent `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Temperature      float64          `json:"temperature"`
	Messages         []bedrockMessage `json:"messages"`
}

// Generate invokes an Anthropic-family model with the messages body.
func (b *BedrockClient) Generate(ctx context.Context, call Call) (string, error) {
	modelID := call.Model
	if modelID == "" {
		modelID = b.model
	}
	if !strings.Contains(strings.ToLower(modelID), "anthropic.") {
		return "", fmt.Errorf("unsupported Bedrock model family for %q", modelID)
	}

	body, err := json.Marshal(bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		Messages: []bedrockMessage{{
			Role:    "user",
			Content: []bedrockContent{{Type: "text", Text: call.Prompt}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	svc, err := b.client(ctx)
	if err != nil {
		return "", err
	}
	out, err := svc.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("invoke %s: %w", modelID, err)
	}

	var resp struct {
		Content []bedrockContent `json:"content"`
	}
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	for _, c := range resp.Content {
		if c.Type == "text" && strings.TrimSpace(c.Text) != "" {
			return strings.TrimSpace(c.Text), nil
		}
	}
	return "", errors.New("empty response from Bedrock model")
}
