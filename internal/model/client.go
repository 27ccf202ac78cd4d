// Package model provides the language-model collaborator: an Anthropic API
// client wrapper with token tracking and a normalized response shape.
package model

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/ShayCichocki/wayfind/pkg/models"
)

// Message is one turn of a model exchange.
type Message struct {
	// Role is "user", "assistant", or "system".
	Role string
	// Content is the text content of the turn.
	Content string
}

// Request is a structured prompt for one model completion.
type Request struct {
	// System is the system prompt, if any.
	System string
	// Messages is the ordered exchange.
	Messages []Message
	// Settings carries the per-session model configuration.
	Settings models.ModelSettings
}

// Client is the model collaborator contract. Complete may fail with
// transient errors (network, rate limit); retry policy belongs to the
// invocation layer, not here.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// AnthropicClient wraps the Anthropic SDK client with token tracking.
type AnthropicClient struct {
	inner   anthropic.Client
	model   anthropic.Model
	tracker *TokenTracker
}

// ClientConfig contains configuration for creating an AnthropicClient.
type ClientConfig struct {
	// Model is the default model when a request's settings leave it empty.
	Model string
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// UseAWSBedrock routes calls through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g. "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
}

// NewAnthropicClient creates the model client.
func NewAnthropicClient(cfg ClientConfig) (*AnthropicClient, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}

	return &AnthropicClient{
		inner:   anthropic.NewClient(opts...),
		model:   model,
		tracker: NewTokenTracker(),
	}, nil
}

// Tracker returns the token tracker for this client.
func (c *AnthropicClient) Tracker() *TokenTracker {
	return c.tracker
}

// Complete sends one completion request and returns the assistant message
// as a StructuredMessage of its content blocks.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	model := anthropic.Model(req.Settings.Model)
	if model == "" {
		model = c.model
	}

	var system []anthropic.TextBlockParam
	if req.System != "" {
		system = []anthropic.TextBlockParam{{Text: req.System}}
	}

	var messages []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		case "system":
			// The SDK carries system text separately.
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: int64(req.Settings.TokenCeiling()),
		System:    system,
		Messages:  messages,
	}
	if req.Settings.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Settings.Temperature)
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("model completion: %w", err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	msg := StructuredMessage{}
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			msg.Parts = append(msg.Parts, Part{Type: "text", Text: variant.Text})
		default:
			msg.Parts = append(msg.Parts, Part{Type: string(block.Type)})
		}
	}

	return msg, nil
}

// TokenTracker tracks token usage across API calls.
type TokenTracker struct {
	mu        sync.Mutex
	inputTok  int64
	outputTok int64
	calls     int
}

// NewTokenTracker creates a new token tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{}
}

// Add records token usage from an API call.
func (t *TokenTracker) Add(input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok += input
	t.outputTok += output
	t.calls++
}

// Total returns the total input and output tokens tracked.
func (t *TokenTracker) Total() (input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inputTok, t.outputTok
}

// Calls returns the number of API calls made.
func (t *TokenTracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
