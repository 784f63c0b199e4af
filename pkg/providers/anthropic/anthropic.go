// Package anthropic provides a Completer for the Anthropic Messages API using
// the official SDK. It is an optional provider kind; the default chain uses
// the OpenAI-compatible presets.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/germanamz/karman/pkg/modeladapter"
	"github.com/germanamz/karman/pkg/modeladapter/usage"
)

// Name identifies the provider kind in settings.
const Name = "anthropic"

// DefaultModel is the model used when none is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

// EnvKeys lists the environment variables that may hold the API key.
var EnvKeys = []string{"ANTHROPIC_API_KEY"}

// ErrEmptyReply is returned when the reply has no text block.
var ErrEmptyReply = errors.New("anthropic: no text in response")

var (
	_ modeladapter.Completer     = (*Adapter)(nil)
	_ modeladapter.UsageReporter = (*Adapter)(nil)
)

// Adapter implements modeladapter.Completer over the Messages API.
type Adapter struct {
	Model       string
	Temperature float64
	MaxTokens   int

	client anthropic.Client
	usage  usage.Tracker
}

// Option configures an Adapter.
type Option func(*config)

type config struct {
	baseURL string
	client  *http.Client
}

// WithBaseURL points the adapter at a different endpoint.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithHTTPClient sets the HTTP client, typically one from
// modeladapter.NewHTTPClient so the shared timeouts apply.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.client = client }
}

// New creates an Adapter. The SDK's own retries are disabled; the fallback
// chain decides what happens after a failure.
func New(apiKey string, opts ...Option) *Adapter {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.client != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.client))
	}

	return &Adapter{
		Model:     DefaultModel,
		MaxTokens: 2048,
		client:    anthropic.NewClient(reqOpts...),
	}
}

// UsageTracker returns the accumulated token usage.
func (a *Adapter) UsageTracker() *usage.Tracker { return &a.usage }

// Complete sends the system prompt and the user message and returns the
// concatenated text blocks of the reply.
func (a *Adapter) Complete(ctx context.Context, system, user string) (modeladapter.Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		Temperature: anthropic.Float(a.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return modeladapter.Completion{}, fmt.Errorf("anthropic: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if b.Len() == 0 {
		return modeladapter.Completion{}, ErrEmptyReply
	}

	tc := usage.TokenCount{
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
	}
	a.usage.Add(tc)

	return modeladapter.Completion{Text: b.String(), Usage: tc}, nil
}
