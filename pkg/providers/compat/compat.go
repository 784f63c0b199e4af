// Package compat provides a Completer for OpenAI-compatible chat completion
// endpoints (DashScope compatible mode, DeepSeek, OpenAI itself).
package compat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/germanamz/karman/pkg/jsonscan"
	"github.com/germanamz/karman/pkg/modeladapter"
	"github.com/germanamz/karman/pkg/modeladapter/usage"
)

// CompletionsPath is appended to the base URL of every request.
const CompletionsPath = "/v1/chat/completions"

// Request defaults.
const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 2048
)

// ErrMalformedResponse is returned when a 2xx reply has no string "content"
// field.
var ErrMalformedResponse = errors.New("compat: no content in response")

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer for OpenAI-compatible APIs.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter. The baseURL has no trailing slash and no
// /v1/chat/completions suffix. A nil client uses the default timeouts.
func New(baseURL, apiKey, model string, client *http.Client) *Adapter {
	a := &Adapter{
		ModelAdapter: modeladapter.New(baseURL, modeladapter.Auth{Key: apiKey}, client),
	}
	a.Name = model
	a.Temperature = DefaultTemperature
	a.MaxTokens = DefaultMaxTokens

	return a
}

// Complete sends the system prompt and the user message and returns the
// first "content" string found in the reply envelope. Token usage is recorded
// when the envelope carries it.
func (a *Adapter) Complete(ctx context.Context, system, user string) (modeladapter.Completion, error) {
	body, err := a.PostRaw(ctx, CompletionsPath, a.buildRequest(system, user))
	if err != nil {
		return modeladapter.Completion{}, fmt.Errorf("compat: %w", err)
	}

	text, ok := jsonscan.StringField(string(body), "content")
	if !ok {
		return modeladapter.Completion{}, fmt.Errorf("%w (%d byte body)", ErrMalformedResponse, len(body))
	}

	tc := readUsage(body)
	a.Usage.Add(tc)

	return modeladapter.Completion{Text: text, Usage: tc}, nil
}

// --- request types ---

type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (a *Adapter) buildRequest(system, user string) apiRequest {
	req := apiRequest{
		Model:       a.Name,
		Temperature: a.Temperature,
		MaxTokens:   a.MaxTokens,
	}

	if system != "" {
		req.Messages = append(req.Messages, apiMessage{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, apiMessage{Role: "user", Content: user})

	return req
}

// readUsage decodes the optional usage block. Bodies that are not valid JSON
// report zero usage.
func readUsage(body []byte) usage.TokenCount {
	var env struct {
		Usage usage.TokenCount `json:"usage"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return usage.TokenCount{}
	}
	return env.Usage
}
