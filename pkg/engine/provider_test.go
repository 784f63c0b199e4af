package engine

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/karman/pkg/modeladapter"
	"github.com/germanamz/karman/pkg/providers/anthropic"
	"github.com/germanamz/karman/pkg/providers/compat"
	"github.com/germanamz/karman/pkg/providers/deepseek"
	"github.com/germanamz/karman/pkg/providers/qwen"
)

type staticCompleter struct{ text string }

func (s staticCompleter) Complete(context.Context, string, string) (modeladapter.Completion, error) {
	return modeladapter.Completion{Text: s.text}, nil
}

func TestBuildCompleter_Defaults(t *testing.T) {
	tests := []struct {
		kind    string
		baseURL string
		model   string
	}{
		{"qwen", qwen.DefaultBaseURL, qwen.DefaultModel},
		{"deepseek", deepseek.DefaultBaseURL, deepseek.DefaultModel},
		{"openai", "https://api.openai.com", "gpt-4o-mini"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			c, err := buildCompleter(ProviderParams{
				Config:      ProviderConfig{Name: tt.kind, Kind: tt.kind},
				APIKey:      "k",
				Client:      http.DefaultClient,
				Temperature: 0.3,
				MaxTokens:   2048,
			})
			require.NoError(t, err)

			a, ok := c.(*compat.Adapter)
			require.True(t, ok)
			assert.Equal(t, tt.baseURL, a.BaseURL)
			assert.Equal(t, tt.model, a.Name)
			assert.Equal(t, "k", a.Auth.Key)
		})
	}
}

func TestBuildCompleter_Overrides(t *testing.T) {
	c, err := buildCompleter(ProviderParams{
		Config:      ProviderConfig{Name: "p", Kind: "deepseek", BaseURL: "http://localhost:9", Model: "deepseek-reasoner"},
		APIKey:      "k",
		Temperature: 0,
		MaxTokens:   512,
	})
	require.NoError(t, err)

	a := c.(*compat.Adapter)
	assert.Equal(t, "http://localhost:9", a.BaseURL)
	assert.Equal(t, "deepseek-reasoner", a.Name)
	assert.InDelta(t, 0, a.Temperature, 0)
	assert.Equal(t, 512, a.MaxTokens)
}

func TestBuildCompleter_Anthropic(t *testing.T) {
	c, err := buildCompleter(ProviderParams{
		Config:      ProviderConfig{Name: "claude", Kind: "anthropic", Model: "claude-test"},
		APIKey:      "k",
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	require.NoError(t, err)

	a, ok := c.(*anthropic.Adapter)
	require.True(t, ok)
	assert.Equal(t, "claude-test", a.Model)
	assert.InDelta(t, 0.2, a.Temperature, 0)
	assert.Equal(t, 1024, a.MaxTokens)
	assert.Equal(t, anthropic.EnvKeys, envKeys(ProviderConfig{Kind: "anthropic"}))
}

func TestBuildCompleter_UnknownKind(t *testing.T) {
	_, err := buildCompleter(ProviderParams{Config: ProviderConfig{Name: "p", Kind: "nope"}})
	assert.ErrorContains(t, err, `unknown provider kind "nope"`)
}

func TestRegisterProvider(t *testing.T) {
	RegisterProvider("static", []string{"STATIC_KEY"}, func(ProviderParams) (modeladapter.Completer, error) {
		return staticCompleter{text: "hi"}, nil
	})

	c, err := buildCompleter(ProviderParams{Config: ProviderConfig{Name: "s", Kind: "static"}})
	require.NoError(t, err)
	got, err := c.Complete(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Text)

	assert.Equal(t, []string{"STATIC_KEY"}, envKeys(ProviderConfig{Kind: "static"}))
}

func TestEnvKeys(t *testing.T) {
	assert.Equal(t, qwen.EnvKeys, envKeys(ProviderConfig{Kind: "qwen"}))
	assert.Equal(t, deepseek.EnvKeys, envKeys(ProviderConfig{Kind: "deepseek"}))
	assert.Equal(t, []string{"OPENAI_API_KEY"}, envKeys(ProviderConfig{Kind: "openai"}))
	assert.Equal(t, []string{"CUSTOM"}, envKeys(ProviderConfig{Kind: "qwen", APIKeyEnv: []string{"CUSTOM"}}))
	assert.Nil(t, envKeys(ProviderConfig{Kind: "unknown"}))
}
