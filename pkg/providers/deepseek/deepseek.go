// Package deepseek configures the DeepSeek chat model. It is the fallback
// provider.
package deepseek

import (
	"net/http"

	"github.com/germanamz/karman/pkg/providers/compat"
)

// DefaultBaseURL is the DeepSeek API endpoint without the
// /v1/chat/completions suffix.
const DefaultBaseURL = "https://api.deepseek.com"

// DefaultModel is the model used when none is configured.
const DefaultModel = "deepseek-chat"

// Name identifies the provider in logs and results.
const Name = "deepseek"

// EnvKeys lists the environment variables that may hold the API key.
var EnvKeys = []string{"DEEPSEEK_API_KEY"}

// New creates a DeepSeek adapter. A nil client uses the default timeouts.
func New(apiKey string, client *http.Client) *compat.Adapter {
	return compat.New(DefaultBaseURL, apiKey, DefaultModel, client)
}
