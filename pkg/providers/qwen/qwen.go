// Package qwen configures the Alibaba Qwen models served by DashScope's
// OpenAI-compatible mode. It is the primary provider.
package qwen

import (
	"net/http"

	"github.com/germanamz/karman/pkg/providers/compat"
)

// DefaultBaseURL is the DashScope compatible-mode endpoint without the
// /v1/chat/completions suffix.
const DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode"

// DefaultModel is the model used when none is configured.
const DefaultModel = "qwen-turbo"

// Name identifies the provider in logs and results.
const Name = "qwen"

// EnvKeys lists the environment variables that may hold the API key, in
// lookup order.
var EnvKeys = []string{"QWEN_API_KEY", "DASHSCOPE_API_KEY"}

// New creates a Qwen adapter. A nil client uses the default timeouts.
func New(apiKey string, client *http.Client) *compat.Adapter {
	return compat.New(DefaultBaseURL, apiKey, DefaultModel, client)
}
