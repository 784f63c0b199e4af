// Package providers groups the chat-completion backends.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/karman/pkg/providers/compat]: Completer for OpenAI-compatible chat completion endpoints
//   - [github.com/germanamz/karman/pkg/providers/qwen]: primary provider preset (DashScope compatible mode)
//   - [github.com/germanamz/karman/pkg/providers/deepseek]: fallback provider preset
//   - [github.com/germanamz/karman/pkg/providers/anthropic]: optional provider over the Anthropic Messages API
//   - [github.com/germanamz/karman/pkg/providers/fallback]: ordered chain that tries each provider in turn
//
// Transport, auth and usage tracking for the compatible providers come from
// [github.com/germanamz/karman/pkg/modeladapter].
package providers
