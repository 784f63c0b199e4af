// Package usage records token consumption reported by chat-completion
// providers.
package usage

import (
	"fmt"
	"sync"
)

// TokenCount holds the token counts a provider reported for one call.
// Providers that omit the usage block report zero.
type TokenCount struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Total returns the sum of prompt and completion tokens.
func (tc TokenCount) Total() int {
	return tc.PromptTokens + tc.CompletionTokens
}

// IsZero reports whether no tokens were recorded.
func (tc TokenCount) IsZero() bool {
	return tc.PromptTokens == 0 && tc.CompletionTokens == 0
}

// String renders "prompt+completion tokens".
func (tc TokenCount) String() string {
	return fmt.Sprintf("%d+%d tokens", tc.PromptTokens, tc.CompletionTokens)
}

// Tracker accumulates usage across calls to one provider.
// It is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	total TokenCount
}

// Add records the usage of one call.
func (t *Tracker) Add(tc TokenCount) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total.PromptTokens += tc.PromptTokens
	t.total.CompletionTokens += tc.CompletionTokens
}

// Total returns the aggregate usage across all calls.
func (t *Tracker) Total() TokenCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.total
}
