// Package modeladapter defines the completion interface and the embeddable
// HTTP base shared by chat-completion providers.
//
// It contains:
//   - [Completer] interface and embeddable [ModelAdapter] base struct with HTTP helpers, auth, and custom headers
//   - [NewHTTPClient], a client with separate connect and read timeouts
//   - [github.com/germanamz/karman/pkg/modeladapter/usage]: thread-safe token usage tracker
//
// Model configuration (name, temperature, max tokens) is inlined directly on
// the ModelAdapter struct. This package contains no provider-specific code; concrete
// adapters live in separate packages that import modeladapter.
package modeladapter
