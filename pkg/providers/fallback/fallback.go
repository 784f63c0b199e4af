// Package fallback sends a request to an ordered list of providers and
// returns the first successful reply.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/germanamz/karman/pkg/modeladapter"
	"github.com/germanamz/karman/pkg/modeladapter/usage"
)

// ErrNoCredentials is returned when no provider is configured.
var ErrNoCredentials = errors.New("fallback: no provider credentials configured")

// ProviderRequestError is the failure of one provider attempt.
type ProviderRequestError struct {
	Provider string
	Err      error
}

func (e *ProviderRequestError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderRequestError) Unwrap() error { return e.Err }

// AllProvidersFailedError is returned when every provider attempt failed.
type AllProvidersFailedError struct {
	Last     *ProviderRequestError
	Attempts []*ProviderRequestError
}

func (e *AllProvidersFailedError) Error() string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Provider
	}
	return fmt.Sprintf("fallback: all providers failed (%s): %v", strings.Join(names, ", "), e.Last)
}

// Unwrap exposes every attempt to errors.Is and errors.As.
func (e *AllProvidersFailedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}

// Provider is one entry of the chain.
type Provider struct {
	Name      string
	Completer modeladapter.Completer
}

// Reply is the text of a successful call and the provider that produced it.
type Reply struct {
	Text     string
	Provider string
	Usage    usage.TokenCount
	Attempts int
}

// Chain tries providers in order. It keeps no state between calls, so the
// first provider is always tried first.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// New creates a Chain. Providers with a nil Completer are ignored. A nil
// logger uses slog.Default.
func New(logger *slog.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Chain{logger: logger}
	for _, p := range providers {
		if p.Completer != nil {
			c.providers = append(c.providers, p)
		}
	}

	return c
}

// Available reports whether at least one provider is configured.
func (c *Chain) Available() bool { return len(c.providers) > 0 }

// Providers returns the provider names in try order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name
	}
	return names
}

// Chat sends the user message with the system prompt to each provider in
// order until one succeeds. Every failure, whatever its cause, moves on to the
// next provider; there is no retry within a provider.
func (c *Chain) Chat(ctx context.Context, user, system string) (Reply, error) {
	if len(c.providers) == 0 {
		return Reply{}, ErrNoCredentials
	}

	var attempts []*ProviderRequestError
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, &ProviderRequestError{Provider: p.Name, Err: err})
			break
		}

		start := time.Now()
		comp, err := p.Completer.Complete(ctx, system, user)
		if err == nil {
			c.logger.Info("fallback: provider replied",
				"provider", p.Name,
				"attempt", len(attempts)+1,
				"duration", time.Since(start),
				"tokens", comp.Usage.Total(),
			)
			return Reply{
				Text:     comp.Text,
				Provider: p.Name,
				Usage:    comp.Usage,
				Attempts: len(attempts) + 1,
			}, nil
		}

		c.logger.Warn("fallback: provider failed",
			"provider", p.Name,
			"duration", time.Since(start),
			"error", err,
		)
		attempts = append(attempts, &ProviderRequestError{Provider: p.Name, Err: err})
	}

	return Reply{}, &AllProvidersFailedError{
		Last:     attempts[len(attempts)-1],
		Attempts: attempts,
	}
}
