package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/germanamz/karman/pkg/assistant"
	"github.com/germanamz/karman/pkg/credentials"
	"github.com/germanamz/karman/pkg/modeladapter"
	"github.com/germanamz/karman/pkg/modeladapter/usage"
	"github.com/germanamz/karman/pkg/providers/fallback"
)

// Options are the optional collaborators of an Engine.
type Options struct {
	// Resolver finds provider keys. Nil searches the process environment and
	// the default dotenv candidates.
	Resolver *credentials.Resolver
	// Parser turns replies into outcomes. Nil uses assistant.TolerantParser.
	Parser assistant.ReplyParser
	Logger *slog.Logger
}

// Engine holds the provider chain built from settings and the sessions
// handed out to frontends.
type Engine struct {
	cfg        Config
	events     *EventBus
	chain      *fallback.Chain
	creds      []credentials.Credential
	completers map[string]modeladapter.Completer
	parser     assistant.ReplyParser
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates an Engine from cfg. Providers without a key are left out of the
// chain; an engine with no providers is valid but not Available.
func New(cfg Config, opts Options) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	connect, read, err := cfg.Timeouts()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = &credentials.Resolver{Files: credentials.CandidateFiles(""), Logger: logger}
	}
	parser := opts.Parser
	if parser == nil {
		parser = assistant.TolerantParser{Logger: logger}
	}

	e := &Engine{
		cfg:        cfg,
		events:     NewEventBus(),
		completers: make(map[string]modeladapter.Completer, len(cfg.Providers)),
		parser:     parser,
		logger:     logger,
		sessions:   make(map[string]*Session),
	}

	client := modeladapter.NewHTTPClient(connect, read)
	var chain []fallback.Provider
	for _, pc := range cfg.Providers {
		key, ok := e.resolveKey(resolver, pc)
		if !ok {
			continue
		}

		c, err := buildCompleter(ProviderParams{
			Config:      pc,
			APIKey:      key.APIKey,
			Client:      client,
			Temperature: *cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			return nil, err
		}

		e.creds = append(e.creds, key)
		e.completers[pc.Name] = c
		chain = append(chain, fallback.Provider{Name: pc.Name, Completer: c})
	}

	e.chain = fallback.New(logger, chain...)
	if !e.chain.Available() {
		logger.Warn("engine: no provider credentials found; the assistant is disabled")
	}

	return e, nil
}

// resolveKey prefers a literal api_key from the settings file over the
// environment lookup.
func (e *Engine) resolveKey(r *credentials.Resolver, pc ProviderConfig) (credentials.Credential, bool) {
	if pc.APIKey != "" {
		e.logger.Info("credentials: key loaded", "provider", pc.Name, "source", "settings")
		return credentials.Credential{Provider: pc.Name, APIKey: pc.APIKey, Source: "settings"}, true
	}

	found := r.Resolve(credentials.Spec{Provider: pc.Name, EnvKeys: envKeys(pc)})
	if len(found) == 0 {
		return credentials.Credential{}, false
	}
	return found[0], true
}

// Config returns the settings the engine was built from, defaults applied.
func (e *Engine) Config() Config { return e.cfg }

// Events returns the engine's event bus.
func (e *Engine) Events() *EventBus { return e.events }

// Available reports whether at least one provider has a key.
func (e *Engine) Available() bool { return e.chain.Available() }

// Providers returns the usable provider names in try order.
func (e *Engine) Providers() []string { return e.chain.Providers() }

// Credentials returns where each usable provider's key came from.
func (e *Engine) Credentials() []credentials.Credential {
	return append([]credentials.Credential(nil), e.creds...)
}

// Usage returns the accumulated token usage per provider.
func (e *Engine) Usage() map[string]usage.TokenCount {
	out := make(map[string]usage.TokenCount, len(e.completers))
	for name, c := range e.completers {
		if r, ok := c.(modeladapter.UsageReporter); ok {
			out[name] = r.UsageTracker().Total()
		}
	}
	return out
}

// NewSession creates a session over store.
func (e *Engine) NewSession(store assistant.ConfigStore) *Session {
	id := uuid.NewString()
	s := newSession(id, store, e.chain, e.parser, e.events, e.logger.With("session", id))

	e.mu.Lock()
	e.sessions[id] = s
	e.mu.Unlock()

	return s
}

// CloseSession forgets the session with the given ID.
func (e *Engine) CloseSession(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.sessions, id)
}
