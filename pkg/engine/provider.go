package engine

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/germanamz/karman/pkg/modeladapter"
	"github.com/germanamz/karman/pkg/providers/anthropic"
	"github.com/germanamz/karman/pkg/providers/compat"
	"github.com/germanamz/karman/pkg/providers/deepseek"
	"github.com/germanamz/karman/pkg/providers/qwen"
)

// ProviderParams carries what a factory needs to build a Completer.
type ProviderParams struct {
	Config      ProviderConfig
	APIKey      string
	Client      *http.Client
	Temperature float64
	MaxTokens   int
}

// ProviderFactory creates a Completer for one provider kind.
type ProviderFactory func(p ProviderParams) (modeladapter.Completer, error)

type providerKind struct {
	factory ProviderFactory
	envKeys []string
}

var (
	factoryMu   sync.RWMutex
	factories   = map[string]providerKind{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factories[qwen.Name] = providerKind{factory: newQwen, envKeys: qwen.EnvKeys}
		factories[deepseek.Name] = providerKind{factory: newDeepSeek, envKeys: deepseek.EnvKeys}
		factories["openai"] = providerKind{factory: newOpenAI, envKeys: []string{"OPENAI_API_KEY"}}
		factories[anthropic.Name] = providerKind{factory: newAnthropic, envKeys: anthropic.EnvKeys}
	})
}

// RegisterProvider registers a provider factory under kind. envKeys are the
// variables searched for its key when the settings name none. It can be
// called before New to extend the engine.
func RegisterProvider(kind string, envKeys []string, factory ProviderFactory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = providerKind{factory: factory, envKeys: envKeys}
}

func getFactory(kind string) (providerKind, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	k, ok := factories[kind]
	return k, ok
}

// envKeys returns the variables holding the key for cfg.
func envKeys(cfg ProviderConfig) []string {
	if len(cfg.APIKeyEnv) > 0 {
		return cfg.APIKeyEnv
	}
	if k, ok := getFactory(cfg.Kind); ok {
		return k.envKeys
	}
	return nil
}

func newQwen(p ProviderParams) (modeladapter.Completer, error) {
	return tune(qwen.New(p.APIKey, p.Client), p), nil
}

func newDeepSeek(p ProviderParams) (modeladapter.Completer, error) {
	return tune(deepseek.New(p.APIKey, p.Client), p), nil
}

func newOpenAI(p ProviderParams) (modeladapter.Completer, error) {
	model := p.Config.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return tune(compat.New("https://api.openai.com", p.APIKey, model, p.Client), p), nil
}

func newAnthropic(p ProviderParams) (modeladapter.Completer, error) {
	var opts []anthropic.Option
	if p.Client != nil {
		opts = append(opts, anthropic.WithHTTPClient(p.Client))
	}
	if p.Config.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(p.Config.BaseURL))
	}

	a := anthropic.New(p.APIKey, opts...)
	if p.Config.Model != "" {
		a.Model = p.Config.Model
	}
	a.Temperature = p.Temperature
	if p.MaxTokens > 0 {
		a.MaxTokens = p.MaxTokens
	}
	return a, nil
}

// tune applies the per-provider overrides and the shared sampling settings.
func tune(a *compat.Adapter, p ProviderParams) *compat.Adapter {
	if p.Config.BaseURL != "" {
		a.BaseURL = p.Config.BaseURL
	}
	if p.Config.Model != "" {
		a.Name = p.Config.Model
	}
	a.Temperature = p.Temperature
	if p.MaxTokens > 0 {
		a.MaxTokens = p.MaxTokens
	}
	return a
}

func buildCompleter(p ProviderParams) (modeladapter.Completer, error) {
	k, ok := getFactory(p.Config.Kind)
	if !ok {
		return nil, fmt.Errorf("engine: unknown provider kind %q", p.Config.Kind)
	}

	c, err := k.factory(p)
	if err != nil {
		return nil, fmt.Errorf("engine: provider %q: %w", p.Config.Name, err)
	}
	return c, nil
}
