package engine

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/germanamz/karman/pkg/modeladapter"
	"github.com/germanamz/karman/pkg/providers/compat"
	"github.com/germanamz/karman/pkg/providers/deepseek"
	"github.com/germanamz/karman/pkg/providers/qwen"
)

// SettingsFile is the default settings file name.
const SettingsFile = "karman.yaml"

// Config is the assistant settings file. The study configuration itself lives
// in simconfig; this only describes how the model is reached.
type Config struct {
	Providers      []ProviderConfig `yaml:"providers"`
	ConnectTimeout string           `yaml:"connect_timeout"` // duration string, e.g. "30s"
	ReadTimeout    string           `yaml:"read_timeout"`
	Temperature    *float64         `yaml:"temperature,omitempty"`
	MaxTokens      int              `yaml:"max_tokens,omitempty"`
}

// ProviderConfig describes one entry of the provider chain. Entries are tried
// in file order.
type ProviderConfig struct {
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"`
	BaseURL   string   `yaml:"base_url,omitempty"`
	Model     string   `yaml:"model,omitempty"`
	APIKey    string   `yaml:"api_key,omitempty"` //nolint:gosec // configuration field, not a hardcoded secret
	APIKeyEnv []string `yaml:"api_key_env,omitempty"`
}

// DefaultConfig returns Qwen as primary and DeepSeek as fallback with the
// stock timeouts and sampling parameters.
func DefaultConfig() Config {
	temp := compat.DefaultTemperature
	return Config{
		Providers: []ProviderConfig{
			{Name: qwen.Name, Kind: qwen.Name},
			{Name: deepseek.Name, Kind: deepseek.Name},
		},
		ConnectTimeout: modeladapter.DefaultConnectTimeout.String(),
		ReadTimeout:    modeladapter.DefaultReadTimeout.String(),
		Temperature:    &temp,
		MaxTokens:      compat.DefaultMaxTokens,
	}
}

// LoadConfig reads a YAML settings file. A missing file yields DefaultConfig.
// Environment variables referenced as ${VAR} or $VAR are expanded before
// parsing. Omitted fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg.withDefaults(), nil
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("engine: marshal config: %w", err)
	}
	return data, nil
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if len(c.Providers) == 0 {
		c.Providers = def.Providers
	}
	if c.ConnectTimeout == "" {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.Temperature == nil {
		c.Temperature = def.Temperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = def.MaxTokens
	}
	return c
}

// Timeouts parses the connect and read timeouts.
func (c Config) Timeouts() (connect, read time.Duration, err error) {
	c = c.withDefaults()

	connect, err = time.ParseDuration(c.ConnectTimeout)
	if err != nil {
		return 0, 0, fmt.Errorf("engine: config: invalid connect_timeout %q: %w", c.ConnectTimeout, err)
	}
	read, err = time.ParseDuration(c.ReadTimeout)
	if err != nil {
		return 0, 0, fmt.Errorf("engine: config: invalid read_timeout %q: %w", c.ReadTimeout, err)
	}
	return connect, read, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("engine: config: at least one provider is required")
	}

	names := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("engine: config: provider name is required")
		}
		if p.Kind == "" {
			return fmt.Errorf("engine: config: provider %q: kind is required", p.Name)
		}
		if _, ok := getFactory(p.Kind); !ok {
			return fmt.Errorf("engine: config: provider %q: unknown kind %q", p.Name, p.Kind)
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("engine: config: duplicate provider name %q", p.Name)
		}
		names[p.Name] = struct{}{}
	}

	connect, read, err := c.Timeouts()
	if err != nil {
		return err
	}
	if connect <= 0 || read <= 0 {
		return fmt.Errorf("engine: config: timeouts must be positive")
	}

	if t := c.withDefaults().Temperature; *t < 0 || *t > 2 {
		return fmt.Errorf("engine: config: temperature %g out of range [0, 2]", *t)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("engine: config: max_tokens must be positive")
	}

	return nil
}
