package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
providers:
  - name: primary
    kind: qwen
    model: qwen-plus
    api_key_env: [MY_QWEN_KEY]
  - name: backup
    kind: deepseek
    base_url: https://proxy.example.com

connect_timeout: 10s
read_timeout: 1m
temperature: 0.1
max_tokens: 1024
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "karman.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func floatPtr(v float64) *float64 { return &v }

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "primary", cfg.Providers[0].Name)
	assert.Equal(t, "qwen", cfg.Providers[0].Kind)
	assert.Equal(t, "qwen-plus", cfg.Providers[0].Model)
	assert.Equal(t, []string{"MY_QWEN_KEY"}, cfg.Providers[0].APIKeyEnv)
	assert.Equal(t, "https://proxy.example.com", cfg.Providers[1].BaseURL)

	connect, read, err := cfg.Timeouts()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, connect)
	assert.Equal(t, time.Minute, read)
	assert.InDelta(t, 0.1, *cfg.Temperature, 1e-9)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "read_timeout: 5s\n"))
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "qwen", cfg.Providers[0].Name)
	assert.Equal(t, "deepseek", cfg.Providers[1].Name)

	connect, read, err := cfg.Timeouts()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, connect)
	assert.Equal(t, 5*time.Second, read)
	assert.InDelta(t, 0.3, *cfg.Temperature, 1e-9)
	assert.Equal(t, 2048, cfg.MaxTokens)
}

func TestLoadConfig_ZeroTemperatureKept(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "temperature: 0\n"))
	require.NoError(t, err)
	assert.InDelta(t, 0, *cfg.Temperature, 0)
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	t.Setenv("KARMAN_TEST_API_KEY", "sk-from-env")

	cfg, err := LoadConfig(writeConfig(t, `
providers:
  - name: p1
    kind: deepseek
    api_key: ${KARMAN_TEST_API_KEY}
`))
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Providers[0].APIKey)
}

func TestLoadConfig_UnsetEnvVarExpandsToEmpty(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
providers:
  - name: p1
    kind: deepseek
    api_key: ${KARMAN_TEST_UNSET_VAR_12345}
`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Providers[0].APIKey)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "providers: [\n"))
	assert.ErrorContains(t, err, "engine: parse config")
}

func TestConfig_MarshalRoundTrip(t *testing.T) {
	data, err := DefaultConfig().Marshal()
	require.NoError(t, err)

	path := writeConfig(t, string(data))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_Validate_Default(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "no providers",
			cfg:  Config{},
			want: "at least one provider",
		},
		{
			name: "missing name",
			cfg:  Config{Providers: []ProviderConfig{{Kind: "qwen"}}},
			want: "provider name is required",
		},
		{
			name: "missing kind",
			cfg:  Config{Providers: []ProviderConfig{{Name: "p1"}}},
			want: `provider "p1": kind is required`,
		},
		{
			name: "unknown kind",
			cfg:  Config{Providers: []ProviderConfig{{Name: "p1", Kind: "mystery"}}},
			want: `unknown kind "mystery"`,
		},
		{
			name: "duplicate name",
			cfg:  Config{Providers: []ProviderConfig{{Name: "p1", Kind: "qwen"}, {Name: "p1", Kind: "deepseek"}}},
			want: `duplicate provider name "p1"`,
		},
		{
			name: "bad duration",
			cfg:  Config{Providers: []ProviderConfig{{Name: "p1", Kind: "qwen"}}, ConnectTimeout: "soon"},
			want: "invalid connect_timeout",
		},
		{
			name: "non-positive timeout",
			cfg:  Config{Providers: []ProviderConfig{{Name: "p1", Kind: "qwen"}}, ReadTimeout: "0s"},
			want: "timeouts must be positive",
		},
		{
			name: "temperature too high",
			cfg:  Config{Providers: []ProviderConfig{{Name: "p1", Kind: "qwen"}}, Temperature: floatPtr(2.5)},
			want: "out of range",
		},
		{
			name: "negative max tokens",
			cfg:  Config{Providers: []ProviderConfig{{Name: "p1", Kind: "qwen"}}, MaxTokens: -1},
			want: "max_tokens must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.cfg.Validate(), tt.want)
		})
	}
}
