package credentials_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/karman/pkg/credentials"
)

var (
	qwenSpec     = credentials.Spec{Provider: "qwen", EnvKeys: []string{"QWEN_API_KEY", "DASHSCOPE_API_KEY"}}
	deepseekSpec = credentials.Spec{Provider: "deepseek", EnvKeys: []string{"DEEPSEEK_API_KEY"}}
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeEnvFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLookup_PrimaryEnvVar(t *testing.T) {
	r := &credentials.Resolver{Getenv: env(map[string]string{
		"QWEN_API_KEY":      "sk-qwen",
		"DASHSCOPE_API_KEY": "sk-dash",
	})}

	c, ok := r.Lookup(qwenSpec)
	require.True(t, ok)
	assert.Equal(t, "sk-qwen", c.APIKey)
	assert.Equal(t, "env:QWEN_API_KEY", c.Source)
}

func TestLookup_AlternateEnvVar(t *testing.T) {
	r := &credentials.Resolver{Getenv: env(map[string]string{"DASHSCOPE_API_KEY": "sk-dash"})}

	c, ok := r.Lookup(qwenSpec)
	require.True(t, ok)
	assert.Equal(t, "sk-dash", c.APIKey)
}

func TestLookup_EnvBeatsFile(t *testing.T) {
	path := writeEnvFile(t, t.TempDir(), "QWEN_API_KEY=from-file\n")
	r := &credentials.Resolver{
		Getenv: env(map[string]string{"DASHSCOPE_API_KEY": "from-env"}),
		Files:  []string{path},
	}

	c, ok := r.Lookup(qwenSpec)
	require.True(t, ok)
	assert.Equal(t, "from-env", c.APIKey)
}

func TestLookup_DotenvFile(t *testing.T) {
	path := writeEnvFile(t, t.TempDir(), `# provider keys
QWEN_API_KEY=""
DEEPSEEK_API_KEY="sk-quoted"

OTHER='x'
`)
	r := &credentials.Resolver{Getenv: env(nil), Files: []string{path}}

	_, ok := r.Lookup(qwenSpec)
	assert.False(t, ok, "empty value counts as absent")

	c, ok := r.Lookup(deepseekSpec)
	require.True(t, ok)
	assert.Equal(t, "sk-quoted", c.APIKey)
	assert.Equal(t, "file:"+path+"#DEEPSEEK_API_KEY", c.Source)
}

func TestLookup_FileOrder(t *testing.T) {
	first := writeEnvFile(t, t.TempDir(), "DEEPSEEK_API_KEY=first\n")
	second := writeEnvFile(t, t.TempDir(), "DEEPSEEK_API_KEY=second\n")
	r := &credentials.Resolver{
		Getenv: env(nil),
		Files:  []string{filepath.Join(t.TempDir(), "missing.env"), first, second},
	}

	c, ok := r.Lookup(deepseekSpec)
	require.True(t, ok)
	assert.Equal(t, "first", c.APIKey)
}

func TestLookup_UnreadableFileSkipped(t *testing.T) {
	dir := t.TempDir()
	good := writeEnvFile(t, t.TempDir(), "DEEPSEEK_API_KEY=ok\n")
	r := &credentials.Resolver{
		Getenv: env(nil),
		Files:  []string{dir, good}, // a directory cannot be read as a file
	}

	c, ok := r.Lookup(deepseekSpec)
	require.True(t, ok)
	assert.Equal(t, "ok", c.APIKey)
}

func TestResolve_PreservesPriority(t *testing.T) {
	r := &credentials.Resolver{Getenv: env(map[string]string{
		"DEEPSEEK_API_KEY": "sk-ds",
		"QWEN_API_KEY":     "sk-qwen",
	})}

	creds := r.Resolve(qwenSpec, deepseekSpec)
	require.Len(t, creds, 2)
	assert.Equal(t, "qwen", creds[0].Provider)
	assert.Equal(t, "deepseek", creds[1].Provider)
}

func TestResolve_SkipsMissing(t *testing.T) {
	r := &credentials.Resolver{Getenv: env(map[string]string{"DEEPSEEK_API_KEY": "sk-ds"})}

	creds := r.Resolve(qwenSpec, deepseekSpec)
	require.Len(t, creds, 1)
	assert.Equal(t, "deepseek", creds[0].Provider)
}

func TestResolve_UsesProcessEnvByDefault(t *testing.T) {
	t.Setenv("KARMAN_TEST_KEY", "sk-proc")
	r := &credentials.Resolver{}

	creds := r.Resolve(credentials.Spec{Provider: "p", EnvKeys: []string{"KARMAN_TEST_KEY"}})
	require.Len(t, creds, 1)
	assert.Equal(t, "sk-proc", creds[0].APIKey)
}

func TestCredential_StringHidesKey(t *testing.T) {
	c := credentials.Credential{Provider: "qwen", APIKey: "sk-secret", Source: "env:QWEN_API_KEY"}
	assert.NotContains(t, c.String(), "sk-secret")
	assert.Equal(t, "qwen (env:QWEN_API_KEY)", c.String())
}

func TestCandidateFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	files := credentials.CandidateFiles("custom.env")

	require.GreaterOrEqual(t, len(files), 2)
	assert.Equal(t, "custom.env", files[0])
	assert.Equal(t, ".env", files[1])
	for _, f := range files {
		assert.NotEqual(t, filepath.Join(dir, ".env"), f, "cwd .env duplicates ./.env")
	}
}
