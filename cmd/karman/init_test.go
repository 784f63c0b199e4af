package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/karman/pkg/engine"
	"github.com/germanamz/karman/pkg/simconfig"
)

func TestRunInit_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.json")
	settings := filepath.Join(dir, "karman.yaml")

	var buf bytes.Buffer
	require.NoError(t, runInit(&buf, cfgFile, settings, false))

	assert.Contains(t, buf.String(), "created "+cfgFile)
	assert.Contains(t, buf.String(), "created "+settings)

	cfg, err := simconfig.Load(cfgFile)
	require.NoError(t, err)
	assert.Equal(t, *simconfig.Default(), *cfg)

	loaded, err := engine.LoadConfig(settings)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	assert.Len(t, loaded.Providers, len(engine.DefaultConfig().Providers))
}

func TestRunInit_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.json")
	settings := filepath.Join(dir, "karman.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`{"fluidName":"Water"}`), 0o600))

	var buf bytes.Buffer
	require.NoError(t, runInit(&buf, cfgFile, settings, false))

	assert.Contains(t, buf.String(), "skipped "+cfgFile)
	data, err := os.ReadFile(cfgFile)
	require.NoError(t, err)
	assert.Equal(t, `{"fluidName":"Water"}`, string(data))
	assert.FileExists(t, settings)
}

func TestRunInit_Force(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "study.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("fluidName: Water\n"), 0o600))

	var buf bytes.Buffer
	require.NoError(t, runInit(&buf, cfgFile, filepath.Join(dir, "karman.yaml"), true))

	cfg, err := simconfig.Load(cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "Air", cfg.FluidName)
}

func TestRunInit_BadDirectory(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	err := runInit(&buf, filepath.Join(dir, "missing", "config.json"), filepath.Join(dir, "karman.yaml"), false)
	assert.ErrorContains(t, err, "init:")
}
