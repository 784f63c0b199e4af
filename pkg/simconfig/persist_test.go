package simconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/karman/pkg/simconfig"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := simconfig.Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, simconfig.Default(), cfg)
}

func TestLoad_PartialJSONKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"inletVelocity": 0.08, "fluidName": "Water", "someFutureKey": 1}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := simconfig.Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.08, cfg.InletVelocity, 1e-12)
	assert.Equal(t, "Water", cfg.FluidName)
	assert.InDelta(t, 1.225, cfg.Density, 1e-12)
	assert.Equal(t, 3, cfg.MeshSizeLevel)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := simconfig.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.json")
}

func TestSaveLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := simconfig.Default()
	cfg.MeshSizeLevel = 6
	cfg.OutletType = "Outflow"

	require.NoError(t, simconfig.Save(path, cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"meshSizeLevel": 6`)

	got, err := simconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSaveLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.yaml")
	cfg := simconfig.Default()
	cfg.ExportAnimation = false
	cfg.DynamicViscosity = 1.002e-3

	require.NoError(t, simconfig.Save(path, cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "exportAnimation: false")

	got, err := simconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSaveLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.toml")
	cfg := simconfig.Default()
	cfg.FluidName = "Water"
	cfg.MeshSizeLevel = 2

	require.NoError(t, simconfig.Save(path, cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `fluidName = "Water"`)

	got, err := simconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad_TOMLKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.toml")
	require.NoError(t, os.WriteFile(path, []byte("endTime = 12.5\n"), 0o600))

	got, err := simconfig.Load(path)
	require.NoError(t, err)

	want := simconfig.Default()
	want.EndTime = 12.5
	assert.Equal(t, want, got)
}
