package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/karman/pkg/simconfig"
)

func TestNewDraft_CoversCatalog(t *testing.T) {
	cfg := simconfig.Default()
	d := newDraft(cfg)

	for _, f := range simconfig.Catalog() {
		if f.Kind == simconfig.Boolean {
			require.Contains(t, d.flags, f.Name)
			continue
		}
		require.Contains(t, d.text, f.Name)
		assert.Equal(t, cfg.CurrentValue(f.Name), *d.text[f.Name], f.Name)
	}
	assert.True(t, *d.flags["exportVelocity"])
	assert.Equal(t, "Air", *d.text["fluidName"])
}

func TestDraftApply_RoundTrip(t *testing.T) {
	cfg := simconfig.Default()
	d := newDraft(cfg)

	next := cfg.Clone()
	require.NoError(t, d.apply(next))
	assert.Equal(t, *cfg, *next)
}

func TestDraftApply_Edits(t *testing.T) {
	cfg := simconfig.Default()
	d := newDraft(cfg)

	*d.text["fluidName"] = "Water"
	*d.text["density"] = "998"
	*d.text["meshSizeLevel"] = "5"
	*d.flags["exportVelocity"] = false

	require.NoError(t, d.apply(cfg))
	assert.Equal(t, "Water", cfg.FluidName)
	assert.InDelta(t, 998.0, cfg.Density, 0)
	assert.Equal(t, 5, cfg.MeshSizeLevel)
	assert.False(t, cfg.ExportVelocity)
}

func TestDraftApply_ReportsBadValues(t *testing.T) {
	cfg := simconfig.Default()
	d := newDraft(cfg)

	*d.text["meshSizeLevel"] = "fine"
	*d.text["endTime"] = "soon"
	*d.text["fluidName"] = "Water"

	err := d.apply(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meshSizeLevel")
	assert.Contains(t, err.Error(), "endTime")
	assert.Equal(t, 3, cfg.MeshSizeLevel)
	assert.Equal(t, "Water", cfg.FluidName, "valid fields are still written")
}

func TestValidate(t *testing.T) {
	density, ok := simconfig.Lookup("density")
	require.True(t, ok)
	level, ok := simconfig.Lookup("meshSizeLevel")
	require.True(t, ok)

	assert.NoError(t, validate(density)("1.2e3"))
	assert.EqualError(t, validate(density)("heavy"), "enter a double value")
	assert.NoError(t, validate(level)(" 4 "))
	assert.EqualError(t, validate(level)("4.5"), "enter a int value")
}

func TestTitle(t *testing.T) {
	density, _ := simconfig.Lookup("density")
	name, _ := simconfig.Lookup("fluidName")

	assert.Equal(t, "Density [kg/m³]", title(density))
	assert.Equal(t, "Fluid name", title(name))
}

func TestMenuOptions(t *testing.T) {
	opts := menuOptions()

	require.Len(t, opts, len(simconfig.Sections)+3)
	assert.Equal(t, string(simconfig.SectionGeometry), opts[0].Value)
	assert.Equal(t, "Geometry (5 fields)", opts[0].Key)
	assert.Equal(t, choiceSave, opts[len(opts)-3].Value)
	assert.Equal(t, choiceReset, opts[len(opts)-2].Value)
	assert.Equal(t, "Reset to defaults", opts[len(opts)-2].Key)
	assert.Equal(t, choiceCancel, opts[len(opts)-1].Value)
}

func TestSectionGroup_BuildsEverySection(t *testing.T) {
	d := newDraft(simconfig.Default())
	for _, s := range simconfig.Sections {
		assert.NotNil(t, d.sectionGroup(s), s)
	}
}

func TestChanges(t *testing.T) {
	before := simconfig.Default()
	after := before.Clone()
	after.FluidName = "Water"
	after.ExportPressure = !before.ExportPressure

	changes := Changes(before, after)
	require.Len(t, changes, 2)
	assert.Equal(t, "fluidName", changes[0].Field)
	assert.Equal(t, "Air", changes[0].OldValue)
	assert.Equal(t, "Water", changes[0].NewValue)
	assert.Equal(t, "exportPressure", changes[1].Field)
	assert.Empty(t, Changes(before, before.Clone()))
}

func TestUsePreset_Water(t *testing.T) {
	cfg := simconfig.Default()
	d := newDraft(cfg)

	require.True(t, d.usePreset("Water"))
	require.NoError(t, d.apply(cfg))

	assert.Equal(t, "Water", cfg.FluidName)
	assert.InDelta(t, 998.0, cfg.Density, 0)
	assert.InDelta(t, 1.002e-3, cfg.DynamicViscosity, 0)
}

func TestUsePreset_BackToAir(t *testing.T) {
	cfg := simconfig.Default()
	cfg.FluidName = "Oil"
	cfg.Density = 870
	cfg.DynamicViscosity = 0.1
	d := newDraft(cfg)

	require.True(t, d.usePreset("Air"))
	require.NoError(t, d.apply(cfg))

	def := simconfig.Default()
	assert.Equal(t, def.FluidName, cfg.FluidName)
	assert.InDelta(t, def.Density, cfg.Density, 0)
	assert.InDelta(t, def.DynamicViscosity, cfg.DynamicViscosity, 0)
}

func TestUsePreset_Unknown(t *testing.T) {
	d := newDraft(simconfig.Default())

	assert.False(t, d.usePreset("Mercury"))
	assert.Equal(t, "Air", *d.text["fluidName"])
}

func TestPresetOptions(t *testing.T) {
	opts := presetOptions()

	require.Len(t, opts, 3)
	assert.Equal(t, "Custom", opts[0].Key)
	assert.Empty(t, opts[0].Value)
	assert.Equal(t, "Air", opts[1].Value)
	assert.Equal(t, "Water", opts[2].Value)
}

func TestDraftReset(t *testing.T) {
	cfg := simconfig.Default()
	cfg.FluidName = "Water"
	cfg.EndTime = 12
	cfg.ExportVelocity = false
	d := newDraft(cfg)
	d.preset = "Water"

	d.reset()
	assert.Empty(t, d.preset)

	require.NoError(t, d.apply(cfg))
	assert.Equal(t, *simconfig.Default(), *cfg)
}

func TestDraftReset_ChangesAgainstOriginal(t *testing.T) {
	before := simconfig.Default()
	before.EndTime = 12
	d := newDraft(before)
	d.reset()

	after := before.Clone()
	require.NoError(t, d.apply(after))

	changes := Changes(before, after)
	require.Len(t, changes, 1)
	assert.Equal(t, "endTime", changes[0].Field)
	assert.Equal(t, "12", changes[0].OldValue)
	assert.Equal(t, "200", changes[0].NewValue)
}
