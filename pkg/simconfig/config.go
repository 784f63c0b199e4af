package simconfig

import (
	"errors"
	"fmt"
	"os"
)

// ErrUnknownField is returned when a field name is not in the catalog.
var ErrUnknownField = errors.New("simconfig: unknown field")

// Config is the full set of study parameters handed to the solver scripts.
// Field names match the keys of the original config.json so existing files
// load unchanged.
type Config struct {
	// Geometry.
	DomainWidth    float64 `json:"domainWidth" yaml:"domainWidth" toml:"domainWidth"`
	DomainHeight   float64 `json:"domainHeight" yaml:"domainHeight" toml:"domainHeight"`
	CylinderRadius float64 `json:"cylinderRadius" yaml:"cylinderRadius" toml:"cylinderRadius"`
	CylinderX      float64 `json:"cylinderX" yaml:"cylinderX" toml:"cylinderX"`
	CylinderY      float64 `json:"cylinderY" yaml:"cylinderY" toml:"cylinderY"`

	// Boundary conditions.
	InletType             string  `json:"inletType" yaml:"inletType" toml:"inletType"`
	InletVelocity         float64 `json:"inletVelocity" yaml:"inletVelocity" toml:"inletVelocity"`
	InletPressure         float64 `json:"inletPressure" yaml:"inletPressure" toml:"inletPressure"`
	OutletType            string  `json:"outletType" yaml:"outletType" toml:"outletType"`
	OutletPressure        float64 `json:"outletPressure" yaml:"outletPressure" toml:"outletPressure"`
	OutletVelocity        float64 `json:"outletVelocity" yaml:"outletVelocity" toml:"outletVelocity"`
	TopBoundaryType       string  `json:"topBoundaryType" yaml:"topBoundaryType" toml:"topBoundaryType"`
	BottomBoundaryType    string  `json:"bottomBoundaryType" yaml:"bottomBoundaryType" toml:"bottomBoundaryType"`
	CylinderWallType      string  `json:"cylinderWallType" yaml:"cylinderWallType" toml:"cylinderWallType"`
	CylinderWallCondition string  `json:"cylinderWallCondition" yaml:"cylinderWallCondition" toml:"cylinderWallCondition"`

	// Physics.
	FlowType     string `json:"flowType" yaml:"flowType" toml:"flowType"`
	EquationForm string `json:"equationForm" yaml:"equationForm" toml:"equationForm"`

	// Material.
	FluidName        string  `json:"fluidName" yaml:"fluidName" toml:"fluidName"`
	Density          float64 `json:"density" yaml:"density" toml:"density"`
	DynamicViscosity float64 `json:"dynamicViscosity" yaml:"dynamicViscosity" toml:"dynamicViscosity"`

	// Mesh.
	MeshSizeLevel       int     `json:"meshSizeLevel" yaml:"meshSizeLevel" toml:"meshSizeLevel"`
	MeshMaxSize         float64 `json:"meshMaxSize" yaml:"meshMaxSize" toml:"meshMaxSize"`
	MeshMinSize         float64 `json:"meshMinSize" yaml:"meshMinSize" toml:"meshMinSize"`
	CylinderMeshMaxSize float64 `json:"cylinderMeshMaxSize" yaml:"cylinderMeshMaxSize" toml:"cylinderMeshMaxSize"`

	// Solver.
	StartTime float64 `json:"startTime" yaml:"startTime" toml:"startTime"`
	EndTime   float64 `json:"endTime" yaml:"endTime" toml:"endTime"`
	TimeStep  float64 `json:"timeStep" yaml:"timeStep" toml:"timeStep"`

	// Output.
	OutputDir          string `json:"outputDir" yaml:"outputDir" toml:"outputDir"`
	ModelFileName      string `json:"modelFileName" yaml:"modelFileName" toml:"modelFileName"`
	ExportVelocity     bool   `json:"exportVelocity" yaml:"exportVelocity" toml:"exportVelocity"`
	ExportVorticity    bool   `json:"exportVorticity" yaml:"exportVorticity" toml:"exportVorticity"`
	ExportPressure     bool   `json:"exportPressure" yaml:"exportPressure" toml:"exportPressure"`
	ExportAnimation    bool   `json:"exportAnimation" yaml:"exportAnimation" toml:"exportAnimation"`
	AnimationFps       int    `json:"animationFps" yaml:"animationFps" toml:"animationFps"`
	AnimationMaxFrames int    `json:"animationMaxFrames" yaml:"animationMaxFrames" toml:"animationMaxFrames"`

	// Pressure plot color range. Locking the range keeps the animation and the
	// still images on the same scale. Not exposed through the catalog.
	PressureRangeManual bool    `json:"pressureRangeManual" yaml:"pressureRangeManual" toml:"pressureRangeManual"`
	PressureRangeMin    float64 `json:"pressureRangeMin" yaml:"pressureRangeMin" toml:"pressureRangeMin"`
	PressureRangeMax    float64 `json:"pressureRangeMax" yaml:"pressureRangeMax" toml:"pressureRangeMax"`
}

// Default returns the reference study: air past a 5 cm cylinder at Re≈100.
func Default() *Config {
	return &Config{
		DomainWidth:    2.2,
		DomainHeight:   1.0,
		CylinderRadius: 0.05,
		CylinderX:      0.5,
		CylinderY:      0.5,

		InletType:             "Velocity",
		InletVelocity:         0.031,
		InletPressure:         0,
		OutletType:            "Pressure",
		OutletPressure:        0,
		OutletVelocity:        0,
		TopBoundaryType:       "Symmetry",
		BottomBoundaryType:    "Symmetry",
		CylinderWallType:      "Wall",
		CylinderWallCondition: "NoSlip",

		FlowType:     "Laminar",
		EquationForm: "Transient",

		FluidName:        "Air",
		Density:          1.225,
		DynamicViscosity: 1.7894e-5,

		MeshSizeLevel:       3,
		MeshMaxSize:         0.01,
		MeshMinSize:         0.0005,
		CylinderMeshMaxSize: 0.002,

		StartTime: 0,
		EndTime:   200,
		TimeStep:  0.5,

		OutputDir:          "",
		ModelFileName:      "CylinderFlow.mph",
		ExportVelocity:     true,
		ExportVorticity:    true,
		ExportPressure:     true,
		ExportAnimation:    true,
		AnimationFps:       60,
		AnimationMaxFrames: 200,

		PressureRangeManual: true,
		PressureRangeMin:    -2,
		PressureRangeMax:    2,
	}
}

// Clone returns an independent copy. Config holds only value fields.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// CurrentValue returns the named field's value rendered per its kind, or the
// empty string when the name is not in the catalog.
func (c *Config) CurrentValue(name string) string {
	f, ok := Lookup(name)
	if !ok {
		return ""
	}
	return f.Format(f.Get(c))
}

// SetValue stores an already-typed value into the named field. The dynamic
// type of v must match the field's kind (float64, int, string or bool).
func (c *Config) SetValue(name string, v any) error {
	f, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f.Set(c, v)
}

// TimeList renders the solver output times as a range(start,step,end)
// expression.
func (c *Config) TimeList() string {
	return fmt.Sprintf("range(%s,%s,%s)", formatNumber(c.StartTime), formatNumber(c.TimeStep), formatNumber(c.EndTime))
}

// EffectiveOutputDir returns OutputDir, or the working directory when unset.
func (c *Config) EffectiveOutputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
