package simconfig

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the value type of a catalog field.
type Kind int

const (
	Number Kind = iota
	Integer
	Text
	Boolean
)

// String returns the kind name used in prompts and field tables.
func (k Kind) String() string {
	switch k {
	case Number:
		return "double"
	case Integer:
		return "int"
	case Text:
		return "string"
	case Boolean:
		return "boolean"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Section groups fields for display.
type Section string

const (
	SectionGeometry Section = "Geometry"
	SectionBoundary Section = "Boundary conditions"
	SectionPhysics  Section = "Physics"
	SectionMaterial Section = "Material"
	SectionMesh     Section = "Mesh"
	SectionSolver   Section = "Solver"
	SectionOutput   Section = "Output"
)

// Sections lists the sections in display order.
var Sections = []Section{
	SectionGeometry,
	SectionBoundary,
	SectionPhysics,
	SectionMaterial,
	SectionMesh,
	SectionSolver,
	SectionOutput,
}

// Field describes one configurable parameter.
type Field struct {
	Name    string   // Unique key, matches the config file key.
	Label   string   // Human-readable name.
	Kind    Kind     // Value type.
	Unit    string   // Physical unit, may be empty.
	Section Section  // Display group.
	Choices []string // Allowed values for enumerated text fields.

	ref func(*Config) any // returns a pointer to the backing struct field
}

// Get returns the field's typed value from c.
func (f Field) Get(c *Config) any {
	switch p := f.ref(c).(type) {
	case *float64:
		return *p
	case *int:
		return *p
	case *string:
		return *p
	case *bool:
		return *p
	default:
		return nil
	}
}

// Set stores v into c. v must already have the field's Go type; ints are
// accepted for Number fields.
func (f Field) Set(c *Config, v any) error {
	switch p := f.ref(c).(type) {
	case *float64:
		switch n := v.(type) {
		case float64:
			*p = n
			return nil
		case int:
			*p = float64(n)
			return nil
		}
	case *int:
		if n, ok := v.(int); ok {
			*p = n
			return nil
		}
	case *string:
		if s, ok := v.(string); ok {
			*p = s
			return nil
		}
	case *bool:
		if b, ok := v.(bool); ok {
			*p = b
			return nil
		}
	}
	return fmt.Errorf("simconfig: field %q: want %s value, got %T", f.Name, f.Kind, v)
}

// Coerce converts text to the field's Go type.
func (f Field) Coerce(text string) (any, error) {
	switch f.Kind {
	case Number:
		n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("simconfig: field %q: %q is not a number", f.Name, text)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("simconfig: field %q: %q is not a finite number", f.Name, text)
		}
		return n, nil
	case Integer:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("simconfig: field %q: %q is not an integer", f.Name, text)
		}
		return n, nil
	case Boolean:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("simconfig: field %q: %q is not true or false", f.Name, text)
	default:
		return text, nil
	}
}

// Format renders a typed value as text.
func (f Field) Format(v any) string {
	switch x := v.(type) {
	case float64:
		return formatNumber(x)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func number(name, label, unit string, s Section, ref func(*Config) *float64) Field {
	return Field{Name: name, Label: label, Kind: Number, Unit: unit, Section: s, ref: func(c *Config) any { return ref(c) }}
}

func integer(name, label, unit string, s Section, ref func(*Config) *int) Field {
	return Field{Name: name, Label: label, Kind: Integer, Unit: unit, Section: s, ref: func(c *Config) any { return ref(c) }}
}

func text(name, label string, s Section, choices []string, ref func(*Config) *string) Field {
	return Field{Name: name, Label: label, Kind: Text, Section: s, Choices: choices, ref: func(c *Config) any { return ref(c) }}
}

func boolean(name, label string, s Section, ref func(*Config) *bool) Field {
	return Field{Name: name, Label: label, Kind: Boolean, Section: s, ref: func(c *Config) any { return ref(c) }}
}

var (
	wallChoices = []string{"Symmetry", "Wall", "Slip"}

	catalog = []Field{
		number("domainWidth", "Domain width", "m", SectionGeometry, func(c *Config) *float64 { return &c.DomainWidth }),
		number("domainHeight", "Domain height", "m", SectionGeometry, func(c *Config) *float64 { return &c.DomainHeight }),
		number("cylinderRadius", "Cylinder radius", "m", SectionGeometry, func(c *Config) *float64 { return &c.CylinderRadius }),
		number("cylinderX", "Cylinder X position", "m", SectionGeometry, func(c *Config) *float64 { return &c.CylinderX }),
		number("cylinderY", "Cylinder Y position", "m", SectionGeometry, func(c *Config) *float64 { return &c.CylinderY }),

		text("inletType", "Inlet type", SectionBoundary, []string{"Velocity", "Pressure"}, func(c *Config) *string { return &c.InletType }),
		number("inletVelocity", "Inlet velocity", "m/s", SectionBoundary, func(c *Config) *float64 { return &c.InletVelocity }),
		number("inletPressure", "Inlet pressure", "Pa", SectionBoundary, func(c *Config) *float64 { return &c.InletPressure }),
		text("outletType", "Outlet type", SectionBoundary, []string{"Pressure", "Velocity", "Outflow"}, func(c *Config) *string { return &c.OutletType }),
		number("outletPressure", "Outlet pressure", "Pa", SectionBoundary, func(c *Config) *float64 { return &c.OutletPressure }),
		number("outletVelocity", "Outlet velocity", "m/s", SectionBoundary, func(c *Config) *float64 { return &c.OutletVelocity }),
		text("topBoundaryType", "Top boundary type", SectionBoundary, wallChoices, func(c *Config) *string { return &c.TopBoundaryType }),
		text("bottomBoundaryType", "Bottom boundary type", SectionBoundary, wallChoices, func(c *Config) *string { return &c.BottomBoundaryType }),
		text("cylinderWallType", "Cylinder wall type", SectionBoundary, []string{"Wall", "Slip"}, func(c *Config) *string { return &c.CylinderWallType }),
		text("cylinderWallCondition", "Cylinder wall condition", SectionBoundary, []string{"NoSlip", "Slip"}, func(c *Config) *string { return &c.CylinderWallCondition }),

		text("flowType", "Flow regime", SectionPhysics, []string{"Laminar", "Turbulent"}, func(c *Config) *string { return &c.FlowType }),
		text("equationForm", "Study type", SectionPhysics, []string{"Transient", "Stationary"}, func(c *Config) *string { return &c.EquationForm }),

		text("fluidName", "Fluid name", SectionMaterial, nil, func(c *Config) *string { return &c.FluidName }),
		number("density", "Density", "kg/m³", SectionMaterial, func(c *Config) *float64 { return &c.Density }),
		number("dynamicViscosity", "Dynamic viscosity", "Pa·s", SectionMaterial, func(c *Config) *float64 { return &c.DynamicViscosity }),

		integer("meshSizeLevel", "Mesh refinement level (1-9)", "", SectionMesh, func(c *Config) *int { return &c.MeshSizeLevel }),
		number("meshMaxSize", "Max element size", "m", SectionMesh, func(c *Config) *float64 { return &c.MeshMaxSize }),
		number("meshMinSize", "Min element size", "m", SectionMesh, func(c *Config) *float64 { return &c.MeshMinSize }),
		number("cylinderMeshMaxSize", "Cylinder max element size", "m", SectionMesh, func(c *Config) *float64 { return &c.CylinderMeshMaxSize }),

		number("startTime", "Start time", "s", SectionSolver, func(c *Config) *float64 { return &c.StartTime }),
		number("endTime", "End time", "s", SectionSolver, func(c *Config) *float64 { return &c.EndTime }),
		number("timeStep", "Time step", "s", SectionSolver, func(c *Config) *float64 { return &c.TimeStep }),

		text("outputDir", "Output directory", SectionOutput, nil, func(c *Config) *string { return &c.OutputDir }),
		text("modelFileName", "Model file name", SectionOutput, nil, func(c *Config) *string { return &c.ModelFileName }),
		boolean("exportVelocity", "Export velocity plot", SectionOutput, func(c *Config) *bool { return &c.ExportVelocity }),
		boolean("exportVorticity", "Export vorticity plot", SectionOutput, func(c *Config) *bool { return &c.ExportVorticity }),
		boolean("exportPressure", "Export pressure plot", SectionOutput, func(c *Config) *bool { return &c.ExportPressure }),
		boolean("exportAnimation", "Export animation", SectionOutput, func(c *Config) *bool { return &c.ExportAnimation }),
		integer("animationFps", "Animation frame rate", "fps", SectionOutput, func(c *Config) *int { return &c.AnimationFps }),
		integer("animationMaxFrames", "Animation max frames", "", SectionOutput, func(c *Config) *int { return &c.AnimationMaxFrames }),
	}

	byName = indexCatalog(catalog)
)

func indexCatalog(fields []Field) map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := idx[f.Name]; dup {
			panic("simconfig: duplicate catalog field " + f.Name)
		}
		idx[f.Name] = i
	}
	return idx
}

// Catalog returns the fields in display order. The returned slice is a copy;
// the Choices slices are shared and must not be modified.
func Catalog() []Field {
	out := make([]Field, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for name.
func Lookup(name string) (Field, bool) {
	i, ok := byName[name]
	if !ok {
		return Field{}, false
	}
	return catalog[i], true
}

// InSection returns the fields of section s in display order.
func InSection(s Section) []Field {
	var out []Field
	for _, f := range catalog {
		if f.Section == s {
			out = append(out, f)
		}
	}
	return out
}
