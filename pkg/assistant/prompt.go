package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/germanamz/karman/pkg/simconfig"
)

// Preset is a named fluid with its material properties.
type Preset struct {
	Name             string
	Density          float64
	DynamicViscosity float64
}

// Presets are the fluids offered to the model as shortcuts.
var Presets = []Preset{
	{Name: "Air", Density: 1.225, DynamicViscosity: 1.7894e-5},
	{Name: "Water", Density: 998.0, DynamicViscosity: 1.002e-3},
}

// BuildSystemPrompt renders the live configuration and the field catalog
// into the system prompt for one turn.
func BuildSystemPrompt(cfg ConfigReader) string {
	var b strings.Builder

	b.WriteString("You are a configuration assistant for a 2-D flow-past-a-cylinder (Kármán vortex street) CFD study. ")
	b.WriteString("The user describes in natural language the simulation parameters they want to change. ")
	b.WriteString("Work out their intent and answer with a structured list of configuration changes.\n")

	b.WriteString("\n## Current configuration\n\n```json\n")
	b.WriteString(snapshot(cfg))
	b.WriteString("\n```\n")

	b.WriteString("\n## Available fields\n\n")
	b.WriteString(fieldTable())

	b.WriteString("\n## Fluid presets\n\n")
	for _, p := range Presets {
		fmt.Fprintf(&b, "- %s: density=%s kg/m³, dynamicViscosity=%s Pa·s\n",
			p.Name, formatPresetNumber(p.Density), formatPresetNumber(p.DynamicViscosity))
	}

	b.WriteString("\n## Reply format\n\n")
	b.WriteString("Reply with ONLY a JSON object of this shape and no other text:\n\n")
	b.WriteString("```json\n")
	b.WriteString("{\n")
	b.WriteString("  \"message\": \"a friendly reply explaining the changes\",\n")
	b.WriteString("  \"changes\": [\n")
	b.WriteString("    {\"field\": \"fieldName\", \"value\": \"new value\"},\n")
	b.WriteString("    {\"field\": \"fieldName\", \"value\": \"new value\"}\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n")
	b.WriteString("```\n")

	b.WriteString("\n## Rules\n\n")
	b.WriteString("1. Output the JSON object only.\n")
	b.WriteString("2. Numeric fields (double, int) take bare numbers without units.\n")
	b.WriteString("3. String fields take double-quoted values.\n")
	b.WriteString("4. Boolean fields take true or false.\n")
	b.WriteString("5. If the request does not change the configuration (a greeting or a question), return an empty changes array and answer in message.\n")
	b.WriteString("6. When switching the fluid (for example \"use water\"), update fluidName, density and dynamicViscosity together.\n")

	return b.String()
}

// snapshot renders every catalog value as a JSON object in catalog order.
func snapshot(cfg ConfigReader) string {
	fields := simconfig.Catalog()

	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range fields {
		v := cfg.CurrentValue(f.Name)
		if f.Kind == simconfig.Text {
			v = quote(v)
		} else if v == "" {
			v = "null"
		}
		fmt.Fprintf(&b, "  %q: %s", f.Name, v)
		if i < len(fields)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}

// fieldTable renders the catalog as a Markdown table whose columns line up
// by display width.
func fieldTable() string {
	header := []string{"Field", "Label", "Type", "Unit"}
	rows := [][]string{header}
	for _, f := range simconfig.Catalog() {
		rows = append(rows, []string{f.Name, f.Label, f.Kind.String(), f.Unit})
	}

	widths := make([]int, len(header))
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i, cell := range cells {
			b.WriteString(" ")
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("|")
	}
	b.WriteString("\n")
	for _, r := range rows[1:] {
		writeRow(r)
	}
	return b.String()
}

// quote renders s as a JSON string literal.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func formatPresetNumber(v float64) string {
	s := fmt.Sprintf("%g", v)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
