// Package preview renders proposed configuration changes for review: an
// aligned change list and a unified diff of the configuration file.
package preview

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/germanamz/karman/pkg/assistant"
	"github.com/germanamz/karman/pkg/simconfig"
)

// Lines renders one line per change with the label column padded to the
// widest label, so arrows line up even with non-ASCII units.
func Lines(changes []assistant.ProposedChange) []string {
	width := 0
	for _, c := range changes {
		width = max(width, runewidth.StringWidth(heading(c)))
	}

	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, fmt.Sprintf("%s  %s → %s", runewidth.FillRight(heading(c), width), c.OldValue, c.NewValue))
	}
	return out
}

func heading(c assistant.ProposedChange) string {
	if c.Label == "" {
		return c.Field
	}
	return c.Label + " (" + c.Field + ")"
}

// Simulate applies changes to a copy of cfg and returns the copy with the
// changes that would be skipped. cfg is not modified.
func Simulate(cfg *simconfig.Config, changes []assistant.ProposedChange) (*simconfig.Config, []assistant.Skipped) {
	next := cfg.Clone()
	skipped := assistant.Apply(next, changes, slog.New(slog.DiscardHandler))
	return next, skipped
}

// Diff returns a unified diff between the encodings of before and after in
// the format implied by path. It is empty when nothing changed.
func Diff(path string, before, after *simconfig.Config) (string, error) {
	old, err := simconfig.Marshal(path, before)
	if err != nil {
		return "", err
	}
	updated, err := simconfig.Marshal(path, after)
	if err != nil {
		return "", err
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(string(updated)),
		FromFile: path,
		ToFile:   path + " (proposed)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("preview: diff: %w", err)
	}
	return text, nil
}

// Skipped renders skipped changes as "field: reason" lines.
func Skipped(skipped []assistant.Skipped) []string {
	out := make([]string, 0, len(skipped))
	for _, s := range skipped {
		line := s.Change.Field + ": " + strings.ReplaceAll(string(s.Reason), "_", " ")
		if s.Err != nil {
			line += " (" + s.Err.Error() + ")"
		}
		out = append(out, line)
	}
	return out
}

// Row is one field of a configuration listing.
type Row struct {
	Section simconfig.Section
	Field   string
	Label   string
	Value   string
	Unit    string
}

// Rows lists the fields of section with their current values, or every
// field when section is empty.
func Rows(cfg *simconfig.Config, section string) ([]Row, error) {
	fields := simconfig.Catalog()
	if section != "" {
		fields = simconfig.InSection(simconfig.Section(section))
		if len(fields) == 0 {
			return nil, fmt.Errorf("unknown section %q", section)
		}
	}

	rows := make([]Row, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, Row{
			Section: f.Section,
			Field:   f.Name,
			Label:   f.Label,
			Value:   cfg.CurrentValue(f.Name),
			Unit:    f.Unit,
		})
	}
	return rows, nil
}

// LabelWidth is the display width of the widest label in rows.
func LabelWidth(rows []Row) int {
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.Label))
	}
	return width
}

// Format renders the row with its label padded to width.
func (r Row) Format(width int) string {
	line := runewidth.FillRight(r.Label, width) + "  " + r.Value
	if r.Unit != "" {
		line += " " + r.Unit
	}
	return line
}
