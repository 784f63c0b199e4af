// Package editor is the interactive form editor for the study configuration.
// It builds one huh form per catalog section and writes the edited values
// back through the catalog, so the same coercion rules apply as for
// assistant proposals.
package editor

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/germanamz/karman/pkg/assistant"
	"github.com/germanamz/karman/pkg/simconfig"
)

const (
	choiceSave   = "save"
	choiceReset  = "reset"
	choiceCancel = "cancel"
)

// draft holds the form-bound values of every catalog field. Text, number and
// integer fields are edited as text; boolean fields as bools. preset is the
// fluid picked in the Material group, empty for custom values.
type draft struct {
	text   map[string]*string
	flags  map[string]*bool
	preset string
}

func newDraft(cfg *simconfig.Config) *draft {
	d := &draft{
		text:  make(map[string]*string),
		flags: make(map[string]*bool),
	}
	for _, f := range simconfig.Catalog() {
		if f.Kind == simconfig.Boolean {
			b, _ := f.Get(cfg).(bool)
			d.flags[f.Name] = &b
			continue
		}
		s := cfg.CurrentValue(f.Name)
		d.text[f.Name] = &s
	}
	return d
}

// apply writes the draft into cfg. Fields that fail to coerce are reported
// together and leave their old value.
func (d *draft) apply(cfg *simconfig.Config) error {
	var errs []error
	for _, f := range simconfig.Catalog() {
		var v any
		if f.Kind == simconfig.Boolean {
			v = *d.flags[f.Name]
		} else {
			c, err := f.Coerce(*d.text[f.Name])
			if err != nil {
				errs = append(errs, err)
				continue
			}
			v = c
		}
		if err := f.Set(cfg, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// usePreset copies a fluid preset into the material fields. It reports false
// for an unknown name.
func (d *draft) usePreset(name string) bool {
	for _, p := range assistant.Presets {
		if p.Name != name {
			continue
		}
		*d.text["fluidName"] = p.Name
		*d.text["density"] = strconv.FormatFloat(p.Density, 'g', -1, 64)
		*d.text["dynamicViscosity"] = strconv.FormatFloat(p.DynamicViscosity, 'g', -1, 64)
		return true
	}
	return false
}

// reset replaces every value in the draft with the defaults.
func (d *draft) reset() {
	def := simconfig.Default()
	for name, v := range d.text {
		*v = def.CurrentValue(name)
	}
	for _, f := range simconfig.Catalog() {
		if b, ok := d.flags[f.Name]; ok {
			*b, _ = f.Get(def).(bool)
		}
	}
	d.preset = ""
}

// presetOptions lists the fluid presets after a custom entry.
func presetOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Custom", "")}
	for _, p := range assistant.Presets {
		opts = append(opts, huh.NewOption(p.Name, p.Name))
	}
	return opts
}

// validate returns the huh validator for a text-edited field.
func validate(f simconfig.Field) func(string) error {
	return func(s string) error {
		if _, err := f.Coerce(s); err != nil {
			return fmt.Errorf("enter a %s value", f.Kind)
		}
		return nil
	}
}

func title(f simconfig.Field) string {
	if f.Unit == "" {
		return f.Label
	}
	return f.Label + " [" + f.Unit + "]"
}

// fieldInput builds the form control for one field.
func (d *draft) fieldInput(f simconfig.Field) huh.Field {
	switch {
	case f.Kind == simconfig.Boolean:
		return huh.NewConfirm().
			Title(title(f)).
			Affirmative("Yes").
			Negative("No").
			Value(d.flags[f.Name])
	case len(f.Choices) > 0:
		return huh.NewSelect[string]().
			Title(title(f)).
			Options(huh.NewOptions(f.Choices...)...).
			Value(d.text[f.Name])
	default:
		return huh.NewInput().
			Title(title(f)).
			Description(f.Name + " (" + f.Kind.String() + ")").
			Validate(validate(f)).
			Value(d.text[f.Name])
	}
}

// sectionGroup builds the group for one section.
func (d *draft) sectionGroup(s simconfig.Section) *huh.Group {
	fields := simconfig.InSection(s)
	inputs := make([]huh.Field, 0, len(fields)+1)
	if s == simconfig.SectionMaterial {
		d.preset = ""
		inputs = append(inputs, huh.NewSelect[string]().
			Title("Fluid preset").
			Description("Sets fluid name, density and viscosity when the group is done").
			Options(presetOptions()...).
			Value(&d.preset))
	}
	for _, f := range fields {
		inputs = append(inputs, d.fieldInput(f))
	}
	return huh.NewGroup(inputs...).Title(string(s))
}

// menuOptions lists the sections with their field counts, then save, reset
// and cancel.
func menuOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(simconfig.Sections)+3)
	for _, s := range simconfig.Sections {
		n := len(simconfig.InSection(s))
		opts = append(opts, huh.NewOption(string(s)+" ("+strconv.Itoa(n)+" fields)", string(s)))
	}
	return append(opts,
		huh.NewOption("Save & Exit", choiceSave),
		huh.NewOption("Reset to defaults", choiceReset),
		huh.NewOption("Cancel", choiceCancel),
	)
}

// Run opens the section menu over cfg. On save the edited values are written
// into cfg and the resulting changes are returned with saved set. Reset only
// touches the draft, so it takes effect on save. Cancel leaves cfg untouched.
func Run(cfg *simconfig.Config) (changes []assistant.ProposedChange, saved bool, err error) {
	d := newDraft(cfg)

	for {
		var choice string

		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Study configuration").
				Options(menuOptions()...).
				Value(&choice),
		)).Run()
		if err != nil {
			return nil, false, err
		}

		switch choice {
		case choiceCancel:
			return nil, false, nil
		case choiceReset:
			d.reset()
		case choiceSave:
			next := cfg.Clone()
			if err := d.apply(next); err != nil {
				return nil, false, err
			}
			changes = Changes(cfg, next)
			*cfg = *next
			return changes, true, nil
		default:
			if err := huh.NewForm(d.sectionGroup(simconfig.Section(choice))).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					continue
				}
				return nil, false, err
			}
			if d.preset != "" {
				d.usePreset(d.preset)
			}
		}
	}
}

// Changes lists the fields whose values differ between before and after, in
// catalog order.
func Changes(before, after *simconfig.Config) []assistant.ProposedChange {
	var out []assistant.ProposedChange
	for _, f := range simconfig.Catalog() {
		old, updated := before.CurrentValue(f.Name), after.CurrentValue(f.Name)
		if old == updated {
			continue
		}
		out = append(out, assistant.ProposedChange{
			Field:    f.Name,
			Label:    f.Label,
			OldValue: old,
			NewValue: updated,
			Kind:     f.Kind,
		})
	}
	return out
}
