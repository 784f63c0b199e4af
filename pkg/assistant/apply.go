package assistant

import (
	"log/slog"

	"github.com/germanamz/karman/pkg/simconfig"
)

// SkipReason says why a change was not applied.
type SkipReason string

const (
	SkipUnknownField SkipReason = "unknown_field"
	SkipCoercion     SkipReason = "coercion_failed"
	SkipRejected     SkipReason = "rejected_by_store"
)

// Skipped is a change Apply could not write.
type Skipped struct {
	Change ProposedChange
	Reason SkipReason
	Err    error
}

// Apply writes changes into store in order. A change whose field is not in
// the catalog, whose value cannot be coerced to the field's kind or that the
// store refuses is logged at warn level and skipped; the remaining changes
// are still applied. Later changes to the same field win.
func Apply(store ConfigStore, changes []ProposedChange, logger *slog.Logger) []Skipped {
	if logger == nil {
		logger = slog.Default()
	}

	var skipped []Skipped
	for _, c := range changes {
		f, ok := simconfig.Lookup(c.Field)
		if !ok {
			logger.Warn("assistant: skip change", "field", c.Field, "reason", SkipUnknownField)
			skipped = append(skipped, Skipped{Change: c, Reason: SkipUnknownField, Err: simconfig.ErrUnknownField})
			continue
		}

		v, err := f.Coerce(c.NewValue)
		if err != nil {
			logger.Warn("assistant: skip change", "field", c.Field, "value", c.NewValue, "reason", SkipCoercion, "error", err)
			skipped = append(skipped, Skipped{Change: c, Reason: SkipCoercion, Err: err})
			continue
		}

		if err := store.SetValue(f.Name, v); err != nil {
			logger.Warn("assistant: skip change", "field", c.Field, "reason", SkipRejected, "error", err)
			skipped = append(skipped, Skipped{Change: c, Reason: SkipRejected, Err: err})
			continue
		}

		logger.Debug("assistant: applied change", "field", f.Name, "old", c.OldValue, "new", c.NewValue)
	}
	return skipped
}
