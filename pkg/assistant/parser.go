package assistant

import (
	"fmt"
	"log/slog"

	"github.com/germanamz/karman/pkg/jsonscan"
	"github.com/germanamz/karman/pkg/simconfig"
)

// ReplyParser turns a raw model reply into a ParseOutcome. Implementations
// must not panic and must not return partial state on failure.
type ReplyParser interface {
	Parse(raw string, cfg ConfigReader) ParseOutcome
}

// TolerantParser scans the reply text for the expected keys instead of
// decoding it as JSON, so prose around the object, trailing garbage and
// malformed change entries do not discard the rest of the reply.
type TolerantParser struct {
	Logger *slog.Logger
}

var _ ReplyParser = TolerantParser{}

// Parse implements ReplyParser.
func (p TolerantParser) Parse(raw string, cfg ConfigReader) (out ParseOutcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger().Error("assistant: parser panic", "panic", r)
			out = Failed(raw, fmt.Errorf("assistant: parse reply: %v", r))
		}
	}()

	obj, ok := jsonscan.ExtractObject(raw)
	if !ok {
		return Failed(raw, ErrNoJSON)
	}

	out = ParseOutcome{Succeeded: true, Message: NoMessage}
	if msg, ok := jsonscan.StringField(obj, "message"); ok {
		out.Message = msg
	}

	// An unbalanced array is treated the same as a missing one.
	arr, ok := jsonscan.ArrayField(obj, "changes")
	if !ok {
		return out
	}
	out.Changes = p.changes(arr, cfg)

	return out
}

func (p TolerantParser) changes(arr string, cfg ConfigReader) []ProposedChange {
	var out []ProposedChange
	for pos := 1; pos < len(arr); {
		start, end, ok := jsonscan.NextObject(arr, pos)
		if !ok {
			break
		}
		pos = end

		if c, ok := candidate(arr[start:end], cfg); ok {
			out = append(out, c)
		} else {
			p.logger().Debug("assistant: dropped change entry", "entry", arr[start:end])
		}
	}
	return out
}

// candidate reads one change object. Entries without a field, without a
// value or naming a field outside the catalog are rejected.
func candidate(obj string, cfg ConfigReader) (ProposedChange, bool) {
	name, ok := jsonscan.StringField(obj, "field")
	if !ok {
		return ProposedChange{}, false
	}
	value, ok := jsonscan.Value(obj, "value")
	if !ok {
		return ProposedChange{}, false
	}
	f, ok := simconfig.Lookup(name)
	if !ok {
		return ProposedChange{}, false
	}

	return ProposedChange{
		Field:    f.Name,
		Label:    f.Label,
		OldValue: cfg.CurrentValue(f.Name),
		NewValue: value,
		Kind:     f.Kind,
	}, true
}

func (p TolerantParser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
