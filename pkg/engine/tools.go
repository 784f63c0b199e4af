package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/germanamz/karman/pkg/assistant"
	"github.com/germanamz/karman/pkg/simconfig"
	"github.com/germanamz/karman/pkg/tools/toolbox"
)

// fieldView is one catalog entry with its current value.
type fieldView struct {
	Field   string   `json:"field"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Unit    string   `json:"unit,omitempty"`
	Section string   `json:"section"`
	Choices []string `json:"choices,omitempty"`
	Value   string   `json:"value"`
}

type proposalView struct {
	Succeeded bool                       `json:"succeeded"`
	Message   string                     `json:"message"`
	Changes   []assistant.ProposedChange `json:"changes"`
	Provider  string                     `json:"provider,omitempty"`
	Failure   string                     `json:"failure,omitempty"`
}

type applyInput struct {
	Changes []struct {
		Field string          `json:"field"`
		Value json.RawMessage `json:"value"`
	} `json:"changes"`
}

type applyView struct {
	Applied []assistant.ProposedChange `json:"applied"`
	Skipped []skippedView              `json:"skipped,omitempty"`
}

type skippedView struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// Tools returns the configuration tools bound to the session. afterApply,
// when set, runs after changes were written and before the store is unlocked,
// typically to save the file. It must not call back into the session.
func (s *Session) Tools(afterApply func() error) *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(
		toolbox.Tool{
			Name:        "get_config",
			Description: "List every configurable field of the cylinder-flow study with its label, type, unit and current value.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"section":{"type":"string","description":"Only list fields of this section"}}}`),
			Handler:     s.getConfigTool,
		},
		toolbox.Tool{
			Name:        "propose_changes",
			Description: "Describe a configuration change in natural language. Returns the assistant's explanation and the proposed field changes without applying them.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"request":{"type":"string"}},"required":["request"]}`),
			Handler:     s.proposeTool,
		},
		toolbox.Tool{
			Name:        "apply_changes",
			Description: "Write field values into the configuration. Each change names a field and its new value.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"changes":{"type":"array","items":{"type":"object","properties":{"field":{"type":"string"},"value":{}},"required":["field","value"]}}},"required":["changes"]}`),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				return s.applyTool(ctx, input, afterApply)
			},
		},
	)
	return tb
}

func (s *Session) getConfigTool(_ context.Context, input json.RawMessage) (string, error) {
	var in struct {
		Section string `json:"section"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("get_config: %w", err)
	}

	fields := simconfig.Catalog()
	if in.Section != "" {
		fields = simconfig.InSection(simconfig.Section(in.Section))
		if len(fields) == 0 {
			return "", fmt.Errorf("get_config: unknown section %q", in.Section)
		}
	}

	views := make([]fieldView, 0, len(fields))
	s.View(func(r assistant.ConfigReader) {
		for _, f := range fields {
			views = append(views, fieldView{
				Field:   f.Name,
				Label:   f.Label,
				Type:    f.Kind.String(),
				Unit:    f.Unit,
				Section: string(f.Section),
				Choices: f.Choices,
				Value:   r.CurrentValue(f.Name),
			})
		}
	})
	return encode(views)
}

func (s *Session) proposeTool(ctx context.Context, input json.RawMessage) (string, error) {
	var in struct {
		Request string `json:"request"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("propose_changes: %w", err)
	}
	if in.Request == "" {
		return "", errors.New("propose_changes: request is required")
	}

	res, err := s.Turn(ctx, in.Request)
	if err != nil {
		return "", fmt.Errorf("propose_changes: %w", err)
	}

	view := proposalView{
		Succeeded: res.Outcome.Succeeded,
		Message:   res.Outcome.Message,
		Changes:   res.Outcome.Changes,
		Provider:  res.Provider,
		Failure:   res.Outcome.FailureDetail,
	}
	if view.Changes == nil {
		view.Changes = []assistant.ProposedChange{}
	}
	return encode(view)
}

func (s *Session) applyTool(_ context.Context, input json.RawMessage, afterApply func() error) (string, error) {
	var in applyInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("apply_changes: %w", err)
	}

	changes := make([]assistant.ProposedChange, 0, len(in.Changes))
	s.View(func(r assistant.ConfigReader) {
		for _, c := range in.Changes {
			pc := assistant.ProposedChange{
				Field:    c.Field,
				NewValue: rawText(c.Value),
			}
			if f, ok := simconfig.Lookup(c.Field); ok {
				pc.Label = f.Label
				pc.Kind = f.Kind
				pc.OldValue = r.CurrentValue(c.Field)
			}
			changes = append(changes, pc)
		}
	})

	// afterApply runs under the store lock so a save never overlaps a write.
	skipped, err := s.apply(changes, afterApply)
	if err != nil {
		return "", fmt.Errorf("apply_changes: %w", err)
	}

	out := applyView{Applied: Applied(changes, skipped)}
	for _, sk := range skipped {
		v := skippedView{Field: sk.Change.Field, Reason: string(sk.Reason)}
		if sk.Err != nil {
			v.Error = sk.Err.Error()
		}
		out.Skipped = append(out.Skipped, v)
	}
	return encode(out)
}

// rawText turns a JSON value into the text form a reply would carry: strings
// are unquoted, everything else is kept verbatim.
func rawText(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}

func encode(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
