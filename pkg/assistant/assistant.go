// Package assistant turns free-text requests into reviewed configuration
// edits. It builds the system prompt from the live configuration, parses the
// model's reply into proposed changes and applies accepted changes back onto
// the configuration.
//
// The package never talks to the network; a provider chain supplies the reply
// text. Everything here is safe to call with arbitrary model output.
package assistant

import (
	"errors"
	"fmt"

	"github.com/germanamz/karman/pkg/simconfig"
)

// ErrNoJSON is reported in a ParseOutcome when the reply contains no JSON
// object at all.
var ErrNoJSON = errors.New("assistant: no JSON object located")

// NoMessage is substituted when the reply object has no "message" string.
const NoMessage = "(no explanation provided)"

// ConfigReader is the read side of the configuration store.
type ConfigReader interface {
	CurrentValue(name string) string
}

// ConfigStore is the configuration store the applier writes into.
type ConfigStore interface {
	ConfigReader
	SetValue(name string, v any) error
}

// ProposedChange is a parsed but not yet applied edit to one field.
type ProposedChange struct {
	Field    string         `json:"field"`
	Label    string         `json:"label"`
	OldValue string         `json:"old_value"`
	NewValue string         `json:"new_value"`
	Kind     simconfig.Kind `json:"-"`
}

// String renders the change as "Label (field): old → new".
func (c ProposedChange) String() string {
	return fmt.Sprintf("%s (%s): %s → %s", c.Label, c.Field, c.OldValue, c.NewValue)
}

// ParseOutcome is the structured result of one assistant reply.
type ParseOutcome struct {
	// Succeeded is false only when no JSON object could be located or the
	// parser failed internally. Message then holds the raw reply.
	Succeeded     bool
	Message       string
	Changes       []ProposedChange
	FailureDetail string
	Err           error
}

// Failed builds an unsuccessful outcome that shows the raw reply.
func Failed(raw string, err error) ParseOutcome {
	return ParseOutcome{
		Message:       raw,
		FailureDetail: err.Error(),
		Err:           err,
	}
}
