package tui

import "github.com/germanamz/karman/pkg/engine"

// inputSubmitMsg carries the text the user submitted from the input box.
type inputSubmitMsg struct {
	text string
}

// turnDoneMsg delivers the result of a background turn.
type turnDoneMsg struct {
	res engine.TurnResult
}

// usageRefreshMsg asks the model to re-read token usage after a turn.
type usageRefreshMsg struct{}

// changesAppliedMsg reports how many changes a session wrote.
type changesAppliedMsg struct {
	count int
}

// fileChangedMsg reports that the configuration file changed on disk.
type fileChangedMsg struct{}

// initDrainMsg fires after a short delay so that stale terminal responses
// (e.g. OSC 11 background-color replies) are discarded before focusing input.
type initDrainMsg struct{}
