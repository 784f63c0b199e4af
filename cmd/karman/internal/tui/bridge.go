package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/germanamz/karman/pkg/assistant"
	"github.com/germanamz/karman/pkg/engine"
)

// sender is the part of tea.Program the bridge uses.
type sender interface {
	Send(msg tea.Msg)
}

// startBridge converts engine events of one session into bubbletea messages.
// The goroutine only calls p.Send and never touches model state. The
// returned stop function cancels the bridge and waits for it to exit.
func startBridge(ctx context.Context, p sender, events *engine.EventBus, sessionID string) func() {
	ctx, cancel := context.WithCancel(ctx)
	sub := events.Subscribe(64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer events.Unsubscribe(sub)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				if sessionID != "" && ev.SessionID != sessionID {
					continue
				}
				switch ev.Kind {
				case engine.EventTurnEnd:
					p.Send(usageRefreshMsg{})
				case engine.EventChangesApplied:
					applied, _ := ev.Data.([]assistant.ProposedChange)
					p.Send(changesAppliedMsg{count: len(applied)})
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
