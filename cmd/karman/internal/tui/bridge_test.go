package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/germanamz/karman/pkg/assistant"
	"github.com/germanamz/karman/pkg/engine"
)

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func receive(t *testing.T, c chanSender) tea.Msg {
	t.Helper()

	select {
	case msg := <-c:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message forwarded")
		return nil
	}
}

func TestBridge_ForwardsSessionEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := engine.NewEventBus()
	out := make(chanSender, 8)
	stop := startBridge(context.Background(), out, bus, "s1")
	defer stop()

	bus.Publish(engine.Event{Kind: engine.EventTurnStart, SessionID: "s1"})
	bus.Publish(engine.Event{Kind: engine.EventTurnEnd, SessionID: "other"})
	bus.Publish(engine.Event{Kind: engine.EventTurnEnd, SessionID: "s1"})
	bus.Publish(engine.Event{
		Kind:      engine.EventChangesApplied,
		SessionID: "s1",
		Data:      []assistant.ProposedChange{{Field: "endTime"}, {Field: "density"}},
	})

	assert.Equal(t, usageRefreshMsg{}, receive(t, out))
	assert.Equal(t, changesAppliedMsg{count: 2}, receive(t, out))
}

func TestBridge_StopUnsubscribes(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := engine.NewEventBus()
	out := make(chanSender, 1)
	stop := startBridge(context.Background(), out, bus, "")
	stop()

	bus.Publish(engine.Event{Kind: engine.EventTurnEnd})
	select {
	case msg := <-out:
		require.Failf(t, "message after stop", "%#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
