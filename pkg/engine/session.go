package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/germanamz/karman/pkg/assistant"
	"github.com/germanamz/karman/pkg/modeladapter/usage"
	"github.com/germanamz/karman/pkg/providers/deepseek"
	"github.com/germanamz/karman/pkg/providers/fallback"
	"github.com/germanamz/karman/pkg/providers/qwen"
)

// ErrBusy is returned when a turn is already in flight on the session.
var ErrBusy = errors.New("engine: a request is already in progress")

// ErrTurnPanicked wraps a panic recovered from a turn.
var ErrTurnPanicked = errors.New("engine: turn panicked")

// chatter is the part of fallback.Chain a Session uses.
type chatter interface {
	Chat(ctx context.Context, user, system string) (fallback.Reply, error)
}

// TurnResult is the outcome of one user request.
type TurnResult struct {
	ID        uuid.UUID
	SessionID string
	Request   string
	Outcome   assistant.ParseOutcome
	Provider  string
	Attempts  int
	Usage     usage.TokenCount
	Duration  time.Duration
	// Err is fallback.ErrNoCredentials, a *fallback.AllProvidersFailedError,
	// ErrTurnPanicked or nil. The parse outcome never sets it.
	Err error
}

// Session runs requests against one configuration store. Only one turn may
// be in flight at a time, and accepted changes are written under the same
// guard so a write never races an outstanding turn. Every store access goes
// through storeMu: turns and View read, applies write.
type Session struct {
	id     string
	store  assistant.ConfigStore
	chat   chatter
	parser assistant.ReplyParser
	events *EventBus
	logger *slog.Logger

	mu     sync.Mutex
	active bool

	storeMu sync.RWMutex
}

func newSession(id string, store assistant.ConfigStore, chat chatter, parser assistant.ReplyParser, events *EventBus, logger *slog.Logger) *Session {
	return &Session{
		id:     id,
		store:  store,
		chat:   chat,
		parser: parser,
		events: events,
		logger: logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// View runs fn with read access to the store. fn must not retain r.
func (s *Session) View(fn func(r assistant.ConfigReader)) {
	s.storeMu.RLock()
	defer s.storeMu.RUnlock()

	fn(s.store)
}

// Busy reports whether a turn is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// Turn builds the prompt from the store, sends it with text through the
// provider chain and parses the reply. Provider failures are reported in the
// result, not as an error; the error is ErrBusy when another turn is active.
func (s *Session) Turn(ctx context.Context, text string) (TurnResult, error) {
	if err := s.acquire(); err != nil {
		return TurnResult{}, err
	}

	return s.runAndRelease(ctx, text), nil
}

// Submit starts a turn in the background. The returned channel delivers
// exactly one result and is then closed. The session is free again by the
// time the result is readable.
func (s *Session) Submit(ctx context.Context, text string) (<-chan TurnResult, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}

	ch := make(chan TurnResult, 1)
	go func() {
		defer close(ch)
		ch <- s.runAndRelease(ctx, text)
	}()

	return ch, nil
}

// ApplyAccepted writes changes the user accepted into the store and returns
// the ones that could not be written.
func (s *Session) ApplyAccepted(changes []assistant.ProposedChange) ([]assistant.Skipped, error) {
	return s.apply(changes, nil)
}

// apply writes changes under the store lock. afterApply, when set and at
// least one change was written, runs before the lock is released; its error
// is returned along with the skipped changes.
func (s *Session) apply(changes []assistant.ProposedChange, afterApply func() error) ([]assistant.Skipped, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	skipped, err := func() ([]assistant.Skipped, error) {
		s.storeMu.Lock()
		defer s.storeMu.Unlock()

		skipped := assistant.Apply(s.store, changes, s.logger)
		if afterApply != nil && len(skipped) < len(changes) {
			return skipped, afterApply()
		}
		return skipped, nil
	}()

	applied := Applied(changes, skipped)
	s.events.Publish(Event{
		Kind:      EventChangesApplied,
		SessionID: s.id,
		Timestamp: time.Now(),
		Data:      applied,
	})
	s.logger.Info("engine: changes applied", "accepted", len(changes), "skipped", len(skipped))

	return skipped, err
}

// Applied returns the changes that are not in skipped, in order.
func Applied(changes []assistant.ProposedChange, skipped []assistant.Skipped) []assistant.ProposedChange {
	rejected := make(map[int]bool, len(skipped))
	for _, sk := range skipped {
		for i, c := range changes {
			if !rejected[i] && c == sk.Change {
				rejected[i] = true
				break
			}
		}
	}

	out := make([]assistant.ProposedChange, 0, len(changes)-len(rejected))
	for i, c := range changes {
		if !rejected[i] {
			out = append(out, c)
		}
	}
	return out
}

// runAndRelease runs a turn and frees the session, turning a panic into a
// failed result.
func (s *Session) runAndRelease(ctx context.Context, text string) (res TurnResult) {
	defer s.release()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := fmt.Errorf("%w: %v", ErrTurnPanicked, r)
		res = TurnResult{
			ID:        uuid.New(),
			SessionID: s.id,
			Request:   text,
			Outcome: assistant.ParseOutcome{
				Message:       failureMessage(err),
				FailureDetail: err.Error(),
				Err:           err,
			},
			Err: err,
		}
		s.events.Publish(Event{
			Kind:      EventError,
			SessionID: s.id,
			TurnID:    res.ID.String(),
			Timestamp: time.Now(),
			Data:      err,
		})
		s.logger.Error("engine: turn panicked", "panic", r)
	}()

	return s.run(ctx, text)
}

func (s *Session) run(ctx context.Context, text string) TurnResult {
	res := TurnResult{
		ID:        uuid.New(),
		SessionID: s.id,
		Request:   text,
	}
	turnID := res.ID.String()
	start := time.Now()

	s.events.Publish(Event{
		Kind:      EventTurnStart,
		SessionID: s.id,
		TurnID:    turnID,
		Timestamp: start,
		Data:      text,
	})

	var system string
	s.View(func(r assistant.ConfigReader) { system = assistant.BuildSystemPrompt(r) })
	reply, err := s.chat.Chat(ctx, text, system)
	if err != nil {
		res.Err = err
		res.Outcome = assistant.ParseOutcome{
			Message:       failureMessage(err),
			FailureDetail: err.Error(),
			Err:           err,
		}
		s.events.Publish(Event{
			Kind:      EventError,
			SessionID: s.id,
			TurnID:    turnID,
			Timestamp: time.Now(),
			Data:      err,
		})
		s.logger.Warn("engine: turn failed", "turn", turnID, "error", err)
	} else {
		res.Provider = reply.Provider
		res.Attempts = reply.Attempts
		res.Usage = reply.Usage
		s.View(func(r assistant.ConfigReader) { res.Outcome = s.parser.Parse(reply.Text, r) })
		if !res.Outcome.Succeeded {
			s.logger.Warn("engine: reply not understood", "turn", turnID, "error", res.Outcome.FailureDetail)
		}
	}
	res.Duration = time.Since(start)

	s.events.Publish(Event{
		Kind:      EventTurnEnd,
		SessionID: s.id,
		TurnID:    turnID,
		Timestamp: time.Now(),
		Data:      res,
	})
	s.logger.Info("engine: turn finished",
		"turn", turnID,
		"provider", res.Provider,
		"changes", len(res.Outcome.Changes),
		"duration", res.Duration,
	)

	return res
}

// failureMessage is what the user sees when no provider answered.
func failureMessage(err error) string {
	if errors.Is(err, fallback.ErrNoCredentials) {
		keys := append(append([]string(nil), qwen.EnvKeys...), deepseek.EnvKeys...)
		return "No model provider is configured. Set one of " + strings.Join(keys, ", ") +
			" in the environment or in a .env file, then restart."
	}
	return "Request failed: " + err.Error()
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return ErrBusy
	}
	s.active = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = false
}
