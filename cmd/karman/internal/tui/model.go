// Package tui is the interactive chat frontend. Requests run in the
// background through the session; the input box stays disabled until the
// turn resolves, and proposed changes wait for review before they are
// applied.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/germanamz/karman/cmd/karman/internal/editor"
	"github.com/germanamz/karman/cmd/karman/internal/preview"
	"github.com/germanamz/karman/cmd/karman/internal/watch"
	"github.com/germanamz/karman/pkg/assistant"
	"github.com/germanamz/karman/pkg/engine"
	"github.com/germanamz/karman/pkg/modeladapter/usage"
	"github.com/germanamz/karman/pkg/simconfig"
)

// Session is the part of engine.Session the chat frontend drives.
type Session interface {
	Submit(ctx context.Context, text string) (<-chan engine.TurnResult, error)
	ApplyAccepted(changes []assistant.ProposedChange) ([]assistant.Skipped, error)
}

var _ Session = (*engine.Session)(nil)

// Options configure the chat model.
type Options struct {
	Session Session
	// Config is the store the session edits. It is read for /show and /diff.
	Config *simconfig.Config
	Path   string
	// Save persists Config. Nil disables /save.
	Save func() error
	// Load reads the file at Path again. Nil disables /reload and watching.
	Load      func() (*simconfig.Config, error)
	Available bool
	Providers []string
	Logger    *slog.Logger
	// Events, when set, feeds the status bar. Only events of SessionID are
	// used; an empty SessionID accepts all.
	Events    *engine.EventBus
	SessionID string
	// Usage returns the token usage per provider, typically Engine.Usage.
	Usage func() map[string]usage.TokenCount
}

type appState int

const (
	stateIdle appState = iota
	stateProcessing
)

// Model is the root bubbletea model.
type Model struct {
	ctx       context.Context
	sess      Session
	cfg       *simconfig.Config
	path      string
	save      func() error
	load      func() (*simconfig.Config, error)
	available bool
	providers []string

	input   inputModel
	spinner spinner.Model
	state   appState
	blocks  []string
	pending []assistant.ProposedChange
	dirty   bool
	// stale is set when the file changed on disk but could not be reloaded
	// without losing work.
	stale bool
	// quitArmed is set after a quit request was refused because of unsaved
	// changes; the next one exits.
	quitArmed bool

	lastProvider string
	lastDuration time.Duration
	usage        func() map[string]usage.TokenCount
	tokens       int
	applied      int
	width        int
	height       int
}

// New creates the chat model.
func New(ctx context.Context, opts Options) Model {
	m := Model{
		ctx:       ctx,
		sess:      opts.Session,
		cfg:       opts.Config,
		path:      opts.Path,
		save:      opts.Save,
		load:      opts.Load,
		available: opts.Available,
		providers: opts.Providers,
		usage:     opts.Usage,
		input:     newInput(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(spinnerStyle)),
	}
	if !m.available {
		m.addError("No model provider is configured. Requests will fail until a key is set; /show, /save and the form editor still work.")
	}
	return m
}

func (m Model) Init() tea.Cmd {
	// Delay focusing the input so that stale terminal escape-sequence
	// responses are drained first.
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return initDrainMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		initMarkdownRenderer(m.width - 4)
		m.input.setWidth(m.width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case initDrainMsg:
		return m, m.input.enable()

	case inputSubmitMsg:
		return m.handleSubmit(msg.text)

	case turnDoneMsg:
		return m.handleTurn(msg.res)

	case usageRefreshMsg:
		m.refreshUsage()
		return m, nil

	case changesAppliedMsg:
		m.applied += msg.count
		return m, nil

	case fileChangedMsg:
		m.fileChanged()
		return m, nil

	case spinner.TickMsg:
		if m.state != stateProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == stateIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyCtrlA:
		m.applyPending(nil)
		return m, nil
	case tea.KeyCtrlD:
		m.discardPending()
		return m, nil
	case tea.KeyCtrlS:
		m.saveConfig()
		return m, nil
	}

	if m.state == stateIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSubmit(text string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(text, "/") {
		return m.handleCommand(text)
	}
	m.quitArmed = false

	if m.state == stateProcessing {
		m.addError(engine.ErrBusy.Error())
		return m, nil
	}

	ch, err := m.sess.Submit(m.ctx, text)
	if err != nil {
		m.addError(err.Error())
		return m, nil
	}

	m.addBlock(userPrefixStyle.Render("you> ") + text)
	if len(m.pending) > 0 {
		m.addBlock(dimStyle.Render("Previous proposal discarded."))
		m.pending = nil
	}

	m.state = stateProcessing
	m.input.disable()

	wait := func() tea.Msg {
		return turnDoneMsg{res: <-ch}
	}
	return m, tea.Batch(wait, m.spinner.Tick)
}

func (m Model) handleTurn(res engine.TurnResult) (tea.Model, tea.Cmd) {
	m.state = stateIdle
	focus := m.input.enable()
	m.lastProvider = res.Provider
	m.lastDuration = res.Duration

	out := res.Outcome
	if res.Err != nil || !out.Succeeded {
		text := out.Message
		if out.FailureDetail != "" && res.Err == nil {
			text += "\n\n" + dimStyle.Render("("+out.FailureDetail+")")
		}
		m.addBlock(errorBlockStyle.Render(text))
		return m, focus
	}

	m.addBlock(answerPrefixStyle.Render("karman> ") + renderMarkdown(out.Message))
	m.pending = out.Changes
	if len(m.pending) == 0 {
		m.addBlock(dimStyle.Render("No changes proposed."))
	} else {
		m.addBlock(m.pendingView())
	}
	return m, focus
}

func (m *Model) pendingView() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Proposed changes (%d)", len(m.pending))))
	for i, line := range preview.Lines(m.pending) {
		b.WriteString("\n  ")
		b.WriteString(dimStyle.Render(strconv.Itoa(i+1) + "."))
		b.WriteString(" ")
		b.WriteString(changeStyle.Render(line))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("/apply or Ctrl+A to accept all, /apply 1 3 to pick, /diff to preview, /discard or Ctrl+D to drop"))
	return b.String()
}

func (m Model) handleCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	name, args := fields[0], fields[1:]

	if name != "/quit" && name != "/exit" {
		m.quitArmed = false
	}

	switch name {
	case "/quit", "/exit":
		if m.dirty && !m.quitArmed {
			m.quitArmed = true
			m.addError("There are unsaved changes. /save first, or /quit again to discard them.")
			return m, nil
		}
		return m, tea.Quit
	case "/help":
		m.addBlock(helpText())
	case "/show":
		m.showConfig(strings.Join(args, " "))
	case "/apply":
		idx, err := parseIndices(args)
		if err != nil {
			m.addError(err.Error())
			return m, nil
		}
		m.applyPending(idx)
	case "/discard":
		m.discardPending()
	case "/diff":
		m.showDiff()
	case "/save":
		m.saveConfig()
	case "/reset":
		if m.state == stateProcessing {
			m.addError(engine.ErrBusy.Error())
			return m, nil
		}
		m.proposeDefaults()
	case "/reload":
		if m.state == stateProcessing {
			m.addError(engine.ErrBusy.Error())
			return m, nil
		}
		m.reload(true)
	default:
		m.addError(fmt.Sprintf("Unknown command %s. Type /help for the list.", name))
	}
	return m, nil
}

// applyPending applies the pending changes with the given 1-based indices,
// or all of them when idx is empty. Unselected changes are dropped.
func (m *Model) applyPending(idx []int) {
	if m.state == stateProcessing {
		m.addError(engine.ErrBusy.Error())
		return
	}
	if len(m.pending) == 0 {
		m.addBlock(dimStyle.Render("Nothing to apply."))
		return
	}

	selected := m.pending
	if len(idx) > 0 {
		selected = make([]assistant.ProposedChange, 0, len(idx))
		for _, i := range idx {
			if i < 1 || i > len(m.pending) {
				m.addError(fmt.Sprintf("No proposed change %d; there are %d.", i, len(m.pending)))
				return
			}
			selected = append(selected, m.pending[i-1])
		}
	}

	skipped, err := m.sess.ApplyAccepted(selected)
	if err != nil {
		m.addError(err.Error())
		return
	}
	m.pending = nil

	applied := len(selected) - len(skipped)
	if applied > 0 {
		m.dirty = true
	}

	var b strings.Builder
	b.WriteString(successStyle.Render(fmt.Sprintf("Applied %d of %d change(s).", applied, len(selected))))
	for _, line := range preview.Skipped(skipped) {
		b.WriteString("\n  ")
		b.WriteString(dimStyle.Render("skipped " + line))
	}
	m.addBlock(b.String())
}

func (m *Model) discardPending() {
	if len(m.pending) == 0 {
		return
	}
	m.pending = nil
	m.addBlock(dimStyle.Render("Proposal discarded."))
}

func (m *Model) saveConfig() {
	if m.save == nil {
		m.addError("Saving is not available.")
		return
	}
	if err := m.save(); err != nil {
		m.addError(err.Error())
		return
	}
	m.dirty = false
	m.quitArmed = false
	m.addBlock(successStyle.Render("Saved " + m.path + "."))
}

// proposeDefaults turns the differences from the default configuration into
// a proposal, so a reset goes through the same review as assistant changes.
func (m *Model) proposeDefaults() {
	changes := editor.Changes(m.cfg, simconfig.Default())
	if len(changes) == 0 {
		m.addBlock(dimStyle.Render("The configuration already matches the defaults."))
		return
	}
	if len(m.pending) > 0 {
		m.addBlock(dimStyle.Render("Previous proposal discarded."))
	}
	m.pending = changes
	m.addBlock(sectionStyle.Render("Reset to defaults") + "\n" + m.pendingView())
}

func (m *Model) refreshUsage() {
	if m.usage == nil {
		return
	}
	total := 0
	for _, tc := range m.usage() {
		total += tc.Total()
	}
	m.tokens = total
}

// fileChanged reloads the file when nothing would be lost, and otherwise
// marks the configuration stale.
func (m *Model) fileChanged() {
	if m.load == nil {
		return
	}
	if m.state == stateProcessing || m.dirty || len(m.pending) > 0 {
		if !m.stale {
			m.stale = true
			m.addError(m.path + " changed on disk. /reload to load it; unapplied and unsaved changes will be lost.")
		}
		return
	}
	m.reload(false)
}

// reload replaces the configuration with the file contents. When explicit is
// false an unchanged file is ignored silently.
func (m *Model) reload(explicit bool) {
	if m.load == nil {
		m.addError("Reloading is not available.")
		return
	}
	loaded, err := m.load()
	if err != nil {
		m.addError(err.Error())
		return
	}
	m.stale = false

	if *loaded == *m.cfg {
		if explicit {
			m.addBlock(dimStyle.Render(m.path + " is unchanged."))
		}
		return
	}

	*m.cfg = *loaded
	m.pending = nil
	m.dirty = false
	m.quitArmed = false
	m.addBlock(successStyle.Render("Reloaded " + m.path + "."))
}

func (m *Model) showConfig(section string) {
	rows, err := preview.Rows(m.cfg, section)
	if err != nil {
		m.addError(err.Error())
		return
	}

	width := preview.LabelWidth(rows)
	var b strings.Builder
	var current simconfig.Section
	for i, r := range rows {
		if r.Section != current {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(sectionStyle.Render(string(r.Section)))
			b.WriteString("\n")
			current = r.Section
		}
		b.WriteString("  ")
		b.WriteString(r.Format(width))
		b.WriteString("\n")
	}
	m.addBlock(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) showDiff() {
	if len(m.pending) == 0 {
		m.addBlock(dimStyle.Render("Nothing to preview."))
		return
	}
	next, _ := preview.Simulate(m.cfg, m.pending)
	diff, err := preview.Diff(m.path, m.cfg, next)
	if err != nil {
		m.addError(err.Error())
		return
	}
	if diff == "" {
		m.addBlock(dimStyle.Render("The proposal does not change the file."))
		return
	}
	m.addBlock(strings.TrimRight(diff, "\n"))
}

func (m *Model) addBlock(s string) {
	m.blocks = append(m.blocks, s)
}

func (m *Model) addError(s string) {
	m.addBlock(errorBlockStyle.Render(s))
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var activity string
	if m.state == stateProcessing {
		activity = m.spinner.View() + dimStyle.Render(" Asking the model...")
	}

	input := m.input.View()
	status := m.statusView()

	reserved := lipgloss.Height(input) + lipgloss.Height(status)
	if activity != "" {
		reserved += lipgloss.Height(activity)
	}
	chat := tail(strings.Join(m.blocks, "\n\n"), max(m.height-reserved, 1))

	parts := []string{chat}
	if activity != "" {
		parts = append(parts, activity)
	}
	parts = append(parts, input, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) statusView() string {
	var parts []string
	if m.available {
		parts = append(parts, "providers: "+strings.Join(m.providers, " → "))
	} else {
		parts = append(parts, "assistant unavailable")
	}
	if m.lastProvider != "" {
		parts = append(parts, fmt.Sprintf("last: %s %s", m.lastProvider, m.lastDuration.Round(100*time.Millisecond)))
	}
	if m.tokens > 0 {
		parts = append(parts, fmt.Sprintf("%d tokens", m.tokens))
	}
	if m.applied > 0 {
		parts = append(parts, fmt.Sprintf("%d applied", m.applied))
	}
	if n := len(m.pending); n > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", n))
	}
	if m.dirty {
		parts = append(parts, "unsaved")
	}
	if m.stale {
		parts = append(parts, "changed on disk")
	}
	return statusStyle.Render(" " + m.path + " · " + strings.Join(parts, " · "))
}

// tail returns the last n lines of s, padded at the top to exactly n lines.
func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for len(lines) < n {
		lines = append([]string{""}, lines...)
	}
	return strings.Join(lines, "\n")
}

func parseIndices(args []string) ([]int, error) {
	idx := make([]int, 0, len(args))
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, errors.New("usage: /apply [number ...]")
			}
			idx = append(idx, n)
		}
	}
	return idx, nil
}

func helpText() string {
	return dimStyle.Render(
		"Commands:\n" +
			"  /apply [n ...]  Apply all proposed changes, or only the numbered ones\n" +
			"  /discard        Drop the current proposal\n" +
			"  /diff           Preview the proposal as a file diff\n" +
			"  /show [section] List the configuration\n" +
			"  /save           Write the configuration file\n" +
			"  /reload         Read the configuration file again\n" +
			"  /reset          Propose restoring every default value\n" +
			"  /help           Show this help message\n" +
			"  /quit           Exit\n\n" +
			"Shortcuts:\n" +
			"  Enter           Submit request\n" +
			"  Alt+Enter       New line\n" +
			"  Ctrl+A          Apply proposal\n" +
			"  Ctrl+D          Discard proposal\n" +
			"  Ctrl+S          Save\n" +
			"  Ctrl+C          Exit",
	)
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.Events != nil {
		stop := startBridge(ctx, p, opts.Events, opts.SessionID)
		defer stop()
	}

	if opts.Load != nil && opts.Path != "" {
		w, err := watch.File(ctx, opts.Path, 0, func() { p.Send(fileChangedMsg{}) }, opts.Logger)
		if err != nil {
			logger := opts.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("tui: config file is not watched", "path", opts.Path, "error", err)
		} else {
			defer func() { _ = w.Close() }()
		}
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
