// Package tui provides the interactive chat screen.
package tui

import (
	"context"
	"strings"

	"github.com/Veraticus/penny/internal/assistant"
	"github.com/Veraticus/penny/internal/cli"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Session runs chat turns and exposes the transcript they build.
type Session interface {
	Turn(ctx context.Context, text string) (string, error)
	Chat(ctx context.Context, text string) (string, error)
	Conversation() *assistant.Conversation
}

// Model holds the chat screen state. Input is disabled while a turn runs.
type Model struct {
	ctx        context.Context //nolint:containedctx // see Config.Context
	session    Session
	states     <-chan assistant.State
	engine     EngineStatus
	lastErr    error
	keymap     KeyMap
	theme      Theme
	provider   string
	pending    string
	help       help.Model
	input      textinput.Model
	spinner    spinner.Model
	transcript viewport.Model
	state      assistant.State
	width      int
	height     int
	busy       bool
	quitting   bool
	altScreen  bool
}

// New creates a chat screen backed by session.
func New(session Session, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	input := textinput.New()
	input.Placeholder = "Coffee 4.50, or: how much did I spend this week?"
	input.Prompt = "› "
	input.CharLimit = 500
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = cfg.Theme.Title.UnsetBold()

	m := Model{
		ctx:        cfg.Context,
		session:    session,
		states:     cfg.States,
		keymap:     DefaultKeyMap(),
		theme:      cfg.Theme,
		provider:   cfg.Provider,
		engine:     cfg.Engine,
		help:       help.New(),
		input:      input,
		spinner:    s,
		transcript: viewport.New(cfg.Width, cfg.Height),
		state:      assistant.StateIdle,
		width:      cfg.Width,
		height:     cfg.Height,
		altScreen:  cfg.AltScreen,
	}
	m.resize()
	m.refreshTranscript()
	return m
}

// Init starts the cursor blink and the state feed.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForState())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshTranscript()
		return m, nil

	case replyMsg:
		m.busy = false
		m.pending = ""
		m.lastErr = msg.err
		m.refreshTranscript()
		return m, m.input.Focus()

	case stateMsg:
		// The reply message ends the turn; keep the last working label until then.
		if !msg.state.Terminal() {
			m.state = msg.state
		}
		return m, m.waitForState()

	case statesClosedMsg:
		m.states = nil
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keymap.ClearScreen):
		if m.busy {
			return m, nil
		}
		m.session.Conversation().Clear()
		m.lastErr = nil
		m.refreshTranscript()
		return m, tea.ClearScreen

	case key.Matches(msg, m.keymap.ScrollUp), key.Matches(msg, m.keymap.ScrollDown):
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keymap.Send):
		return m.send()
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) send() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	m.busy = true
	m.lastErr = nil
	m.pending = text
	m.state = assistant.StateIdle
	m.input.Reset()
	m.input.Blur()
	m.refreshTranscript()

	return m, tea.Batch(m.spinner.Tick, m.runTurn(text))
}

// runTurn runs one message through the session off the UI goroutine.
func (m Model) runTurn(text string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		var (
			reply string
			err   error
		)
		if chatText, ok := cli.ChatText(text); ok {
			reply, err = session.Chat(ctx, chatText)
		} else {
			reply, err = session.Turn(ctx, text)
		}
		return replyMsg{reply: reply, err: err}
	}
}

func (m Model) waitForState() tea.Cmd {
	states := m.states
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		state, ok := <-states
		if !ok {
			return statesClosedMsg{}
		}
		return stateMsg{state: state}
	}
}

// Busy reports whether a turn is in flight.
func (m Model) Busy() bool {
	return m.busy
}
