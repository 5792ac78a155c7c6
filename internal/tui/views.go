package tui

import (
	"path/filepath"
	"strings"

	"github.com/Veraticus/penny/internal/assistant"
	"github.com/Veraticus/penny/internal/cli"
	"github.com/Veraticus/penny/internal/model"
	"github.com/Veraticus/penny/internal/provider"
	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight  = 2
	statusHeight  = 1
	inputHeight   = 2
	frameSize     = 2
	minTranscript = 3
)

var stateLabels = map[assistant.State]string{
	assistant.StateClassifying:       "Working out what you meant",
	assistant.StateAddingTransaction: "Saving your transaction",
	assistant.StateGeneratingQuery:   "Writing a query",
	assistant.StateExecutingQuery:    "Looking through your spending",
	assistant.StateReporting:         "Summarizing",
	assistant.StateChatting:          "Thinking",
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.theme.Transcript.Render(m.transcript.View()),
		m.renderStatus(),
		m.theme.Input.Render(m.input.View()),
		m.help.View(m.keymap),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render(cli.PennyIcon + " penny")
	if m.provider != "" {
		title += "  " + m.theme.Subtitle.Render("provider: "+m.provider)
	}
	if label := m.engineLabel(); label != "" {
		title += "  " + m.theme.Subtitle.Render("model: "+label)
	}
	return title + "\n"
}

// engineLabel describes the local model, or returns "" for remote providers.
func (m Model) engineLabel() string {
	if m.engine == nil || m.provider != provider.Local {
		return ""
	}
	status := m.engine.Status()
	switch {
	case status.Loading:
		return "loading"
	case status.Loaded:
		return filepath.Base(status.ModelPath)
	default:
		return "not loaded"
	}
}

func (m Model) renderStatus() string {
	switch {
	case m.busy:
		return m.spinner.View() + " " + m.theme.StatusPending.Render(StateLabel(m.state)+"…")
	case m.lastErr != nil:
		return m.theme.StatusError.Render(cli.ErrorIcon + " last message failed")
	default:
		return ""
	}
}

// StateLabel describes a router state for the status line.
func StateLabel(state assistant.State) string {
	if label, ok := stateLabels[state]; ok {
		return label
	}
	return "Thinking"
}

// resize fits the transcript and input to the terminal.
func (m *Model) resize() {
	width := max(m.width-frameSize-2, 10)
	helpHeight := lipgloss.Height(m.help.View(m.keymap))

	m.transcript.Width = width
	m.transcript.Height = max(m.height-headerHeight-statusHeight-inputHeight-helpHeight-frameSize, minTranscript)
	m.input.Width = max(m.width-lipgloss.Width(m.input.Prompt)-1, 10)
	m.help.Width = m.width
}

// refreshTranscript renders the conversation oldest first and scrolls to the end.
func (m *Model) refreshTranscript() {
	var messages []model.ChatMessage
	if m.session != nil {
		messages = m.session.Conversation().Messages()
	}

	wrap := lipgloss.NewStyle().Width(m.transcript.Width)
	blocks := make([]string, 0, len(messages)+1)
	for i := len(messages) - 1; i >= 0; i-- {
		blocks = append(blocks, wrap.Render(m.renderMessage(messages[i])))
	}
	if m.pending != "" {
		blocks = append(blocks, wrap.Render(m.renderMessage(model.ChatMessage{Role: model.RoleUser, Text: m.pending})))
	}

	if len(blocks) == 0 {
		m.transcript.SetContent(m.theme.Subtitle.Render("Tell me what you spent, or ask about your spending. /chat <text> to just talk."))
		return
	}
	m.transcript.SetContent(strings.Join(blocks, "\n\n"))
	m.transcript.GotoBottom()
}

func (m Model) renderMessage(msg model.ChatMessage) string {
	if msg.Role == model.RoleUser {
		return m.theme.UserLabel.Render("you") + " " + msg.Text
	}
	return m.theme.AssistantText.Render(cli.RobotIcon + " " + msg.Text)
}
