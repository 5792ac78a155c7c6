package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Veraticus/penny/internal/assistant"
	"github.com/Veraticus/penny/internal/local"
	"github.com/Veraticus/penny/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession records messages the way the router does.
type fakeSession struct {
	err          error
	conversation *assistant.Conversation
	turns        []string
	chats        []string
	mu           sync.Mutex
}

func newFakeSession() *fakeSession {
	return &fakeSession{conversation: assistant.NewConversation()}
}

func (f *fakeSession) Turn(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	f.turns = append(f.turns, text)
	f.mu.Unlock()
	return f.reply(text, "Transaction added! Amount: $4.5 | Category: coffee")
}

func (f *fakeSession) Chat(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	f.chats = append(f.chats, text)
	f.mu.Unlock()
	return f.reply(text, "Hello!")
}

func (f *fakeSession) reply(text, reply string) (string, error) {
	f.conversation.Prepend(model.RoleUser, text)
	if f.err != nil {
		f.conversation.Prepend(model.RoleAssistant, f.err.Error())
		return "", f.err
	}
	f.conversation.Prepend(model.RoleAssistant, reply)
	return reply, nil
}

func (f *fakeSession) Conversation() *assistant.Conversation {
	return f.conversation
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func pressEnter(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func TestNew_Defaults(t *testing.T) {
	m := New(newFakeSession(), WithSize(100, 30), WithProvider("gemini"))

	assert.False(t, m.Busy())
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 30, m.height)
	assert.Equal(t, assistant.StateIdle, m.state)
	assert.Contains(t, m.View(), "provider: gemini")
	assert.Contains(t, m.View(), "Tell me what you spent")
}

type fakeEngine struct {
	mu     sync.Mutex
	status local.Status
}

func (f *fakeEngine) Status() local.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func TestHeader_EngineStatus(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		status   local.Status
		want     string
		absent   string
	}{
		{name: "loaded", provider: "local", status: local.Status{Loaded: true, ModelPath: "/models/qwen.gguf"}, want: "model: qwen.gguf"},
		{name: "loading", provider: "local", status: local.Status{Loading: true}, want: "model: loading"},
		{name: "not loaded", provider: "local", want: "model: not loaded"},
		{name: "remote provider", provider: "gemini", status: local.Status{Loaded: true}, absent: "model:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{status: tt.status}
			m := New(newFakeSession(), WithSize(100, 30), WithProvider(tt.provider), WithEngine(engine))
			if tt.want != "" {
				assert.Contains(t, m.View(), tt.want)
			}
			if tt.absent != "" {
				assert.NotContains(t, m.View(), tt.absent)
			}
		})
	}
}

func TestSend_DisablesInputUntilReply(t *testing.T) {
	session := newFakeSession()
	m := New(session, WithSize(100, 30))

	m = typeText(t, m, "coffee 4.50")
	assert.Equal(t, "coffee 4.50", m.input.Value())

	m, cmd := pressEnter(t, m)
	require.NotNil(t, cmd)
	assert.True(t, m.Busy())
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.transcript.View(), "coffee 4.50")

	// Typing and sending while busy are ignored.
	m = typeText(t, m, "second")
	assert.Empty(t, m.input.Value())
	m, cmd = pressEnter(t, m)
	assert.Nil(t, cmd)

	msg := m.runTurn("coffee 4.50")()
	updated, _ := m.Update(msg)
	m = updated.(Model)

	assert.False(t, m.Busy())
	assert.NoError(t, m.lastErr)
	assert.Equal(t, []string{"coffee 4.50"}, session.turns)
	assert.Contains(t, m.transcript.View(), "Transaction added!")

	m = typeText(t, m, "next")
	assert.Equal(t, "next", m.input.Value())
}

func TestSend_EmptyInputIgnored(t *testing.T) {
	m := New(newFakeSession())
	m = typeText(t, m, "   ")

	m, cmd := pressEnter(t, m)
	assert.Nil(t, cmd)
	assert.False(t, m.Busy())
}

func TestRunTurn_ChatCommand(t *testing.T) {
	session := newFakeSession()
	m := New(session)

	msg := m.runTurn("/chat hi there")()
	reply, ok := msg.(replyMsg)
	require.True(t, ok)
	assert.Equal(t, "Hello!", reply.reply)
	assert.Equal(t, []string{"hi there"}, session.chats)
	assert.Empty(t, session.turns)
}

func TestReply_ErrorShownInStatus(t *testing.T) {
	session := newFakeSession()
	session.err = errors.New("please set an API key for the selected provider")
	m := New(session, WithSize(100, 30))

	m = typeText(t, m, "coffee 4.50")
	m, _ = pressEnter(t, m)
	updated, _ := m.Update(m.runTurn("coffee 4.50")())
	m = updated.(Model)

	assert.False(t, m.Busy())
	require.Error(t, m.lastErr)
	assert.Contains(t, m.View(), "last message failed")
	assert.Contains(t, m.transcript.View(), "please set an API key")
}

func TestStateMessagesUpdateStatus(t *testing.T) {
	states := make(chan assistant.State, 1)
	m := New(newFakeSession(), WithStates(states), WithSize(100, 30))

	m = typeText(t, m, "how much this week?")
	m, _ = pressEnter(t, m)

	states <- assistant.StateGeneratingQuery
	msg := m.waitForState()()
	updated, cmd := m.Update(msg)
	m = updated.(Model)

	assert.Equal(t, assistant.StateGeneratingQuery, m.state)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Writing a query")

	states <- assistant.StateDone
	updated, _ = m.Update(m.waitForState()())
	m = updated.(Model)
	assert.Equal(t, assistant.StateGeneratingQuery, m.state)

	close(states)
	updated, _ = m.Update(m.waitForState()())
	m = updated.(Model)
	assert.Nil(t, m.waitForState())
}

func TestClearKey_EmptiesTranscript(t *testing.T) {
	session := newFakeSession()
	_, err := session.Turn(context.Background(), "20 snacks")
	require.NoError(t, err)

	m := New(session, WithSize(100, 30))
	require.NotContains(t, m.View(), "Tell me what you spent")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = updated.(Model)

	assert.NotNil(t, cmd)
	assert.Empty(t, session.Conversation().Messages())
	assert.Contains(t, m.View(), "Tell me what you spent")
}

func TestQuitKey(t *testing.T) {
	m := New(newFakeSession())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestWindowResize(t *testing.T) {
	m := New(newFakeSession())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	assert.Equal(t, 120, m.width)
	assert.Greater(t, m.transcript.Height, minTranscript)
	assert.Equal(t, 120-frameSize-2, m.transcript.Width)
}

func TestStateLabel(t *testing.T) {
	assert.Equal(t, "Saving your transaction", StateLabel(assistant.StateAddingTransaction))
	assert.Equal(t, "Thinking", StateLabel(assistant.StateDone))
}

func TestRun_RequiresSession(t *testing.T) {
	err := Run(context.Background(), nil)
	assert.Error(t, err)
}
