package assistant

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/penny/internal/model"
)

// Conversation is the visible transcript, most recent message first.
// It is safe for concurrent use.
type Conversation struct {
	now      func() time.Time
	messages []model.ChatMessage
	mu       sync.RWMutex
}

// NewConversation creates an empty transcript.
func NewConversation() *Conversation {
	return &Conversation{now: time.Now}
}

// Prepend adds a message at the front of the transcript.
func (c *Conversation) Prepend(role model.Role, text string) model.ChatMessage {
	msg := model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.messages = append([]model.ChatMessage{msg}, c.messages...)
	c.mu.Unlock()
	return msg
}

// Messages returns a copy of the transcript, most recent first.
func (c *Conversation) Messages() []model.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.messages)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// History returns up to limit recent messages oldest first, ready to send to a
// model. A limit of zero or less returns everything.
func (c *Conversation) History(limit int) []model.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.messages)
	if limit > 0 && limit < n {
		n = limit
	}

	history := make([]model.Message, 0, n)
	for i := n - 1; i >= 0; i-- {
		msg := c.messages[i]
		history = append(history, model.Message{Role: msg.Role, Content: msg.Text})
	}
	return history
}

// Clear empties the transcript.
func (c *Conversation) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}
