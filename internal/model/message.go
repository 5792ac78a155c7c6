package model

import "time"

// Role tags who authored a message.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry sent to a model.
type Message struct {
	Role    Role
	Content string
}

// ChatMessage is an entry in the visible conversation transcript.
type ChatMessage struct {
	CreatedAt time.Time
	ID        string
	Text      string
	Role      Role
}
