package tui

import "github.com/Veraticus/penny/internal/assistant"

// replyMsg carries the outcome of a finished turn.
type replyMsg struct {
	err   error
	reply string
}

// stateMsg relays a router state change.
type stateMsg struct {
	state assistant.State
}

// statesClosedMsg signals that the state feed ended.
type statesClosedMsg struct{}
