package assistant

// State is a step of a single turn.
type State int

// Turn states. Done and Errored are terminal.
const (
	StateIdle State = iota
	StateClassifying
	StateAddingTransaction
	StateGeneratingQuery
	StateExecutingQuery
	StateReporting
	StateNoData
	StateChatting
	StateDone
	StateErrored
)

var stateNames = map[State]string{
	StateIdle:              "idle",
	StateClassifying:       "classifying",
	StateAddingTransaction: "adding transaction",
	StateGeneratingQuery:   "generating query",
	StateExecutingQuery:    "executing query",
	StateReporting:         "reporting",
	StateNoData:            "no data",
	StateChatting:          "chatting",
	StateDone:              "done",
	StateErrored:           "errored",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether a turn has finished in s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateErrored
}

// Intent is what a user message asks for.
type Intent string

// Intents.
const (
	IntentAdd    Intent = "add"
	IntentReport Intent = "report"
)
