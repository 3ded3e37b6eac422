package connection

import "fmt"

// State represents the connection state.
type State uint8

const (
	// StateNone indicates nothing is running.
	StateNone State = iota

	// StateListening indicates the listeners are accepting links.
	StateListening

	// StateConnecting indicates a connect attempt is in progress.
	StateConnecting

	// StateConnected indicates a link is established and the pump runs.
	StateConnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateListening:
		return "LISTENING"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Description returns a title suitable for showing the state to a user.
func (s State) Description() string {
	switch s {
	case StateNone:
		return "Doing nothing"
	case StateListening:
		return "Listening"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	default:
		return fmt.Sprintf("Unknown state under index %d", uint8(s))
	}
}
