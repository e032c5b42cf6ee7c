// ABOUTME: Lifecycle state type for supervised agents.
// ABOUTME: Defines the five-state machine and its validity helpers.

package supervisor

// State represents a supervised agent's lifecycle state.
type State string

// Canonical lifecycle states. StateStopped is the initial state.
const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateError    State = "error"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsValid reports whether s is a recognized lifecycle state.
func (s State) IsValid() bool {
	switch s {
	case StateStopped, StateStarting, StateRunning, StateStopping, StateError:
		return true
	default:
		return false
	}
}

// CanStart reports whether Start may be attempted from this state.
// Only a fully stopped agent may be started; an agent in the error state
// must be explicitly recovered by the caller first.
func (s State) CanStart() bool {
	return s == StateStopped
}
