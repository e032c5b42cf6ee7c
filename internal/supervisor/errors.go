// ABOUTME: Error types for agent construction and lifecycle transitions.
// ABOUTME: Hook failures are wrapped so callers can unwrap the original cause.

package supervisor

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates an agent configuration failed validation.
// Construction fails entirely; no agent object is usable.
var ErrInvalidConfig = errors.New("invalid agent configuration")

// TransitionError indicates a lifecycle operation was attempted from a state
// that does not permit it. The state is left unchanged.
type TransitionError struct {
	AgentID string
	Op      string
	State   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("agent %q: cannot %s from state %q", e.AgentID, e.Op, e.State)
}

// StartupError wraps a failure returned by an agent's Start hook.
// The agent is left in the error state.
type StartupError struct {
	AgentID string
	Err     error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("agent %q: startup failed: %v", e.AgentID, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// ShutdownError wraps a failure returned by an agent's Stop hook.
// The agent is left in the error state.
type ShutdownError struct {
	AgentID string
	Err     error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("agent %q: shutdown failed: %v", e.AgentID, e.Err)
}

func (e *ShutdownError) Unwrap() error { return e.Err }
