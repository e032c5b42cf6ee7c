// ABOUTME: Tests for the lifecycle State type.

package supervisor

import "testing"

func TestState_IsValid(t *testing.T) {
	for _, s := range []State{StateStopped, StateStarting, StateRunning, StateStopping, StateError} {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if State("paused").IsValid() {
		t.Error("expected unknown state to be invalid")
	}
}

func TestState_CanStart(t *testing.T) {
	if !StateStopped.CanStart() {
		t.Error("stopped agents must be startable")
	}
	for _, s := range []State{StateStarting, StateRunning, StateStopping, StateError} {
		if s.CanStart() {
			t.Errorf("state %q must not be startable", s)
		}
	}
}
