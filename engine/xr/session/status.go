package session

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

// Status is the engine-side lifecycle status of the XR stack.
type Status int

const (
	// StatusUnavailable means no usable instance exists.
	StatusUnavailable Status = iota
	// StatusAvailable means an instance exists but no session was created or it was torn down.
	StatusAvailable
	// StatusIdle means the session exists and the runtime reported IDLE.
	StatusIdle
	// StatusReady means the runtime asked the application to begin the session.
	StatusReady
	// StatusRunning means the session is begun and frames may be submitted.
	StatusRunning
	// StatusStopping means the runtime asked the application to end the session.
	StatusStopping
	// StatusExiting means the session must be destroyed.
	StatusExiting
)

func (s Status) String() string {
	switch s {
	case StatusUnavailable:
		return "unavailable"
	case StatusAvailable:
		return "available"
	case StatusIdle:
		return "idle"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusExiting:
		return "exiting"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Transition returns the status that follows a runtime session state.
// SYNCHRONIZED, VISIBLE and FOCUSED all map to running; LOSS_PENDING maps to
// exiting. Unknown states leave the status unchanged.
//
// Parameters:
//   - current: the current status
//   - state: the reported session state
//
// Returns:
//   - Status: the next status
func Transition(current Status, state openxr.SessionState) Status {
	switch state {
	case openxr.SessionStateIdle:
		return StatusIdle
	case openxr.SessionStateReady:
		return StatusReady
	case openxr.SessionStateSynchronized, openxr.SessionStateVisible, openxr.SessionStateFocused:
		return StatusRunning
	case openxr.SessionStateStopping:
		return StatusStopping
	case openxr.SessionStateExiting, openxr.SessionStateLossPending:
		return StatusExiting
	}
	return current
}

// Replay folds a sequence of session states into a status.
//
// Parameters:
//   - start: the initial status
//   - states: the reported states in order
//
// Returns:
//   - Status: the resulting status
func Replay(start Status, states ...openxr.SessionState) Status {
	s := start
	for _, st := range states {
		s = Transition(s, st)
	}
	return s
}
