// Package session tracks the recording lifecycle as seen by the client.
package session

import "github.com/atomicstack/replay-control/internal/recorder"

// State is the client's view of the recorder lifecycle.
type State int

const (
	Idle State = iota
	Recording
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// Active reports whether a recording session exists.
func (s State) Active() bool {
	return s == Recording || s == Paused
}

// Allows reports whether cmd may be issued from s.
func (s State) Allows(cmd Command) bool {
	switch cmd {
	case Start:
		return s == Idle
	case Pause:
		return s == Recording
	case Resume:
		return s == Paused
	case Stop:
		return s.Active()
	}
	return false
}

// Toggle picks pause or resume for the shared toggle control.
func (s State) Toggle() (Command, bool) {
	switch s {
	case Recording:
		return Pause, true
	case Paused:
		return Resume, true
	}
	return Pause, false
}

// Normalize folds the raw flags into a State. A paused flag without an
// active recording is treated as Idle.
func Normalize(st recorder.Status) State {
	switch {
	case !st.IsRecording:
		return Idle
	case st.IsPaused:
		return Paused
	default:
		return Recording
	}
}

// Command is a lifecycle request issued by the operator.
type Command int

const (
	Start Command = iota
	Pause
	Resume
	Stop
)

func (c Command) String() string {
	switch c {
	case Start:
		return "start"
	case Pause:
		return "pause"
	case Resume:
		return "resume"
	case Stop:
		return "stop"
	}
	return "unknown"
}

// Transition describes a state change applied by the controller.
type Transition struct {
	From State
	To   State
}

// Changed reports whether the transition moved the state.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Finished reports whether a session ended, which means a new recording may
// have appeared in the catalog.
func (t Transition) Finished() bool {
	return t.From.Active() && t.To == Idle
}
