package session

import (
	"sync/atomic"

	"github.com/atomicstack/replay-control/internal/logging/events"
	"github.com/atomicstack/replay-control/internal/recorder"
)

// Controller owns the authoritative State. It is not safe for concurrent
// use; callers mutate it from a single update loop. Generation is the
// exception and may be read from any goroutine.
type Controller struct {
	state    State
	observed bool
	gen      atomic.Uint64
}

// NewController starts in Idle until the first poll says otherwise.
func NewController() *Controller {
	return &Controller{state: Idle}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Observed reports whether at least one status poll has been applied.
func (c *Controller) Observed() bool {
	return c.observed
}

// Allowed reports whether cmd may be issued from the current state.
func (c *Controller) Allowed(cmd Command) bool {
	return c.state.Allows(cmd)
}

// ToggleCommand picks pause or resume for the shared toggle control.
func (c *Controller) ToggleCommand() (Command, bool) {
	return c.state.Toggle()
}

// Generation counts confirmed commands. A poll issued under an older
// generation predates the last confirmation and must not be observed.
func (c *Controller) Generation() uint64 {
	return c.gen.Load()
}

// Observe reconciles the state against a status poll.
func (c *Controller) Observe(st recorder.Status) Transition {
	c.observed = true
	return c.set(Normalize(st), "poll")
}

// Confirm applies the outcome of a successful command. paused is the flag
// returned by the pause toggle and is ignored for other commands.
func (c *Controller) Confirm(cmd Command, paused bool) Transition {
	next := c.state
	switch cmd {
	case Start:
		next = Recording
	case Pause, Resume:
		next = Recording
		if paused {
			next = Paused
		}
	case Stop:
		next = Idle
	}
	c.gen.Add(1)
	return c.set(next, cmd.String())
}

func (c *Controller) set(next State, source string) Transition {
	t := Transition{From: c.state, To: next}
	c.state = next
	if t.Changed() {
		events.Session.Transition(t.From.String(), t.To.String(), source)
	}
	return t
}
