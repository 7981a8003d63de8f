package command

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/replay-control/internal/logging/events"
)

// Request encapsulates a guarded action invocation.
type Request struct {
	Slot Slot
	Run  func() tea.Msg
}

// Completed wraps the message produced by a guarded request with the ticket
// it was issued under.
type Completed struct {
	Ticket Ticket
	Msg    tea.Msg
}

// Bus coordinates the execution of guarded actions.
type Bus struct {
	guard *Guard
}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{guard: NewGuard()}
}

// Guard exposes the underlying slot guard.
func (b *Bus) Guard() *Guard {
	return b.guard
}

// Execute locks the request's slot and wraps its work in a Bubble Tea
// command. ok is false when the slot is already busy and nothing was queued.
func (b *Bus) Execute(req Request) (tea.Cmd, bool) {
	if req.Run == nil {
		return nil, false
	}
	ticket, ok := b.guard.Begin(req.Slot)
	if !ok {
		return nil, false
	}
	return func() tea.Msg {
		msg := req.Run()
		events.Command.Result(string(ticket.Slot), ticket.Gen, fmt.Sprintf("%T", msg))
		return Completed{Ticket: ticket, Msg: msg}
	}, true
}

// Settle releases the ticket's slot. It returns false for stale tickets.
func (b *Bus) Settle(c Completed) bool {
	return b.guard.Complete(c.Ticket)
}
