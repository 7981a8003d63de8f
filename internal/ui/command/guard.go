package command

import "github.com/atomicstack/replay-control/internal/logging/events"

// Slot names one logical control. At most one request per slot is in flight.
type Slot string

const (
	SlotStart      Slot = "start"
	SlotPause      Slot = "pause"
	SlotStop       Slot = "stop"
	SlotReplay     Slot = "replay"
	SlotDelete     Slot = "delete"
	SlotExport     Slot = "export"
	SlotImport     Slot = "import"
	SlotCategorize Slot = "categorize"
	SlotRefresh    Slot = "refresh"
)

// SessionSlots are released by every status poll.
var SessionSlots = []Slot{SlotStart, SlotPause, SlotStop}

// StopSlots are superseded by a confirmed stop.
var StopSlots = []Slot{SlotStart, SlotPause, SlotStop, SlotReplay}

// Ticket identifies one submission. A ticket whose generation no longer
// matches its slot is stale.
type Ticket struct {
	Slot Slot
	Gen  uint64
}

type slotState struct {
	gen      uint64
	inFlight bool
}

// Guard tracks in-flight requests per slot with a monotonic generation.
// Not safe for concurrent use; it lives inside the update loop.
type Guard struct {
	slots map[Slot]*slotState
}

func NewGuard() *Guard {
	return &Guard{slots: make(map[Slot]*slotState)}
}

func (g *Guard) slot(s Slot) *slotState {
	st, ok := g.slots[s]
	if !ok {
		st = &slotState{}
		g.slots[s] = st
	}
	return st
}

// Begin locks slot and returns its ticket. It fails while the slot is busy.
func (g *Guard) Begin(s Slot) (Ticket, bool) {
	st := g.slot(s)
	if st.inFlight {
		events.Command.Busy(string(s))
		return Ticket{}, false
	}
	st.gen++
	st.inFlight = true
	events.Command.Queue(string(s), st.gen)
	return Ticket{Slot: s, Gen: st.gen}, true
}

// Busy reports whether slot has a request in flight.
func (g *Guard) Busy(s Slot) bool {
	st, ok := g.slots[s]
	return ok && st.inFlight
}

// Current reports whether t still owns its slot.
func (g *Guard) Current(t Ticket) bool {
	st, ok := g.slots[t.Slot]
	return ok && st.inFlight && st.gen == t.Gen
}

// Complete releases the slot held by t. It returns false for stale tickets,
// whose responses must be discarded.
func (g *Guard) Complete(t Ticket) bool {
	if !g.Current(t) {
		events.Command.Stale(string(t.Slot), t.Gen)
		return false
	}
	g.slots[t.Slot].inFlight = false
	return true
}

// Invalidate supersedes any outstanding request on the given slots and
// releases them.
func (g *Guard) Invalidate(slots ...Slot) {
	names := make([]string, 0, len(slots))
	for _, s := range slots {
		st := g.slot(s)
		if st.inFlight {
			st.gen++
			st.inFlight = false
		}
		names = append(names, string(s))
	}
	events.Command.Invalidate(names)
}
