package action

import "github.com/atomicstack/replay-control/internal/ui/command"

const (
	IDStart      = "session:start"
	IDPause      = "session:pause"
	IDStop       = "session:stop"
	IDRefresh    = "catalog:refresh"
	IDReplay     = "recording:replay"
	IDDelete     = "recording:delete"
	IDExport     = "recording:export"
	IDImport     = "recording:import"
	IDCategorize = "recording:categorize"
)

// Definition describes one operator action.
type Definition struct {
	ID      string
	Label   string
	Key     string
	Slot    command.Slot
	Prompt  string
	Confirm bool
	Handler Handler
}

// Definitions lists every action in help order.
func Definitions() []Definition {
	return []Definition{
		{ID: IDStart, Label: "start", Key: "ctrl+n", Slot: command.SlotStart, Handler: StartAction},
		{ID: IDPause, Label: "pause/resume", Key: "ctrl+p", Slot: command.SlotPause, Handler: PauseAction},
		{ID: IDStop, Label: "stop", Key: "ctrl+s", Slot: command.SlotStop, Handler: StopAction},
		{ID: IDReplay, Label: "replay", Key: "ctrl+r", Slot: command.SlotReplay, Handler: ReplayAction},
		{ID: IDDelete, Label: "delete", Key: "ctrl+x", Slot: command.SlotDelete, Confirm: true, Handler: DeleteAction},
		{ID: IDExport, Label: "export", Key: "ctrl+e", Slot: command.SlotExport, Handler: ExportAction},
		{ID: IDImport, Label: "import", Key: "ctrl+o", Slot: command.SlotImport, Prompt: "Import file", Handler: ImportAction},
		{ID: IDCategorize, Label: "categorize", Key: "ctrl+g", Slot: command.SlotCategorize, Prompt: "Category", Handler: CategorizeAction},
		{ID: IDRefresh, Label: "refresh", Key: "ctrl+l", Slot: command.SlotRefresh, Handler: RefreshAction},
	}
}

// Registry exposes lookup over the action definitions.
type Registry struct {
	byID  map[string]Definition
	byKey map[string]Definition
	order []Definition
}

// BuildRegistry indexes Definitions by id and key binding.
func BuildRegistry() *Registry {
	defs := Definitions()
	r := &Registry{
		byID:  make(map[string]Definition, len(defs)),
		byKey: make(map[string]Definition, len(defs)),
		order: defs,
	}
	for _, d := range defs {
		r.byID[d.ID] = d
		if d.Key != "" {
			r.byKey[d.Key] = d
		}
	}
	return r
}

// Find locates an action by id.
func (r *Registry) Find(id string) (Definition, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// ForKey locates the action bound to key.
func (r *Registry) ForKey(key string) (Definition, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// All returns the definitions in help order.
func (r *Registry) All() []Definition {
	return append([]Definition(nil), r.order...)
}
