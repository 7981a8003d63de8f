package events

import "github.com/atomicstack/replay-control/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type SelectionTracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	UI        = UITracer{}
	Filter    = FilterTracer{}
	Selection = SelectionTracer{}
	Action    = ActionTracer{}
	Command   = CommandTracer{}
)

func (UITracer) Key(key string) {
	logging.Trace("ui.key", map[string]interface{}{"key": key})
}

func (UITracer) Cursor(cursor int) {
	logging.Trace("ui.cursor", map[string]interface{}{"cursor": cursor})
}

func (UITracer) Prompt(id string) {
	logging.Trace("ui.prompt", map[string]interface{}{"id": id})
}

func (UITracer) PromptCancel(id, reason string) {
	logging.Trace("ui.prompt.cancel", map[string]interface{}{"id": id, "reason": reason})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (ActionTracer) Rejected(id, reason string) {
	logging.Trace("action.rejected", map[string]interface{}{"id": id, "reason": reason})
}

func (FilterTracer) Cleared() {
	logging.Trace("filter.clear", nil)
}

func (FilterTracer) WordBackspace(filter string) {
	logging.Trace("filter.word-backspace", map[string]interface{}{"filter": filter})
}

func (FilterTracer) Cursor(pos int) {
	logging.Trace("filter.cursor", map[string]interface{}{"cursor": pos})
}

func (FilterTracer) CursorWord(pos int) {
	logging.Trace("filter.cursor-word", map[string]interface{}{"cursor": pos})
}

func (FilterTracer) Append(filter string) {
	logging.Trace("filter.append", map[string]interface{}{"filter": filter})
}

func (FilterTracer) Backspace(filter string) {
	logging.Trace("filter.backspace", map[string]interface{}{"filter": filter})
}

func (FilterTracer) Category(category string) {
	logging.Trace("filter.category", map[string]interface{}{"category": category})
}

func (SelectionTracer) Toggle(id string, additive bool, count int) {
	logging.Trace("selection.toggle", map[string]interface{}{"id": id, "additive": additive, "count": count})
}

func (SelectionTracer) All(count int) {
	logging.Trace("selection.all", map[string]interface{}{"count": count})
}

func (SelectionTracer) None() {
	logging.Trace("selection.none", nil)
}

func (SelectionTracer) Pruned(dropped []string) {
	logging.Trace("selection.pruned", map[string]interface{}{"dropped": dropped})
}

func (CommandTracer) Queue(slot string, gen uint64) {
	logging.Trace("command.queue", map[string]interface{}{"slot": slot, "gen": gen})
}

func (CommandTracer) Busy(slot string) {
	logging.Trace("command.busy", map[string]interface{}{"slot": slot})
}

func (CommandTracer) Stale(slot string, gen uint64) {
	logging.Trace("command.stale", map[string]interface{}{"slot": slot, "gen": gen})
}

func (CommandTracer) Invalidate(slots []string) {
	logging.Trace("command.invalidate", map[string]interface{}{"slots": slots})
}

func (CommandTracer) Result(slot string, gen uint64, msgType string) {
	logging.Trace("command.result", map[string]interface{}{"slot": slot, "gen": gen, "msg": msgType})
}
