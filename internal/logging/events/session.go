package events

import "github.com/atomicstack/replay-control/internal/logging"

type SessionTracer struct{}

type CatalogTracer struct{}

var (
	Session = SessionTracer{}
	Catalog = CatalogTracer{}
)

func (SessionTracer) Transition(from, to, source string) {
	logging.Trace("session.transition", map[string]interface{}{"from": from, "to": to, "source": source})
}

func (SessionTracer) Request(cmd string) {
	logging.Trace("session.request", map[string]interface{}{"command": cmd})
}

func (SessionTracer) PollError(err error) {
	if err == nil {
		return
	}
	logging.Trace("session.poll.error", map[string]interface{}{"error": err.Error()})
}

func (CatalogTracer) Refresh(reason string) {
	logging.Trace("catalog.refresh", map[string]interface{}{"reason": reason})
}

func (CatalogTracer) Replace(count int) {
	logging.Trace("catalog.replace", map[string]interface{}{"count": count})
}

func (CatalogTracer) Keep(err error) {
	logging.Trace("catalog.keep", map[string]interface{}{"error": err.Error()})
}

func (SessionTracer) StalePoll(kind string, gen uint64) {
	logging.Trace("session.poll.stale", map[string]interface{}{"kind": kind, "generation": gen})
}
