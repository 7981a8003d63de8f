package dispatcher

import (
	"github.com/atomicstack/replay-control/internal/backend"
	"github.com/atomicstack/replay-control/internal/logging/events"
	"github.com/atomicstack/replay-control/internal/recorder"
	"github.com/atomicstack/replay-control/internal/session"
	"github.com/atomicstack/replay-control/internal/state"
)

// Result summarises what a backend event changed.
type Result struct {
	StatusObserved bool
	Transition     session.Transition
	CatalogUpdated bool
	// Stale is set when the poll was issued before the last confirmed
	// command; its data was dropped.
	Stale bool
	Err   error
}

// NeedsRefresh reports whether the catalog should be re-fetched because a
// session just ended.
func (r Result) NeedsRefresh() bool {
	return r.StatusObserved && r.Transition.Finished()
}

type Dispatcher struct {
	session *session.Controller
	catalog state.CatalogStore
}

func New(s *session.Controller, c state.CatalogStore) *Dispatcher {
	return &Dispatcher{session: s, catalog: c}
}

// Handle folds evt into the session controller or the catalog store. Errors
// never change either, and neither do polls that predate the controller's
// current generation.
func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		res.Err = evt.Err
		if evt.Kind == backend.KindStatus {
			events.Session.PollError(evt.Err)
		} else {
			events.Catalog.Keep(evt.Err)
		}
		return res
	}
	if evt.Gen < d.session.Generation() {
		res.Stale = true
		events.Session.StalePoll(evt.Kind.String(), evt.Gen)
		return res
	}
	switch evt.Kind {
	case backend.KindStatus:
		if st, ok := evt.Data.(recorder.Status); ok {
			res.Transition = d.session.Observe(st)
			res.StatusObserved = true
		}
	case backend.KindCatalog:
		if recs, ok := evt.Data.([]recorder.Recording); ok {
			d.catalog.SetEntries(recs)
			events.Catalog.Replace(len(recs))
			res.CatalogUpdated = true
		}
	}
	return res
}
