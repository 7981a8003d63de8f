package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/replay-control/internal/recorder"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	KindStatus Kind = iota
	KindCatalog
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindCatalog:
		return "catalog"
	}
	return "unknown"
}

// Event conveys updated data or an error from a backend poll. Gen is the
// value Options.Stamp returned when the fetch was issued.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
	Gen  uint64
}

// Source is the subset of the Recording Service the watcher polls.
type Source interface {
	Status(ctx context.Context) (recorder.Status, error)
	List(ctx context.Context) ([]recorder.Recording, error)
}

// Options controls poll cadence. A zero CatalogInterval disables the catalog
// poller; catalog refreshes then only happen on demand.
type Options struct {
	StatusInterval  time.Duration
	CatalogInterval time.Duration
	// Stamp is read from the poller goroutines just before each fetch so
	// consumers can recognise results issued before a state change.
	Stamp func() uint64
}

const (
	DefaultStatusInterval = time.Second
	minFetchSpacing       = 250 * time.Millisecond
)

// Watcher polls the Recording Service at a fixed interval and publishes events.
type Watcher struct {
	source Source
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
	done   chan struct{}
}

// NewWatcher creates a backend watcher and starts its pollers.
func NewWatcher(source Source, opts Options) *Watcher {
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = DefaultStatusInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		source: source,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}

	w.startStatusPoller()
	if opts.CatalogInterval > 0 {
		w.startCatalogPoller()
	}

	go func() {
		w.wg.Wait()
		close(w.events)
		close(w.done)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. In-flight requests are aborted through the
// context; use Wait if a clean drain is required.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all poller goroutines have exited and the events channel
// is closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	<-w.done
}

func (w *Watcher) startStatusPoller() {
	throttle := newThrottle(minFetchSpacing)
	w.wg.Add(1)
	go w.poll(KindStatus, w.opts.StatusInterval, func(ctx context.Context) (interface{}, error) {
		throttle.wait(ctx)
		return w.source.Status(ctx)
	})
}

func (w *Watcher) startCatalogPoller() {
	throttle := newThrottle(minFetchSpacing)
	w.wg.Add(1)
	go w.poll(KindCatalog, w.opts.CatalogInterval, func(ctx context.Context) (interface{}, error) {
		throttle.wait(ctx)
		return w.source.List(ctx)
	})
}

func (w *Watcher) poll(kind Kind, interval time.Duration, fetch func(context.Context) (interface{}, error)) {
	defer w.wg.Done()

	emit := func() bool {
		var gen uint64
		if w.opts.Stamp != nil {
			gen = w.opts.Stamp()
		}
		data, err := fetch(w.ctx)
		if w.ctx.Err() != nil {
			return false
		}
		evt := Event{Kind: kind, Data: data, Err: err, Gen: gen}
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- evt:
			return true
		}
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}
