// Package action turns operator intents into guarded Recording Service
// calls. Every handler validates locally first and only then returns the
// work to run.
package action

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/replay-control/internal/recorder"
	"github.com/atomicstack/replay-control/internal/session"
	"github.com/atomicstack/replay-control/internal/ui/command"
)

// Service is the Recording Service surface used by the actions.
type Service interface {
	Status(ctx context.Context) (recorder.Status, error)
	List(ctx context.Context) ([]recorder.Recording, error)
	Start(ctx context.Context) (recorder.Reply, error)
	Stop(ctx context.Context) (recorder.StopReply, error)
	TogglePause(ctx context.Context) (recorder.PauseReply, error)
	Replay(ctx context.Context, req recorder.ReplayRequest) (recorder.Reply, error)
	Delete(ctx context.Context, names []string) (recorder.DeleteReply, error)
	Export(ctx context.Context, names []string) ([]byte, error)
	Import(ctx context.Context, filename string, r io.Reader) (recorder.Reply, error)
	SetCategory(ctx context.Context, names []string, category string) (recorder.Reply, error)
}

// ReplayOptions are the operator-tunable replay parameters.
type ReplayOptions struct {
	Precision bool
	LoopCount int
	Speed     float64
}

// Context carries the runtime data a handler needs.
type Context struct {
	Base      context.Context
	Service   Service
	Session   session.State
	Selected  []string
	Replay    ReplayOptions
	ExportDir string
	// Input is the prompt answer for actions that ask for one.
	Input string
	// Confirmed is set once the operator accepted a confirmation.
	Confirmed bool
}

func (c Context) ctx() context.Context {
	if c.Base != nil {
		return c.Base
	}
	return context.Background()
}

// Handler validates ctx and returns the guarded work to run.
type Handler func(Context) (command.Request, error)

// SessionResult reports the outcome of a lifecycle command.
type SessionResult struct {
	Command session.Command
	Paused  bool
	File    string
	Info    string
	Err     error
}

// CatalogResult carries a freshly fetched catalog.
type CatalogResult struct {
	Recordings []recorder.Recording
	Reason     string
	Err        error
}

// Result communicates the outcome of a recording action.
type Result struct {
	ID      string
	Info    string
	Err     error
	Refresh bool
}

// Run executes a handler synchronously. Used by the headless CLI.
func Run(ctx Context, h Handler) tea.Msg {
	req, err := h(ctx)
	if err != nil {
		return Result{Err: err}
	}
	return req.Run()
}
