package action

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/replay-control/internal/logging/events"
	"github.com/atomicstack/replay-control/internal/recorder"
	"github.com/atomicstack/replay-control/internal/session"
	"github.com/atomicstack/replay-control/internal/ui/command"
)

func requireState(ctx Context, cmd session.Command) error {
	if ctx.Service == nil {
		return recorder.Validation(cmd.String(), "no recording service configured")
	}
	if !ctx.Session.Allows(cmd) {
		return recorder.Validation(cmd.String(), fmt.Sprintf("cannot %s while %s", cmd, ctx.Session))
	}
	return nil
}

func StartAction(ctx Context) (command.Request, error) {
	if err := requireState(ctx, session.Start); err != nil {
		return command.Request{}, err
	}
	return command.Request{Slot: command.SlotStart, Run: func() tea.Msg {
		events.Session.Request(session.Start.String())
		reply, err := ctx.Service.Start(ctx.ctx())
		if err != nil {
			return SessionResult{Command: session.Start, Err: err}
		}
		return SessionResult{Command: session.Start, Info: infoOr(reply.Message, "Recording started")}
	}}, nil
}

// PauseAction pauses a running session or resumes a paused one.
func PauseAction(ctx Context) (command.Request, error) {
	cmd, ok := ctx.Session.Toggle()
	if !ok {
		return command.Request{}, recorder.Validation("pause", "no recording in progress")
	}
	if err := requireState(ctx, cmd); err != nil {
		return command.Request{}, err
	}
	return command.Request{Slot: command.SlotPause, Run: func() tea.Msg {
		events.Session.Request(cmd.String())
		reply, err := ctx.Service.TogglePause(ctx.ctx())
		if err != nil {
			return SessionResult{Command: cmd, Err: err}
		}
		confirmed := session.Resume
		if reply.IsPaused {
			confirmed = session.Pause
		}
		return SessionResult{Command: confirmed, Paused: reply.IsPaused, Info: infoOr(reply.Message, "Recording "+confirmed.String()+"d")}
	}}, nil
}

func StopAction(ctx Context) (command.Request, error) {
	if err := requireState(ctx, session.Stop); err != nil {
		return command.Request{}, err
	}
	return command.Request{Slot: command.SlotStop, Run: func() tea.Msg {
		events.Session.Request(session.Stop.String())
		reply, err := ctx.Service.Stop(ctx.ctx())
		if err != nil {
			return SessionResult{Command: session.Stop, Err: err}
		}
		info := infoOr(reply.Message, "Recording stopped")
		if reply.File != "" {
			info = fmt.Sprintf("%s: %s", info, reply.File)
		}
		return SessionResult{Command: session.Stop, File: reply.File, Info: info}
	}}, nil
}

// RefreshAction fetches the catalog. The reason is taken from ctx.Input.
func RefreshAction(ctx Context) (command.Request, error) {
	if ctx.Service == nil {
		return command.Request{}, recorder.Validation("list", "no recording service configured")
	}
	reason := ctx.Input
	if reason == "" {
		reason = "manual"
	}
	return command.Request{Slot: command.SlotRefresh, Run: func() tea.Msg {
		events.Catalog.Refresh(reason)
		recs, err := ctx.Service.List(ctx.ctx())
		if err != nil {
			events.Catalog.Keep(err)
			return CatalogResult{Reason: reason, Err: err}
		}
		events.Catalog.Replace(len(recs))
		return CatalogResult{Recordings: recs, Reason: reason}
	}}, nil
}

func infoOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
