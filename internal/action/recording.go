package action

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/renameio/v2"

	"github.com/atomicstack/replay-control/internal/logging/events"
	"github.com/atomicstack/replay-control/internal/recorder"
	"github.com/atomicstack/replay-control/internal/session"
	"github.com/atomicstack/replay-control/internal/ui/command"
)

// ExportFileName is the artifact name every export is written under.
const ExportFileName = "recordings_export.json"

var (
	writeFileFn = func(path string, data []byte) error {
		return renameio.WriteFile(path, data, 0o644)
	}
	openFileFn = func(path string) (*os.File, error) {
		return os.Open(path)
	}
)

func requireService(op string, ctx Context) error {
	if ctx.Service == nil {
		return recorder.Validation(op, "no recording service configured")
	}
	return nil
}

func requireIdle(op string, ctx Context) error {
	if ctx.Session.Active() {
		return recorder.Validation(op, fmt.Sprintf("cannot %s while %s", op, ctx.Session))
	}
	return nil
}

func requireSelection(op string, ctx Context) error {
	if len(ctx.Selected) == 0 {
		return recorder.Validation(op, "no recordings selected")
	}
	return nil
}

// ReplayRequest assembles the request for the single selected recording.
func ReplayRequest(ctx Context) (recorder.ReplayRequest, error) {
	if len(ctx.Selected) != 1 {
		return recorder.ReplayRequest{}, recorder.Validation("replay", "select exactly one recording to replay")
	}
	req := recorder.ReplayRequest{
		Recording: ctx.Selected[0],
		Precision: ctx.Replay.Precision,
		LoopCount: ctx.Replay.LoopCount,
		Speed:     ctx.Replay.Speed,
	}
	return req, req.Validate()
}

func ReplayAction(ctx Context) (command.Request, error) {
	if err := requireService("replay", ctx); err != nil {
		return command.Request{}, err
	}
	if err := requireIdle("replay", ctx); err != nil {
		return command.Request{}, err
	}
	req, err := ReplayRequest(ctx)
	if err != nil {
		return command.Request{}, err
	}
	return command.Request{Slot: command.SlotReplay, Run: func() tea.Msg {
		reply, err := ctx.Service.Replay(ctx.ctx(), req)
		if err != nil {
			events.Action.Error(err)
			return Result{ID: IDReplay, Err: err}
		}
		info := infoOr(reply.Message, "Replay completed")
		events.Action.Success(info)
		return Result{ID: IDReplay, Info: info}
	}}, nil
}

// DeleteAction removes the selection. The catalog is refreshed whatever the
// outcome, since the service decides what survived.
func DeleteAction(ctx Context) (command.Request, error) {
	if err := requireService("delete", ctx); err != nil {
		return command.Request{}, err
	}
	if err := requireIdle("delete", ctx); err != nil {
		return command.Request{}, err
	}
	if err := requireSelection("delete", ctx); err != nil {
		return command.Request{}, err
	}
	if !ctx.Confirmed {
		return command.Request{}, recorder.Validation("delete", "deletion not confirmed")
	}
	names := append([]string(nil), ctx.Selected...)
	return command.Request{Slot: command.SlotDelete, Run: func() tea.Msg {
		reply, err := ctx.Service.Delete(ctx.ctx(), names)
		if err != nil {
			events.Action.Error(err)
			return Result{ID: IDDelete, Err: err, Refresh: true}
		}
		info := infoOr(reply.Message, fmt.Sprintf("Deleted %d recording(s)", len(names)))
		events.Action.Success(info)
		return Result{ID: IDDelete, Info: info, Refresh: true}
	}}, nil
}

// ExportAction saves the service-built artifact as ExportFileName.
func ExportAction(ctx Context) (command.Request, error) {
	if err := requireService("export", ctx); err != nil {
		return command.Request{}, err
	}
	if err := requireSelection("export", ctx); err != nil {
		return command.Request{}, err
	}
	names := append([]string(nil), ctx.Selected...)
	dest := filepath.Join(ctx.ExportDir, ExportFileName)
	return command.Request{Slot: command.SlotExport, Run: func() tea.Msg {
		data, err := ctx.Service.Export(ctx.ctx(), names)
		if err != nil {
			events.Action.Error(err)
			return Result{ID: IDExport, Err: err}
		}
		if err := writeFileFn(dest, data); err != nil {
			err = fmt.Errorf("write %s: %w", dest, err)
			events.Action.Error(err)
			return Result{ID: IDExport, Err: err}
		}
		info := fmt.Sprintf("Exported %d recording(s) to %s", len(names), dest)
		events.Action.Success(info)
		return Result{ID: IDExport, Info: info}
	}}, nil
}

// ImportAction uploads the file named by ctx.Input.
func ImportAction(ctx Context) (command.Request, error) {
	if err := requireService("import", ctx); err != nil {
		return command.Request{}, err
	}
	path := strings.TrimSpace(ctx.Input)
	if path == "" {
		return command.Request{}, recorder.Validation("import", "no file selected")
	}
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return command.Request{}, recorder.Validation("import", "import file must be a .json export")
	}
	return command.Request{Slot: command.SlotImport, Run: func() tea.Msg {
		f, err := openFileFn(path)
		if err != nil {
			events.Action.Error(err)
			return Result{ID: IDImport, Err: err}
		}
		defer f.Close()
		reply, err := ctx.Service.Import(ctx.ctx(), path, f)
		if err != nil {
			events.Action.Error(err)
			return Result{ID: IDImport, Err: err}
		}
		info := infoOr(reply.Message, "Recordings imported")
		events.Action.Success(info)
		return Result{ID: IDImport, Info: info, Refresh: true}
	}}, nil
}

// CategorizeAction labels the selection with ctx.Input. An empty label
// aborts before any request.
func CategorizeAction(ctx Context) (command.Request, error) {
	if err := requireService("categorize", ctx); err != nil {
		return command.Request{}, err
	}
	if err := requireSelection("categorize", ctx); err != nil {
		return command.Request{}, err
	}
	label := strings.TrimSpace(ctx.Input)
	if label == "" {
		return command.Request{}, recorder.Validation("categorize", "category must not be empty")
	}
	names := append([]string(nil), ctx.Selected...)
	return command.Request{Slot: command.SlotCategorize, Run: func() tea.Msg {
		reply, err := ctx.Service.SetCategory(ctx.ctx(), names, label)
		if err != nil {
			events.Action.Error(err)
			return Result{ID: IDCategorize, Err: err}
		}
		info := infoOr(reply.Message, fmt.Sprintf("Categorized %d recording(s) as %s", len(names), label))
		events.Action.Success(info)
		return Result{ID: IDCategorize, Info: info, Refresh: true}
	}}, nil
}

// Enabled reports whether the action identified by id can currently be
// triggered given the session state and selection size.
func Enabled(id string, state session.State, selected int) bool {
	switch id {
	case IDStart:
		return state.Allows(session.Start)
	case IDPause:
		_, ok := state.Toggle()
		return ok
	case IDStop:
		return state.Allows(session.Stop)
	case IDReplay:
		return !state.Active() && selected == 1
	case IDDelete:
		return !state.Active() && selected >= 1
	case IDExport, IDCategorize:
		return selected >= 1
	case IDImport, IDRefresh:
		return true
	}
	return false
}
