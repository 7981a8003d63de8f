package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/replay-control/internal/action"
	"github.com/atomicstack/replay-control/internal/backend"
	"github.com/atomicstack/replay-control/internal/recorder"
	"github.com/atomicstack/replay-control/internal/session"
	"github.com/atomicstack/replay-control/internal/testutil"
	"github.com/atomicstack/replay-control/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

const listPath = "/list_recordings"

func newTestHarness(t *testing.T, recs ...recorder.Recording) (*Harness, *testutil.Service) {
	t.Helper()
	svc := testutil.NewService(t, recs...)
	model := NewModel(Options{
		Service:   recorder.NewClient(svc.URL(), 2*time.Second),
		Width:     80,
		Height:    24,
		ExportDir: t.TempDir(),
	})
	h := NewHarness(model)
	h.Init()
	return h, svc
}

// statusEvent is a poll issued under the model's current generation.
func statusEvent(h *Harness, recording, paused bool) backendEventMsg {
	return statusEventAt(h.Model().session.Generation(), recording, paused)
}

func statusEventAt(gen uint64, recording, paused bool) backendEventMsg {
	return backendEventMsg{event: backend.Event{
		Kind: backend.KindStatus,
		Data: recorder.Status{IsRecording: recording, IsPaused: paused},
		Gen:  gen,
	}}
}

func ctrlKey(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitLoadsCatalog(t *testing.T) {
	h, svc := newTestHarness(t, recorder.Recording{Name: "a"}, recorder.Recording{Name: "b", Category: "drums"})
	if got := svc.CallCount(listPath); got != 1 {
		t.Fatalf("expected one catalog fetch, got %d", got)
	}
	items := h.Model().list.Items
	if len(items) != 2 || items[1].Category != "drums" {
		t.Fatalf("unexpected catalog %#v", items)
	}
	if !h.Model().catalog.Loaded() {
		t.Fatalf("expected catalog marked loaded")
	}
}

func TestLifecycleRefreshesCatalogOnceOnStop(t *testing.T) {
	h, svc := newTestHarness(t)

	h.Send(ctrlKey(tea.KeyCtrlN))
	if got := h.Model().SessionState(); got != session.Recording {
		t.Fatalf("expected recording after start, got %s", got)
	}
	h.Send(ctrlKey(tea.KeyCtrlP))
	if got := h.Model().SessionState(); got != session.Paused {
		t.Fatalf("expected paused after toggle, got %s", got)
	}
	h.Send(ctrlKey(tea.KeyCtrlP))
	if got := h.Model().SessionState(); got != session.Recording {
		t.Fatalf("expected recording after resume, got %s", got)
	}
	if got := svc.CallCount(listPath); got != 1 {
		t.Fatalf("expected no refresh while recording, got %d fetches", got)
	}

	h.Send(ctrlKey(tea.KeyCtrlS))
	if got := h.Model().SessionState(); got != session.Idle {
		t.Fatalf("expected idle after stop, got %s", got)
	}
	if got := svc.CallCount(listPath); got != 2 {
		t.Fatalf("expected exactly one refresh after stop, got %d fetches", got-1)
	}
	if idx := h.Model().list.IndexOf("recording_001.json"); idx < 0 {
		t.Fatalf("expected new recording in list, got %#v", h.Model().list.Items)
	}

	// The poll that follows agrees with the confirmed state.
	h.Send(statusEvent(h, false, false))
	if got := svc.CallCount(listPath); got != 2 {
		t.Fatalf("expected poll not to refresh again, got %d fetches", got)
	}
	if !strings.Contains(h.View(), "last: recording_001.json") {
		t.Fatalf("expected stopped file in header, got:\n%s", h.View())
	}
}

func TestPollObservedStopRefreshesOnce(t *testing.T) {
	svc := testutil.NewService(t, recorder.Recording{Name: "a"})
	h := NewHarness(NewModel(Options{Service: recorder.NewClient(svc.URL(), 2*time.Second)}))

	h.Send(statusEvent(h, true, false))
	if got := h.Model().SessionState(); got != session.Recording {
		t.Fatalf("expected recording from poll, got %s", got)
	}
	if got := svc.CallCount(listPath); got != 0 {
		t.Fatalf("expected no refresh when a session starts, got %d", got)
	}
	h.Send(statusEvent(h, false, false))
	h.Send(statusEvent(h, false, false))
	if got := svc.CallCount(listPath); got != 1 {
		t.Fatalf("expected one refresh after the session ended, got %d", got)
	}
}

func TestPollErrorKeepsStateAndWarns(t *testing.T) {
	h, _ := newTestHarness(t, recorder.Recording{Name: "a"})
	h.Send(statusEvent(h, true, true))
	h.Send(backendEventMsg{event: backend.Event{
		Kind: backend.KindStatus,
		Err:  recorder.Transport("status", os.ErrDeadlineExceeded),
	}})
	if got := h.Model().SessionState(); got != session.Paused {
		t.Fatalf("expected state kept after failed poll, got %s", got)
	}
	if !strings.Contains(h.View(), "Warning:") {
		t.Fatalf("expected poll warning in view, got:\n%s", h.View())
	}

	h.Send(statusEvent(h, true, true))
	if strings.Contains(h.View(), "Warning:") {
		t.Fatalf("expected warning cleared after a good poll, got:\n%s", h.View())
	}
}

func TestStopSupersedesOutstandingReplay(t *testing.T) {
	h, svc := newTestHarness(t, recorder.Recording{Name: "a"})
	m := h.Model()
	m.list.Toggle("a", false)

	def, _ := m.registry.Find(action.IDReplay)
	held := m.triggerAction(def)
	if held == nil {
		t.Fatalf("expected replay command, err=%q", m.errMsg)
	}

	h.Send(statusEvent(h, true, false))
	h.Send(action.SessionResult{Command: session.Stop, Info: "Recording stopped"})
	if m.bus.Guard().Busy(command.SlotReplay) {
		t.Fatalf("expected replay slot released by stop")
	}

	h.Send(held())
	if m.infoMsg == "Replay completed" {
		t.Fatalf("expected stale replay reply to be dropped")
	}
	if got := svc.CallCount("/replay"); got != 1 {
		t.Fatalf("expected the replay request to have been sent once, got %d", got)
	}
}

func TestStopSupersedesOutstandingSessionCommands(t *testing.T) {
	h, _ := newTestHarness(t)
	m := h.Model()
	h.Send(statusEvent(h, true, false))

	def, _ := m.registry.Find(action.IDPause)
	held := m.triggerAction(def)
	if held == nil {
		t.Fatalf("expected pause command, err=%q", m.errMsg)
	}
	h.Send(action.SessionResult{Command: session.Stop, Info: "Recording stopped"})
	for _, slot := range command.StopSlots {
		if m.bus.Guard().Busy(slot) {
			t.Fatalf("expected slot %v released by stop", slot)
		}
	}

	h.Send(held())
	if got := m.SessionState(); got != session.Idle {
		t.Fatalf("expected stale pause reply to be dropped, got %s", got)
	}
}

func TestStaleStartFailureStillReported(t *testing.T) {
	h, svc := newTestHarness(t)
	m := h.Model()
	svc.Override("/start_recording", testutil.Override{Body: map[string]string{"status": "error", "message": "device busy"}})

	def, _ := m.registry.Find(action.IDStart)
	held := m.triggerAction(def)
	if held == nil {
		t.Fatalf("expected start command, err=%q", m.errMsg)
	}
	// A poll lands while the start request is still in flight.
	h.Send(statusEvent(h, false, false))
	if m.bus.Guard().Busy(command.SlotStart) {
		t.Fatalf("expected poll to release the start slot")
	}

	h.Send(held())
	if !strings.Contains(m.errMsg, "device busy") {
		t.Fatalf("expected start failure on the status line, got %q", m.errMsg)
	}
	if got := m.SessionState(); got != session.Idle {
		t.Fatalf("expected idle after failed start, got %s", got)
	}
}

func TestPollIssuedBeforeStopIsDropped(t *testing.T) {
	h, svc := newTestHarness(t)
	h.Send(ctrlKey(tea.KeyCtrlN))
	before := h.Model().session.Generation()

	h.Send(ctrlKey(tea.KeyCtrlS))
	if got := svc.CallCount(listPath); got != 2 {
		t.Fatalf("expected one refresh after stop, got %d fetches", got)
	}

	// Issued while recording, delivered after the stop was confirmed.
	h.Send(statusEventAt(before, true, false))
	if got := h.Model().SessionState(); got != session.Idle {
		t.Fatalf("expected stale poll not to resurrect the session, got %s", got)
	}
	h.Send(statusEvent(h, false, false))
	if got := svc.CallCount(listPath); got != 2 {
		t.Fatalf("expected no second refresh, got %d fetches", got)
	}
}

func TestCategorizePromptCompletesKnownCategory(t *testing.T) {
	h, svc := newTestHarness(t, recorder.Recording{Name: "a", Category: "drums"}, recorder.Recording{Name: "b"})
	h.Model().list.Toggle("b", false)
	h.Send(ctrlKey(tea.KeyCtrlG))
	h.Send(runes("drm"))
	h.Send(tea.KeyMsg{Type: tea.KeyTab})
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if got := svc.CallCount("/set_category"); got != 1 {
		t.Fatalf("expected one set_category request, got %d", got)
	}
	for _, r := range svc.Recordings() {
		if r.Name == "b" && r.Category != "drums" {
			t.Fatalf("expected completed category applied, got %q", r.Category)
		}
	}
}

func TestDeleteFailureStillRefreshes(t *testing.T) {
	h, svc := newTestHarness(t, recorder.Recording{Name: "a"}, recorder.Recording{Name: "b"})
	svc.Override("/delete_recordings", testutil.Override{HTTPStatus: 500, Body: "boom"})
	h.Model().list.Toggle("a", false)

	h.Send(ctrlKey(tea.KeyCtrlX))
	if h.Model().mode != ModeConfirm {
		t.Fatalf("expected confirmation before delete")
	}
	h.Send(runes("y"))
	if h.Model().errMsg == "" {
		t.Fatalf("expected delete error to be shown")
	}
	if got := svc.CallCount(listPath); got != 2 {
		t.Fatalf("expected refresh after failed delete, got %d fetches", got)
	}
}

func TestDeleteDeclinedSendsNothing(t *testing.T) {
	h, svc := newTestHarness(t, recorder.Recording{Name: "a"})
	h.Model().list.Toggle("a", false)
	h.Send(ctrlKey(tea.KeyCtrlX))
	h.Send(runes("n"))
	if h.Model().mode != ModeList {
		t.Fatalf("expected list mode after declining")
	}
	if got := svc.CallCount("/delete_recordings"); got != 0 {
		t.Fatalf("expected no delete request, got %d", got)
	}
}

func TestDeleteRemovesRecording(t *testing.T) {
	h, svc := newTestHarness(t, recorder.Recording{Name: "a"}, recorder.Recording{Name: "b"})
	h.Model().list.Toggle("a", false)
	h.Send(ctrlKey(tea.KeyCtrlX))
	h.Send(runes("y"))
	if h.Model().errMsg != "" {
		t.Fatalf("unexpected error %q", h.Model().errMsg)
	}
	if idx := h.Model().list.IndexOf("a"); idx >= 0 {
		t.Fatalf("expected a removed from list")
	}
	if got := len(svc.Recordings()); got != 1 {
		t.Fatalf("expected one recording left, got %d", got)
	}
	if got := h.Model().list.SelectionCount(); got != 0 {
		t.Fatalf("expected deleted selection pruned, got %d", got)
	}
}

func TestReplayRejectedWhileRecording(t *testing.T) {
	h, svc := newTestHarness(t, recorder.Recording{Name: "a"})
	h.Send(statusEvent(h, true, false))
	h.Model().list.Toggle("a", false)
	h.Send(ctrlKey(tea.KeyCtrlR))
	if h.Model().errMsg == "" {
		t.Fatalf("expected replay to be rejected while recording")
	}
	if got := svc.CallCount("/replay"); got != 0 {
		t.Fatalf("expected no replay request, got %d", got)
	}
}

func TestReplaySendsOptions(t *testing.T) {
	h, svc := newTestHarness(t, recorder.Recording{Name: "a"})
	h.Model().list.Toggle("a", false)
	h.Send(tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	h.Send(tea.KeyMsg{Type: tea.KeyRight, Alt: true})
	h.Send(ctrlKey(tea.KeyCtrlR))
	if h.Model().infoMsg != "Replay completed" {
		t.Fatalf("expected replay info, got %q err=%q", h.Model().infoMsg, h.Model().errMsg)
	}
	var body string
	for _, c := range svc.Calls() {
		if c.Path == "/replay" {
			body = c.Body
		}
	}
	if !strings.Contains(body, `"loop_count":2`) || !strings.Contains(body, `"speed":1.25`) {
		t.Fatalf("unexpected replay body %s", body)
	}
}

func TestCategorizePromptUpdatesCatalog(t *testing.T) {
	h, svc := newTestHarness(t, recorder.Recording{Name: "a"}, recorder.Recording{Name: "b"})
	h.Model().list.Toggle("a", false)
	h.Send(ctrlKey(tea.KeyCtrlG))
	if h.Model().mode != ModePrompt {
		t.Fatalf("expected category prompt")
	}
	h.Send(runes("drums"))
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if got := svc.CallCount("/set_category"); got != 1 {
		t.Fatalf("expected one set_category request, got %d", got)
	}
	idx := h.Model().list.IndexOf("a")
	if idx < 0 || h.Model().list.Items[idx].Category != "drums" {
		t.Fatalf("expected refreshed category, got %#v", h.Model().list.Items)
	}
}

func TestCategorizeEmptyPromptCancels(t *testing.T) {
	h, svc := newTestHarness(t, recorder.Recording{Name: "a"})
	h.Model().list.Toggle("a", false)
	h.Send(ctrlKey(tea.KeyCtrlG))
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if h.Model().mode != ModeList {
		t.Fatalf("expected prompt closed")
	}
	if got := svc.CallCount("/set_category"); got != 0 {
		t.Fatalf("expected no request for empty label, got %d", got)
	}
}

func TestExportWritesArtifact(t *testing.T) {
	h, _ := newTestHarness(t, recorder.Recording{Name: "a"}, recorder.Recording{Name: "b"})
	h.Send(ctrlKey(tea.KeyCtrlA))
	h.Send(ctrlKey(tea.KeyCtrlE))
	if h.Model().errMsg != "" {
		t.Fatalf("unexpected error %q", h.Model().errMsg)
	}
	dest := filepath.Join(h.Model().exportDir, action.ExportFileName)
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected export file: %v", err)
	}
}

func TestFilterPrunesSelection(t *testing.T) {
	h, _ := newTestHarness(t, recorder.Recording{Name: "alpha"}, recorder.Recording{Name: "beta"})
	h.Send(ctrlKey(tea.KeyCtrlA))
	if got := h.Model().list.SelectionCount(); got != 2 {
		t.Fatalf("expected both selected, got %d", got)
	}
	h.Send(runes("alp"))
	names := h.Model().list.SelectedNames()
	if len(names) != 1 || names[0] != "alpha" {
		t.Fatalf("expected selection pruned to alpha, got %v", names)
	}
}

func TestEscapeClearsFilterThenQuits(t *testing.T) {
	h, _ := newTestHarness(t, recorder.Recording{Name: "alpha"})
	h.Send(runes("zz"))
	h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	if h.Quit() {
		t.Fatalf("expected first escape to clear the filter")
	}
	if h.Model().list.Filter != "" {
		t.Fatalf("expected filter cleared, got %q", h.Model().list.Filter)
	}
	h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	if !h.Quit() {
		t.Fatalf("expected second escape to quit")
	}
}
