package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/replay-control/internal/action"
	"github.com/atomicstack/replay-control/internal/recorder"
	"github.com/atomicstack/replay-control/internal/testutil"
	"github.com/atomicstack/replay-control/internal/ui/command"
)

func TestNewModelDefaultsReplayOptions(t *testing.T) {
	m := NewModel(Options{})
	if m.replay.LoopCount != 1 || m.replay.Speed != 1 {
		t.Fatalf("unexpected replay defaults %+v", m.replay)
	}
	if m.requestRefresh("startup") != nil {
		t.Fatalf("expected no refresh without a service")
	}
}

func TestHeaderShowsStateAndSelection(t *testing.T) {
	m := NewModel(Options{})
	m.list.UpdateItems([]recorder.Recording{{Name: "a"}, {Name: "b"}})
	m.list.Toggle("a", false)
	got := m.header()
	want := "recordings · idle? · 1 selected"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	m.session.Observe(recorder.Status{IsRecording: true})
	if got := m.header(); !strings.Contains(got, "recording ·") {
		t.Fatalf("expected observed recording state, got %q", got)
	}
}

func TestHeaderListsBusySlots(t *testing.T) {
	m := NewModel(Options{})
	m.bus.Guard().Begin(command.SlotExport)
	if got := m.header(); !strings.HasSuffix(got, "export…") {
		t.Fatalf("expected busy export in header, got %q", got)
	}
}

func TestFooterHidesUnavailableActions(t *testing.T) {
	m := NewModel(Options{ShowFooter: true})
	footer := m.footerText()
	if !strings.Contains(footer, "ctrl+n start") {
		t.Fatalf("expected start in footer, got %q", footer)
	}
	if strings.Contains(footer, "ctrl+r replay") || strings.Contains(footer, "ctrl+s stop") {
		t.Fatalf("expected replay and stop hidden without selection, got %q", footer)
	}
}

func TestAdjustLoopsClamps(t *testing.T) {
	m := NewModel(Options{})
	for i := 0; i < 20; i++ {
		m.adjustLoops(1)
	}
	if m.replay.LoopCount != recorder.MaxLoopCount {
		t.Fatalf("expected loops clamped to %d, got %d", recorder.MaxLoopCount, m.replay.LoopCount)
	}
	for i := 0; i < 20; i++ {
		m.adjustLoops(-1)
	}
	if m.replay.LoopCount != recorder.MinLoopCount {
		t.Fatalf("expected loops clamped to %d, got %d", recorder.MinLoopCount, m.replay.LoopCount)
	}
}

func TestAdjustSpeedStaysPositive(t *testing.T) {
	m := NewModel(Options{})
	for i := 0; i < 10; i++ {
		m.adjustSpeed(-speedStep)
	}
	if m.replay.Speed != speedStep {
		t.Fatalf("expected speed floor %v, got %v", speedStep, m.replay.Speed)
	}
}

func TestRefreshRequestsCoalesce(t *testing.T) {
	svc := testutil.NewService(t, recorder.Recording{Name: "a"})
	m := NewModel(Options{Service: recorder.NewClient(svc.URL(), 2*time.Second)})
	h := NewHarness(m)

	first := m.requestRefresh("one")
	if first == nil {
		t.Fatalf("expected refresh command")
	}
	if m.requestRefresh("two") != nil || m.requestRefresh("three") != nil {
		t.Fatalf("expected follow-up refreshes to be coalesced")
	}
	if !m.pendingRefresh {
		t.Fatalf("expected pending refresh flag")
	}
	h.processCmd(first)
	if got := svc.CallCount(listPath); got != 2 {
		t.Fatalf("expected one coalesced follow-up fetch, got %d fetches", got)
	}
	if m.pendingRefresh {
		t.Fatalf("expected pending flag drained")
	}
}

func TestRefreshFailureKeepsCatalog(t *testing.T) {
	svc := testutil.NewService(t, recorder.Recording{Name: "a"})
	m := NewModel(Options{Service: recorder.NewClient(svc.URL(), 2*time.Second)})
	h := NewHarness(m)
	h.Init()

	h.Send(action.CatalogResult{Err: recorder.Service("list", "catalog unavailable")})
	if idx := m.list.IndexOf("a"); idx < 0 {
		t.Fatalf("expected previous catalog kept, got %#v", m.list.Items)
	}
	if !strings.Contains(m.errMsg, "refresh failed") {
		t.Fatalf("expected refresh error, got %q", m.errMsg)
	}
}

func TestTriggerActionRequiresSelectionForPrompt(t *testing.T) {
	m := NewModel(Options{})
	def, _ := m.registry.Find(action.IDCategorize)
	if cmd := m.triggerAction(def); cmd != nil {
		t.Fatalf("expected no command")
	}
	if m.mode != ModeList {
		t.Fatalf("expected prompt not opened")
	}
	if !strings.Contains(m.errMsg, "no recordings selected") {
		t.Fatalf("unexpected error %q", m.errMsg)
	}
}

func TestPromptInitialUsesSharedCategory(t *testing.T) {
	m := NewModel(Options{})
	m.list.UpdateItems([]recorder.Recording{
		{Name: "a", Category: "drums"},
		{Name: "b", Category: "drums"},
		{Name: "c", Category: "bass"},
	})
	m.list.Toggle("a", true)
	m.list.Toggle("b", true)
	if got := m.promptInitial(action.IDCategorize); got != "drums" {
		t.Fatalf("expected shared category, got %q", got)
	}
	m.list.Toggle("c", true)
	if got := m.promptInitial(action.IDCategorize); got != "" {
		t.Fatalf("expected no initial value for mixed categories, got %q", got)
	}
}
