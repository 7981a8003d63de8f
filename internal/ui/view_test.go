package ui

import (
	"strings"
	"testing"

	"github.com/atomicstack/replay-control/internal/action"
	"github.com/atomicstack/replay-control/internal/recorder"
)

func TestViewMarksSelectedRows(t *testing.T) {
	m := NewModel(Options{Width: 60, Height: 12})
	m.catalog.SetEntries([]recorder.Recording{{Name: "alpha", Category: "drums"}, {Name: "beta"}})
	m.list.UpdateItems(m.catalog.Entries())
	m.list.Toggle("alpha", false)
	view := m.View()
	if !strings.Contains(view, "[✓] alpha") {
		t.Fatalf("expected selected mark, got:\n%s", view)
	}
	if !strings.Contains(view, "[ ] beta") {
		t.Fatalf("expected unselected row, got:\n%s", view)
	}
	if !strings.Contains(view, "drums") {
		t.Fatalf("expected category column, got:\n%s", view)
	}
}

func TestViewEmptyStates(t *testing.T) {
	m := NewModel(Options{})
	if view := m.View(); !strings.Contains(view, "Loading recordings") {
		t.Fatalf("expected loading placeholder, got:\n%s", view)
	}
	m.catalog.SetEntries([]recorder.Recording{{Name: "alpha"}})
	m.list.UpdateItems(m.catalog.Entries())
	m.list.SetFilter("zzz", 3)
	if view := m.View(); !strings.Contains(view, `No matches for "zzz"`) {
		t.Fatalf("expected no-match message, got:\n%s", view)
	}
}

func TestViewConfirmForm(t *testing.T) {
	m := NewModel(Options{})
	m.list.UpdateItems([]recorder.Recording{{Name: "alpha"}})
	m.list.Toggle("alpha", false)
	def, _ := m.registry.Find(action.IDDelete)
	m.triggerAction(def)
	view := m.View()
	if !strings.Contains(view, "Delete alpha?") {
		t.Fatalf("expected confirmation question, got:\n%s", view)
	}
}

func TestViewErrorLine(t *testing.T) {
	m := NewModel(Options{})
	m.errMsg = "boom"
	if view := m.View(); !strings.Contains(view, "Error: boom") {
		t.Fatalf("expected error line, got:\n%s", view)
	}
}

func TestLimitHeightAddsEllipsis(t *testing.T) {
	lines := []styledLine{{text: "a"}, {text: "b"}, {text: "c"}}
	got := limitHeight(lines, 2, 10)
	if len(got) != 2 || got[1].text != "…" {
		t.Fatalf("unexpected trimmed lines %#v", got)
	}
}
