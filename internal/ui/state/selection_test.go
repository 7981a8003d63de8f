package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/atomicstack/replay-control/internal/recorder"
)

func assertSelectionVisible(t *testing.T, l *List) {
	t.Helper()
	for id := range l.Selected {
		if l.IndexOf(id) < 0 {
			t.Fatalf("selection %q is not visible", id)
		}
	}
}

func TestToggleExclusiveTwiceClears(t *testing.T) {
	l := newTestList("a", "b")
	l.Toggle("a", false)
	l.Toggle("a", false)
	if l.SelectionCount() != 0 {
		t.Fatalf("expected empty selection, got %v", l.SelectedNames())
	}
}

func TestToggleExclusiveReplaces(t *testing.T) {
	l := newTestList("a", "b", "c")
	l.Toggle("a", true)
	l.Toggle("b", true)
	l.Toggle("c", false)
	if diff := cmp.Diff([]string{"c"}, l.SelectedNames()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleAdditiveExtends(t *testing.T) {
	l := newTestList("a", "b", "c")
	l.Toggle("c", true)
	l.Toggle("a", true)
	if diff := cmp.Diff([]string{"a", "c"}, l.SelectedNames()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	l.Toggle("c", true)
	if diff := cmp.Diff([]string{"a"}, l.SelectedNames()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleIgnoresHiddenIDs(t *testing.T) {
	l := newTestList("a", "b")
	l.SetFilter("a", 1)
	if l.Toggle("b", true) {
		t.Fatal("expected hidden id to be ignored")
	}
	if l.Toggle("missing", false) {
		t.Fatal("expected unknown id to be ignored")
	}
}

func TestFilterPrunesSelection(t *testing.T) {
	l := newTestList("a", "b", "c")
	l.Toggle("c", false)
	l.SetFilter("b", 1)

	if diff := cmp.Diff([]string{"b"}, names(l.Items)); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	if l.SelectionCount() != 0 {
		t.Fatalf("expected selection pruned, got %v", l.SelectedNames())
	}

	l.SetFilter("", 0)
	if l.SelectionCount() != 0 {
		t.Fatalf("pruned selection must not come back, got %v", l.SelectedNames())
	}
}

func TestCatalogReplacePrunesSelection(t *testing.T) {
	l := newTestList("a", "b")
	l.SelectAll()
	l.UpdateItems([]recorder.Recording{{Name: "b"}, {Name: "z"}})
	if diff := cmp.Diff([]string{"b"}, l.SelectedNames()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	assertSelectionVisible(t, l)
}

func TestSelectAllAndDeselectAllRespectVisibility(t *testing.T) {
	l := NewList([]recorder.Recording{
		{Name: "a", Category: "x"},
		{Name: "b", Category: "y"},
		{Name: "c", Category: "x"},
	})
	l.SetCategory("x")
	l.SelectAll()
	if diff := cmp.Diff([]string{"a", "c"}, l.SelectedNames()); diff != "" {
		t.Fatalf("select all mismatch (-want +got):\n%s", diff)
	}
	assertSelectionVisible(t, l)

	l.DeselectAll()
	if l.SelectionCount() != 0 {
		t.Fatalf("expected empty selection, got %v", l.SelectedNames())
	}
}

func TestCapabilities(t *testing.T) {
	l := newTestList("a", "b")
	if l.CanReplay() || l.CanBatchAct() {
		t.Fatal("empty selection allows nothing")
	}
	l.Toggle("a", false)
	if !l.CanReplay() || !l.CanBatchAct() {
		t.Fatal("single selection allows replay and batch")
	}
	l.Toggle("b", true)
	if l.CanReplay() || !l.CanBatchAct() {
		t.Fatal("multi selection allows batch only")
	}
}

func TestInvariantHoldsAcrossCriteriaChanges(t *testing.T) {
	l := NewList([]recorder.Recording{
		{Name: "alpha", Category: "x"},
		{Name: "beta", Category: "y"},
		{Name: "gamma", Category: "x"},
		{Name: "delta"},
	})
	steps := []func(){
		func() { l.SelectAll() },
		func() { l.SetFilter("a", 1) },
		func() { l.SetCategory("x") },
		func() { l.Toggle("gamma", true) },
		func() { l.SetFilter("alp", 3) },
		func() { l.SetCategory("") },
		func() { l.SelectAll() },
		func() { l.SetFilter("", 0) },
		func() { l.SetCategory("y") },
	}
	for i, step := range steps {
		step()
		if diff := cmp.Diff(names(FilterRecordings(l.Full, l.Criteria())), names(l.Items)); diff != "" {
			t.Fatalf("step %d: visible set drifted (-want +got):\n%s", i, diff)
		}
		assertSelectionVisible(t, l)
	}
}

func TestCursorFollowsRecordingAcrossRefresh(t *testing.T) {
	l := newTestList("a", "b", "c")
	l.Cursor = 2
	l.UpdateItems([]recorder.Recording{{Name: "new"}, {Name: "a"}, {Name: "b"}, {Name: "c"}})
	if cur, _ := l.Current(); cur.Name != "c" {
		t.Fatalf("expected cursor to stay on c, got %q", cur.Name)
	}
}

func names(items []recorder.Recording) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}
