package state

import "github.com/atomicstack/replay-control/internal/logging/events"

// pruneSelections drops selections that are no longer visible and returns
// the dropped ids.
func (l *List) pruneSelections() []string {
	if len(l.Selected) == 0 {
		return nil
	}
	visible := make(map[string]struct{}, len(l.Items))
	for _, item := range l.Items {
		visible[item.Name] = struct{}{}
	}
	var dropped []string
	for id := range l.Selected {
		if _, ok := visible[id]; !ok {
			delete(l.Selected, id)
			dropped = append(dropped, id)
		}
	}
	if len(dropped) > 0 {
		events.Selection.Pruned(dropped)
	}
	return dropped
}

// IsSelected reports whether the given id is selected.
func (l *List) IsSelected(id string) bool {
	if l.Selected == nil {
		return false
	}
	_, ok := l.Selected[id]
	return ok
}

// Toggle flips membership of id. A non-additive toggle first clears every
// other selection. Ids outside the visible set are ignored.
func (l *List) Toggle(id string, additive bool) bool {
	if l.IndexOf(id) < 0 {
		return false
	}
	if l.Selected == nil {
		l.Selected = make(map[string]struct{})
	}
	if !additive {
		for other := range l.Selected {
			if other != id {
				delete(l.Selected, other)
			}
		}
	}
	if _, ok := l.Selected[id]; ok {
		delete(l.Selected, id)
	} else {
		l.Selected[id] = struct{}{}
	}
	events.Selection.Toggle(id, additive, len(l.Selected))
	return true
}

// ToggleCurrent toggles the recording under the cursor.
func (l *List) ToggleCurrent(additive bool) bool {
	item, ok := l.Current()
	if !ok {
		return false
	}
	return l.Toggle(item.Name, additive)
}

// SelectAll selects every visible recording.
func (l *List) SelectAll() {
	if l.Selected == nil {
		l.Selected = make(map[string]struct{})
	}
	for _, item := range l.Items {
		l.Selected[item.Name] = struct{}{}
	}
	events.Selection.All(len(l.Selected))
}

// DeselectAll clears the selection of every visible recording.
func (l *List) DeselectAll() {
	for _, item := range l.Items {
		delete(l.Selected, item.Name)
	}
	events.Selection.None()
}

// SelectedNames returns the selected ids in display order.
func (l *List) SelectedNames() []string {
	if len(l.Selected) == 0 {
		return nil
	}
	names := make([]string, 0, len(l.Selected))
	for _, item := range l.Items {
		if l.IsSelected(item.Name) {
			names = append(names, item.Name)
		}
	}
	return names
}

// SelectionCount is the size of the selection.
func (l *List) SelectionCount() int {
	return len(l.Selected)
}

// CanReplay holds when exactly one recording is selected.
func (l *List) CanReplay() bool {
	return len(l.Selected) == 1
}

// CanBatchAct holds when at least one recording is selected.
func (l *List) CanBatchAct() bool {
	return len(l.Selected) >= 1
}
