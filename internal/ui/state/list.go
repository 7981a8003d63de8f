package state

import (
	"strings"

	"github.com/atomicstack/replay-control/internal/recorder"
)

// Criteria narrows the catalog to the visible set. An empty Category means
// every category.
type Criteria struct {
	Search   string
	Category string
}

// List holds the browsable catalog: the full snapshot, the visible subset,
// the search/category filter, the selection and the viewport.
type List struct {
	Items          []recorder.Recording
	Full           []recorder.Recording
	Filter         string
	FilterCursor   int
	Category       string
	Cursor         int
	Selected       map[string]struct{}
	LastCursor     int
	ViewportOffset int
}

// NewList constructs a List over the provided catalog.
func NewList(items []recorder.Recording) *List {
	l := &List{
		Cursor:     0,
		LastCursor: -1,
		Selected:   make(map[string]struct{}),
	}
	l.UpdateItems(items)
	return l
}

// Criteria returns the active filter.
func (l *List) Criteria() Criteria {
	return Criteria{Search: l.Filter, Category: l.Category}
}

// IndexOf returns the visible index for a recording name.
func (l *List) IndexOf(name string) int {
	if name == "" {
		return -1
	}
	for i, item := range l.Items {
		if item.Name == name {
			return i
		}
	}
	return -1
}

// Current returns the recording under the cursor.
func (l *List) Current() (recorder.Recording, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return recorder.Recording{}, false
	}
	return l.Items[l.Cursor], true
}

// UpdateItems replaces the catalog snapshot, keeping the cursor on the same
// recording when it is still visible.
func (l *List) UpdateItems(items []recorder.Recording) {
	prevOffset := l.ViewportOffset
	var current string
	if item, ok := l.Current(); ok {
		current = item.Name
	}
	l.Full = CloneItems(items)
	l.applyFilter()
	if idx := l.IndexOf(current); idx >= 0 {
		l.Cursor = idx
	}
	if len(l.Items) == 0 {
		l.ViewportOffset = 0
		return
	}
	if prevOffset < 0 {
		prevOffset = 0
	}
	if prevOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
		return
	}
	l.ViewportOffset = prevOffset
}

// SetCategory changes the category filter. Returns false when unchanged.
func (l *List) SetCategory(category string) bool {
	category = strings.TrimSpace(category)
	if category == l.Category {
		return false
	}
	l.Category = category
	l.applyFilter()
	return true
}

// CycleCategory steps through "" followed by categories.
func (l *List) CycleCategory(categories []string) string {
	next := ""
	if l.Category == "" {
		if len(categories) > 0 {
			next = categories[0]
		}
	} else {
		for i, c := range categories {
			if c == l.Category && i+1 < len(categories) {
				next = categories[i+1]
				break
			}
		}
	}
	l.SetCategory(next)
	return next
}
