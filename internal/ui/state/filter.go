package state

import (
	"strings"
	"unicode"

	"github.com/atomicstack/replay-control/internal/recorder"
)

// SetFilter updates the filter query and cursor position.
func (l *List) SetFilter(query string, cursor int) {
	prev := l.Filter
	restore := -1
	l.Filter = query
	l.FilterCursor = clamp(cursor, 0, len([]rune(query)))
	if query != "" {
		if prev == "" {
			l.LastCursor = l.Cursor
		}
		l.Cursor = 0
	} else if prev != "" {
		restore = l.LastCursor
	}
	l.applyFilter()
	if query != "" && len(l.Items) > 0 {
		if idx := BestMatchIndex(l.Items, query); idx >= 0 {
			l.Cursor = idx
		}
	}
	if query == "" && prev != "" {
		if restore >= 0 && restore < len(l.Items) {
			l.Cursor = restore
		} else if len(l.Items) > 0 {
			l.Cursor = len(l.Items) - 1
		}
		l.LastCursor = -1
	}
}

// applyFilter recomputes the visible set and prunes the selection to it.
func (l *List) applyFilter() {
	l.Items = FilterRecordings(l.Full, l.Criteria())
	l.pruneSelections()
	if len(l.Items) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	if l.Cursor < 0 {
		l.Cursor = len(l.Items) - 1
		return
	}
	if l.Cursor >= len(l.Items) {
		l.Cursor = len(l.Items) - 1
	}
	if l.ViewportOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
	}
}

// FilterCursorPos returns the rune offset of the filter cursor, clamped to
// the query.
func (l *List) FilterCursorPos() int {
	return clamp(l.FilterCursor, 0, len([]rune(l.Filter)))
}

// edit replaces the rune range [from, to) of the query with text and
// leaves the cursor after the inserted runes.
func (l *List) edit(from, to int, text []rune) {
	runes := []rune(l.Filter)
	updated := make([]rune, 0, len(runes)-(to-from)+len(text))
	updated = append(updated, runes[:from]...)
	updated = append(updated, text...)
	updated = append(updated, runes[to:]...)
	l.SetFilter(string(updated), from+len(text))
}

// moveFilterCursor reports whether the cursor moved.
func (l *List) moveFilterCursor(to int) bool {
	if to == l.FilterCursorPos() {
		return false
	}
	l.FilterCursor = to
	return true
}

func (l *List) InsertFilterText(text string) bool {
	if text == "" {
		return false
	}
	pos := l.FilterCursorPos()
	l.edit(pos, pos, []rune(text))
	return true
}

func (l *List) DeleteFilterRuneBackward() bool {
	pos := l.FilterCursorPos()
	if pos == 0 {
		return false
	}
	l.edit(pos-1, pos, nil)
	return true
}

// DeleteFilterWordBackward removes the word before the cursor along with
// the whitespace between it and the cursor.
func (l *List) DeleteFilterWordBackward() bool {
	pos := l.FilterCursorPos()
	if pos == 0 {
		return false
	}
	l.edit(wordStart([]rune(l.Filter), pos), pos, nil)
	return true
}

func (l *List) MoveFilterCursorWordBackward() bool {
	return l.moveFilterCursor(wordStart([]rune(l.Filter), l.FilterCursorPos()))
}

func (l *List) MoveFilterCursorWordForward() bool {
	return l.moveFilterCursor(wordEnd([]rune(l.Filter), l.FilterCursorPos()))
}

func (l *List) MoveFilterCursorRuneBackward() bool {
	return l.moveFilterCursor(clamp(l.FilterCursorPos()-1, 0, len([]rune(l.Filter))))
}

func (l *List) MoveFilterCursorRuneForward() bool {
	return l.moveFilterCursor(clamp(l.FilterCursorPos()+1, 0, len([]rune(l.Filter))))
}

// wordStart skips spaces then non-spaces leftwards from pos.
func wordStart(runes []rune, pos int) int {
	for pos > 0 && unicode.IsSpace(runes[pos-1]) {
		pos--
	}
	for pos > 0 && !unicode.IsSpace(runes[pos-1]) {
		pos--
	}
	return pos
}

// wordEnd skips non-spaces then spaces rightwards from pos.
func wordEnd(runes []rune, pos int) int {
	for pos < len(runes) && !unicode.IsSpace(runes[pos]) {
		pos++
	}
	for pos < len(runes) && unicode.IsSpace(runes[pos]) {
		pos++
	}
	return pos
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FilterRecordings returns the catalog entries whose name contains the
// search text, ignoring case, and whose category matches when one is set.
func FilterRecordings(items []recorder.Recording, c Criteria) []recorder.Recording {
	search := strings.ToLower(c.Search)
	category := strings.TrimSpace(c.Category)
	filtered := make([]recorder.Recording, 0, len(items))
	for _, item := range items {
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// BestMatchIndex picks the cursor position for query: an exact name, then
// the name where it occurs earliest. It returns 0 when nothing matches and -1
// for an empty list.
func BestMatchIndex(items []recorder.Recording, query string) int {
	if len(items) == 0 {
		return -1
	}
	if query == "" {
		return 0
	}
	lower := strings.ToLower(query)
	best, bestAt := 0, -1
	for i, item := range items {
		name := strings.ToLower(item.Name)
		if name == lower {
			return i
		}
		at := strings.Index(name, lower)
		if at >= 0 && (bestAt < 0 || at < bestAt) {
			best, bestAt = i, at
		}
	}
	return best
}
