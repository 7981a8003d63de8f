package state

// moveCursorTo places the cursor on idx, clamped to the visible set, and
// reports whether it moved.
func (l *List) moveCursorTo(idx int) bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	l.Cursor = clamp(idx, 0, len(l.Items)-1)
	return old != l.Cursor
}

func (l *List) MoveCursorHome() bool { return l.moveCursorTo(0) }

func (l *List) MoveCursorEnd() bool { return l.moveCursorTo(len(l.Items) - 1) }

// MoveCursorUp steps one row up, wrapping from the first row to the last.
func (l *List) MoveCursorUp() bool {
	if l.Cursor <= 0 {
		return l.moveCursorTo(len(l.Items) - 1)
	}
	return l.moveCursorTo(l.Cursor - 1)
}

// MoveCursorDown steps one row down, wrapping from the last row to the first.
func (l *List) MoveCursorDown() bool {
	if l.Cursor >= len(l.Items)-1 {
		return l.moveCursorTo(0)
	}
	return l.moveCursorTo(l.Cursor + 1)
}

// MoveCursorPageUp moves the cursor up by one page of maxVisible rows.
func (l *List) MoveCursorPageUp(maxVisible int) bool {
	return l.moveCursorTo(clamp(l.Cursor, 0, len(l.Items)) - l.pageSize(maxVisible))
}

// MoveCursorPageDown moves the cursor down by one page of maxVisible rows.
func (l *List) MoveCursorPageDown(maxVisible int) bool {
	return l.moveCursorTo(clamp(l.Cursor, 0, len(l.Items)) + l.pageSize(maxVisible))
}

// pageSize is maxVisible bounded by the visible set; a non-positive
// maxVisible means the whole set fits.
func (l *List) pageSize(maxVisible int) int {
	total := len(l.Items)
	if maxVisible <= 0 || maxVisible > total {
		return total
	}
	return maxVisible
}

// EnsureCursorVisible clamps the cursor and scrolls the viewport the least
// amount needed to keep it on screen.
func (l *List) EnsureCursorVisible(maxVisible int) {
	if len(l.Items) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, len(l.Items)-1)
	if maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	maxOffset := len(l.Items) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	offset := clamp(l.ViewportOffset, 0, maxOffset)
	switch {
	case l.Cursor < offset:
		offset = l.Cursor
	case l.Cursor >= offset+maxVisible:
		offset = l.Cursor - maxVisible + 1
	}
	l.ViewportOffset = clamp(offset, 0, maxOffset)
}
