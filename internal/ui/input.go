package ui

import (
	"unicode"

	"github.com/atomicstack/replay-control/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	filterPromptText  = "» "
	filterPlaceholder = "(type to search recordings)"
)

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

func (m *Model) noteFilterCursorChange(before int) {
	if before != m.list.FilterCursorPos() {
		m.filterCursorDirty = true
	}
}

// filterEdit applies op to the search box. A query edit also clears stale
// messages and rescrolls, since the visible set changed.
func (m *Model) filterEdit(op func() bool, queryChanged bool, trace func()) bool {
	before := m.list.FilterCursorPos()
	if !op() {
		return false
	}
	m.noteFilterCursorChange(before)
	if queryChanged {
		m.forceClearInfo()
		m.errMsg = ""
		m.syncViewport()
	}
	trace()
	return true
}

// handleTextInput applies search-box editing keys. It reports whether the
// key was consumed.
func (m *Model) handleTextInput(msg tea.KeyMsg) bool {
	l := m.list
	switch msg.String() {
	case "ctrl+u":
		if l.Filter == "" {
			return false
		}
		reset := func() bool { l.SetFilter("", 0); return true }
		return m.filterEdit(reset, true, events.Filter.Cleared)
	case "ctrl+w":
		return m.filterEdit(l.DeleteFilterWordBackward, true, func() { events.Filter.WordBackspace(l.Filter) })
	case "alt+b":
		return m.filterEdit(l.MoveFilterCursorWordBackward, false, func() { events.Filter.CursorWord(l.FilterCursor) })
	case "alt+f":
		return m.filterEdit(l.MoveFilterCursorWordForward, false, func() { events.Filter.CursorWord(l.FilterCursor) })
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		return m.filterEdit(l.DeleteFilterRuneBackward, true, func() { events.Filter.Backspace(l.Filter) })
	case tea.KeyRunes:
		if msg.Alt || !printable(msg.Runes) {
			return false
		}
		return m.appendToFilter(string(msg.Runes))
	case tea.KeySpace:
		return m.appendToFilter(" ")
	case tea.KeyLeft:
		return m.filterEdit(l.MoveFilterCursorRuneBackward, false, func() { events.Filter.Cursor(l.FilterCursor) })
	case tea.KeyRight:
		return m.filterEdit(l.MoveFilterCursorRuneForward, false, func() { events.Filter.Cursor(l.FilterCursor) })
	}
	return false
}

// printable rejects control runes and whitespace; space has its own key type.
func printable(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func (m *Model) appendToFilter(text string) bool {
	l := m.list
	insert := func() bool { return l.InsertFilterText(text) }
	return m.filterEdit(insert, true, func() { events.Filter.Append(l.Filter) })
}

// filterPrompt renders the search line with the caret drawn over the rune
// under the cursor, or over the placeholder's first rune when empty.
func (m *Model) filterPrompt() string {
	if styles.Cursor != nil {
		m.filterCursor.Style = styles.Cursor.Copy()
	}
	m.filterCursor.TextStyle = lipgloss.Style{}
	textStyle := styles.Filter
	runes := []rune(m.list.Filter)
	pos := m.list.FilterCursorPos()
	if len(runes) == 0 {
		runes, pos = []rune(filterPlaceholder), 0
		textStyle = styles.FilterPlaceholder
	}
	if textStyle != nil {
		m.filterCursor.TextStyle = textStyle.Copy()
	}

	caret := " "
	var after string
	if pos < len(runes) {
		caret = string(runes[pos])
		after = string(runes[pos+1:])
	}
	prompt := filterPromptText
	if styles.FilterPrompt != nil {
		prompt = styles.FilterPrompt.Render(prompt)
	}
	return prompt + renderWith(textStyle, string(runes[:pos])) + m.renderFilterCursor(caret) + renderWith(textStyle, after)
}

func renderWith(style *lipgloss.Style, value string) string {
	if style == nil || value == "" {
		return value
	}
	return style.Render(value)
}

func (m *Model) renderFilterCursor(char string) string {
	m.filterCursor.SetChar(char)
	base := m.filterCursor.TextStyle.Copy().Inline(true)
	if m.filterCursor.Blink {
		return base.Render(char)
	}
	if styles.Cursor != nil {
		return base.Inherit(styles.Cursor.Copy().Inline(true)).Blink(false).Render(char)
	}
	return base.Reverse(true).Render(char)
}
