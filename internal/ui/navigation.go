package ui

import (
	"fmt"

	"github.com/atomicstack/replay-control/internal/logging/events"
	"github.com/atomicstack/replay-control/internal/recorder"
	tea "github.com/charmbracelet/bubbletea"
)

const speedStep = 0.25

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.mode != ModeList {
		return nil
	}
	events.UI.Key(keyMsg.String())
	if keyMsg.Type == tea.KeyTab {
		m.toggleCurrent(true)
		return nil
	}
	if def, ok := m.registry.ForKey(keyMsg.String()); ok {
		return m.triggerAction(def)
	}
	if m.handleTextInput(keyMsg) {
		return nil
	}
	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		return m.handleEscapeKey()
	case "enter":
		m.toggleCurrent(false)
	case "ctrl+a":
		m.list.SelectAll()
	case "ctrl+d":
		m.list.DeselectAll()
	case "ctrl+f":
		m.cycleCategory()
	case "alt+p":
		m.replay.Precision = !m.replay.Precision
	case "alt+up":
		m.adjustLoops(1)
	case "alt+down":
		m.adjustLoops(-1)
	case "alt+right":
		m.adjustSpeed(speedStep)
	case "alt+left":
		m.adjustSpeed(-speedStep)
	case "up":
		m.moveCursorUp()
	case "down":
		m.moveCursorDown()
	case "pgup":
		m.moveCursorPageUp()
	case "pgdown":
		m.moveCursorPageDown()
	case "home":
		m.moveCursorHome()
	case "end":
		m.moveCursorEnd()
	}
	return nil
}

// handleEscapeKey clears an active search or category filter before it
// quits.
func (m *Model) handleEscapeKey() tea.Cmd {
	m.errMsg = ""
	if m.list.Filter != "" {
		before := m.list.FilterCursorPos()
		m.list.SetFilter("", 0)
		m.noteFilterCursorChange(before)
		events.Filter.Cleared()
		m.syncViewport()
		return nil
	}
	if m.list.Category != "" {
		m.list.SetCategory("")
		events.Filter.Category("")
		m.syncViewport()
		return nil
	}
	return tea.Quit
}

func (m *Model) toggleCurrent(additive bool) {
	if !m.list.ToggleCurrent(additive) {
		return
	}
	m.errMsg = ""
}

func (m *Model) cycleCategory() {
	next := m.list.CycleCategory(m.catalog.Categories())
	events.Filter.Category(next)
	m.syncViewport()
	if next == "" {
		m.setInfo("Showing all categories")
		return
	}
	m.setInfo(fmt.Sprintf("Category: %s", next))
}

func (m *Model) adjustLoops(delta int) {
	next := m.replay.LoopCount + delta
	if next < recorder.MinLoopCount {
		next = recorder.MinLoopCount
	}
	if next > recorder.MaxLoopCount {
		next = recorder.MaxLoopCount
	}
	m.replay.LoopCount = next
}

func (m *Model) adjustSpeed(delta float64) {
	next := m.replay.Speed + delta
	if next < speedStep {
		next = speedStep
	}
	m.replay.Speed = next
}

func (m *Model) moveCursorUp() {
	if m.list.MoveCursorUp() {
		events.UI.Cursor(m.list.Cursor)
		m.syncViewport()
	}
}

func (m *Model) moveCursorDown() {
	if m.list.MoveCursorDown() {
		events.UI.Cursor(m.list.Cursor)
		m.syncViewport()
	}
}

func (m *Model) moveCursorPageUp() {
	if m.list.MoveCursorPageUp(m.maxVisibleItems()) {
		events.UI.Cursor(m.list.Cursor)
		m.syncViewport()
	}
}

func (m *Model) moveCursorPageDown() {
	if m.list.MoveCursorPageDown(m.maxVisibleItems()) {
		events.UI.Cursor(m.list.Cursor)
		m.syncViewport()
	}
}

func (m *Model) moveCursorHome() {
	if m.list.MoveCursorHome() {
		events.UI.Cursor(m.list.Cursor)
		m.syncViewport()
	}
}

func (m *Model) moveCursorEnd() {
	if m.list.MoveCursorEnd() {
		events.UI.Cursor(m.list.Cursor)
		m.syncViewport()
	}
}

func (m *Model) syncViewport() {
	m.list.EnsureCursorVisible(m.maxVisibleItems())
}
