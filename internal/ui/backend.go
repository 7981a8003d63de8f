package ui

import (
	"github.com/atomicstack/replay-control/internal/backend"
	"github.com/atomicstack/replay-control/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		waitCmd := waitForBackendEvent(m.backend)
		if cmd != nil {
			return tea.Batch(cmd, waitCmd)
		}
		return waitCmd
	}
	return cmd
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

// applyBackendEvent folds a poll result into the model. A failed poll only
// raises a warning; the confirmed session state and catalog are kept.
func (m *Model) applyBackendEvent(evt backend.Event) tea.Cmd {
	if m.backendState == nil {
		m.backendState = make(map[backend.Kind]error)
	}
	res := m.dispatcher.Handle(evt)
	m.backendState[evt.Kind] = res.Err
	if res.Err != nil {
		m.backendLastErr = res.Err.Error()
		return nil
	}

	var cmd tea.Cmd
	if res.StatusObserved {
		// The poll is authoritative: outstanding lifecycle requests can no
		// longer claim the transition.
		m.bus.Guard().Invalidate(command.SessionSlots...)
		if res.NeedsRefresh() {
			cmd = m.requestRefresh("session-ended")
		}
	}
	if res.CatalogUpdated {
		m.list.UpdateItems(m.catalog.Entries())
		m.syncViewport()
	}

	if warn, _ := m.hasBackendIssue(); !warn {
		m.backendLastErr = ""
	}
	return cmd
}

func (m *Model) hasBackendIssue() (bool, string) {
	for _, err := range m.backendState {
		if err != nil {
			msg := m.backendLastErr
			if msg == "" {
				msg = err.Error()
			}
			return true, msg
		}
	}
	return false, ""
}
