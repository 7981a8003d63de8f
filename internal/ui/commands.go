package ui

import (
	"fmt"

	"github.com/atomicstack/replay-control/internal/action"
	"github.com/atomicstack/replay-control/internal/logging"
	"github.com/atomicstack/replay-control/internal/logging/events"
	"github.com/atomicstack/replay-control/internal/session"
	"github.com/atomicstack/replay-control/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

// handleCompletedMsg releases the slot a guarded request held and routes its
// payload. Responses superseded by a newer request or by a poll cannot
// confirm state or touch the slot, but their failures are still reported.
func (m *Model) handleCompletedMsg(msg tea.Msg) tea.Cmd {
	done, ok := msg.(command.Completed)
	if !ok {
		return nil
	}
	if !m.bus.Settle(done) {
		if err := resultErr(done.Msg); err != nil {
			m.reportError(err)
		}
		if done.Ticket.Slot == command.SlotRefresh {
			return m.drainPendingRefresh()
		}
		return nil
	}
	if handler := m.handlerFor(done.Msg); handler != nil {
		return handler(done.Msg)
	}
	return nil
}

// resultErr extracts the failure carried by a handler result, if any.
func resultErr(msg tea.Msg) error {
	switch res := msg.(type) {
	case action.SessionResult:
		return res.Err
	case action.Result:
		return res.Err
	case action.CatalogResult:
		return res.Err
	}
	return nil
}

func (m *Model) reportError(err error) {
	m.errMsg = err.Error()
	m.forceClearInfo()
	events.Action.Error(err)
	logging.Error(err)
}

func (m *Model) handleSessionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(action.SessionResult)
	if !ok {
		return nil
	}
	if result.Err != nil {
		m.reportError(result.Err)
		return nil
	}
	m.errMsg = ""
	tr := m.session.Confirm(result.Command, result.Paused)
	if result.File != "" {
		m.lastFile = result.File
	}
	m.setInfo(result.Info)
	events.Action.Success(result.Info)
	if result.Command != session.Stop {
		return nil
	}
	m.bus.Guard().Invalidate(command.StopSlots...)
	if tr.Finished() {
		return m.requestRefresh("session-ended")
	}
	return nil
}

func (m *Model) handleCatalogResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(action.CatalogResult)
	if !ok {
		return nil
	}
	if result.Err != nil {
		m.errMsg = fmt.Sprintf("refresh failed: %v", result.Err)
		logging.Error(result.Err)
	} else {
		m.catalog.SetEntries(result.Recordings)
		m.list.UpdateItems(m.catalog.Entries())
		m.syncViewport()
		if m.verbose {
			m.setInfo(fmt.Sprintf("Loaded %d recording(s)", len(result.Recordings)))
		}
	}
	return m.drainPendingRefresh()
}

func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(action.Result)
	if !ok {
		return nil
	}
	if result.Err != nil {
		m.reportError(result.Err)
	} else {
		m.errMsg = ""
		m.setInfo(result.Info)
		events.Action.Success(result.Info)
	}
	if result.Refresh {
		return m.requestRefresh(result.ID)
	}
	return nil
}

// requestRefresh queues a catalog fetch. While one is in flight the request
// is coalesced into a single follow-up fetch.
func (m *Model) requestRefresh(reason string) tea.Cmd {
	if m.service == nil {
		return nil
	}
	if m.bus.Guard().Busy(command.SlotRefresh) {
		m.pendingRefresh = true
		return nil
	}
	req, err := action.RefreshAction(m.actionContext(reason, false))
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	cmd, _ := m.bus.Execute(req)
	return cmd
}

func (m *Model) drainPendingRefresh() tea.Cmd {
	if !m.pendingRefresh {
		return nil
	}
	m.pendingRefresh = false
	return m.requestRefresh("coalesced")
}

// triggerAction starts def, opening its confirmation or prompt first when
// it needs one.
func (m *Model) triggerAction(def action.Definition) tea.Cmd {
	m.forceClearInfo()
	m.errMsg = ""
	if def.Confirm || def.Prompt != "" {
		if !action.Enabled(def.ID, m.session.State(), m.list.SelectionCount()) {
			reason := m.unavailableReason(def)
			m.errMsg = fmt.Sprintf("%s: %s", def.Label, reason)
			events.Action.Rejected(def.ID, reason)
			return nil
		}
		if m.bus.Guard().Busy(def.Slot) {
			m.setInfo(fmt.Sprintf("%s already in progress", def.Label))
			return nil
		}
	}
	switch {
	case def.Confirm:
		m.startConfirmForm(def)
		return nil
	case def.Prompt != "":
		m.startPromptForm(def)
		return nil
	}
	return m.runAction(def, "", false)
}

// runAction validates and dispatches def through the command bus.
func (m *Model) runAction(def action.Definition, input string, confirmed bool) tea.Cmd {
	if def.ID == action.IDRefresh {
		if input == "" {
			input = "manual"
		}
		return m.requestRefresh(input)
	}
	req, err := def.Handler(m.actionContext(input, confirmed))
	if err != nil {
		m.errMsg = err.Error()
		events.Action.Rejected(def.ID, err.Error())
		return nil
	}
	cmd, ok := m.bus.Execute(req)
	if !ok {
		m.setInfo(fmt.Sprintf("%s already in progress", def.Label))
		return nil
	}
	return cmd
}

func (m *Model) unavailableReason(def action.Definition) string {
	st := m.session.State()
	switch def.ID {
	case action.IDReplay, action.IDDelete:
		if st.Active() {
			return fmt.Sprintf("not available while %s", st)
		}
	}
	if m.list.SelectionCount() == 0 {
		return "no recordings selected"
	}
	return "not available"
}
