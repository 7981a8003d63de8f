package ui

import (
	"github.com/atomicstack/replay-control/internal/action"
	tea "github.com/charmbracelet/bubbletea"
)

// handlePromptForm routes key presses to the open prompt. Other messages
// still reach the model so results and polls keep flowing.
func (m *Model) handlePromptForm(msg tea.Msg) (bool, tea.Cmd) {
	if m.promptForm == nil {
		m.mode = ModeList
		return false, nil
	}
	if _, ok := msg.(tea.KeyMsg); !ok {
		cmd, _, _ := m.promptForm.Update(msg)
		return false, cmd
	}
	cmd, done, cancel := m.promptForm.Update(msg)
	if cancel {
		m.promptForm = nil
		m.mode = ModeList
		return true, cmd
	}
	if done {
		id := m.promptForm.ActionID()
		value := m.promptForm.Value()
		m.promptForm = nil
		m.mode = ModeList
		def, ok := m.registry.Find(id)
		if !ok {
			return true, cmd
		}
		return true, m.withPrompt(func() promptResult {
			return promptResult{Cmd: m.runAction(def, value, false)}
		})
	}
	return true, cmd
}

func (m *Model) handleConfirmForm(msg tea.Msg) (bool, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = ModeList
		return false, nil
	}
	if _, ok := msg.(tea.KeyMsg); !ok {
		return false, nil
	}
	done, cancel := m.confirmForm.Update(msg)
	if cancel {
		m.confirmForm = nil
		m.mode = ModeList
		return true, nil
	}
	if done {
		id := m.confirmForm.ActionID()
		m.confirmForm = nil
		m.mode = ModeList
		def, ok := m.registry.Find(id)
		if !ok {
			return true, nil
		}
		return true, m.withPrompt(func() promptResult {
			return promptResult{Cmd: m.runAction(def, "", true)}
		})
	}
	return true, nil
}

func (m *Model) startPromptForm(def action.Definition) {
	var suggestions []string
	if def.ID == action.IDCategorize {
		suggestions = m.catalog.Categories()
	}
	m.promptForm = action.NewPromptForm(action.Prompt{
		ActionID:    def.ID,
		Title:       def.Prompt,
		Initial:     m.promptInitial(def.ID),
		Targets:     m.list.SelectedNames(),
		Suggestions: suggestions,
	})
	m.mode = ModePrompt
}

func (m *Model) startConfirmForm(def action.Definition) {
	m.confirmForm = action.NewConfirmForm(def.ID, m.list.SelectedNames())
	m.mode = ModeConfirm
}

// promptInitial pre-fills the categorize prompt with the shared category of
// the selection, if there is one.
func (m *Model) promptInitial(id string) string {
	if id != action.IDCategorize {
		return ""
	}
	category := ""
	for i, name := range m.list.SelectedNames() {
		idx := m.list.IndexOf(name)
		if idx < 0 {
			return ""
		}
		c := m.list.Items[idx].Category
		if i == 0 {
			category = c
			continue
		}
		if c != category {
			return ""
		}
	}
	return category
}
