package ui

import tea "github.com/charmbracelet/bubbletea"

type promptResult struct {
	Cmd  tea.Cmd
	Info string
	Err  error
}

// withPrompt centralises what happens once a form is answered: reset the
// status line, then run the follow-up. The follow-up can return a command,
// an informational message or an error.
func (m *Model) withPrompt(next func() promptResult) tea.Cmd {
	m.forceClearInfo()
	m.errMsg = ""
	if next == nil {
		return nil
	}
	result := next()
	if result.Err != nil {
		m.errMsg = result.Err.Error()
		return nil
	}
	if result.Info != "" {
		m.setInfo(result.Info)
	}
	return result.Cmd
}
