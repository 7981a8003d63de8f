package action

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/replay-control/internal/logging/events"
)

// Prompt requests interactive input before an action runs.
type Prompt struct {
	ActionID string
	Title    string
	Initial  string
	Targets  []string
	// Suggestions are offered by Tab completion.
	Suggestions []string
}

// PromptForm collects a single line of text for an action.
type PromptForm struct {
	input       textinput.Model
	actionID    string
	title       string
	help        string
	targets     []string
	suggestions []string
	err         string
}

func NewPromptForm(p Prompt) *PromptForm {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Focus()
	help := "Press Enter to submit. Esc to cancel."
	switch p.ActionID {
	case IDImport:
		ti.Placeholder = "path/to/recordings_export.json"
	case IDCategorize:
		ti.Placeholder = "category"
		ti.CharLimit = 64
	}
	if p.Initial != "" {
		ti.SetValue(p.Initial)
	}
	if len(p.Suggestions) > 0 {
		help = "Tab completes. Press Enter to submit. Esc to cancel."
	}
	title := p.Title
	if n := len(p.Targets); n > 0 {
		title = fmt.Sprintf("%s (%d selected)", title, n)
	}
	events.UI.Prompt(p.ActionID)
	return &PromptForm{
		input:       ti,
		actionID:    p.ActionID,
		title:       title,
		help:        help,
		targets:     append([]string(nil), p.Targets...),
		suggestions: append([]string(nil), p.Suggestions...),
	}
}

func (f *PromptForm) ActionID() string  { return f.actionID }
func (f *PromptForm) Value() string     { return strings.TrimSpace(f.input.Value()) }
func (f *PromptForm) InputView() string { return f.input.View() }
func (f *PromptForm) Title() string     { return f.title }
func (f *PromptForm) Help() string      { return f.help }
func (f *PromptForm) Error() string     { return f.err }
func (f *PromptForm) Targets() []string { return append([]string(nil), f.targets...) }

// Update feeds msg to the form. done means the value was submitted; cancel
// means the operator backed out, including submitting an empty value.
func (f *PromptForm) Update(msg tea.Msg) (cmd tea.Cmd, done bool, cancel bool) {
	if m, ok := msg.(tea.KeyMsg); ok {
		if m.String() == "ctrl+u" {
			if f.input.Value() != "" {
				f.input.SetValue("")
				f.input.CursorStart()
			}
			return nil, false, false
		}
		switch m.Type {
		case tea.KeyTab:
			if match, ok := ClosestSuggestion(f.Value(), f.suggestions); ok {
				f.input.SetValue(match)
				f.input.CursorEnd()
			}
			return nil, false, false
		case tea.KeyEsc:
			events.UI.PromptCancel(f.actionID, "escape")
			return nil, false, true
		case tea.KeyEnter:
			if f.Value() == "" {
				events.UI.PromptCancel(f.actionID, "empty")
				return nil, false, true
			}
			if f.actionID == IDImport && !strings.EqualFold(filepath.Ext(f.Value()), ".json") {
				f.err = "Import file must end in .json"
				return nil, false, false
			}
			f.err = ""
			return nil, true, false
		}
	}
	updated, cmd := f.input.Update(msg)
	f.input = updated
	return cmd, false, false
}

// ClosestSuggestion returns the candidate that best fuzzy-matches query,
// ignoring case. Ties go to the earlier candidate.
func ClosestSuggestion(query string, candidates []string) (string, bool) {
	if query == "" || len(candidates) == 0 {
		return "", false
	}
	ranks := fuzzy.RankFindNormalizedFold(query, candidates)
	if len(ranks) == 0 {
		return "", false
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})
	return ranks[0].Target, true
}

// ConfirmForm asks a yes/no question before an irreversible action.
type ConfirmForm struct {
	actionID string
	question string
	targets  []string
}

func NewConfirmForm(actionID string, targets []string) *ConfirmForm {
	question := fmt.Sprintf("Delete %d recording(s)?", len(targets))
	if len(targets) == 1 {
		question = fmt.Sprintf("Delete %s?", targets[0])
	}
	events.UI.Prompt(actionID)
	return &ConfirmForm{actionID: actionID, question: question, targets: append([]string(nil), targets...)}
}

func (f *ConfirmForm) ActionID() string  { return f.actionID }
func (f *ConfirmForm) Question() string  { return f.question }
func (f *ConfirmForm) Help() string      { return "y to confirm, n or Esc to cancel." }
func (f *ConfirmForm) Targets() []string { return append([]string(nil), f.targets...) }

// Update returns done when confirmed and cancel when declined.
func (f *ConfirmForm) Update(msg tea.Msg) (done bool, cancel bool) {
	m, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, false
	}
	switch strings.ToLower(m.String()) {
	case "y":
		return true, false
	case "n", "esc", "ctrl+c", "q":
		events.UI.PromptCancel(f.actionID, "declined")
		return false, true
	}
	return false, false
}
