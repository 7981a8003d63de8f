package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atomicstack/replay-control/internal/action"
	"github.com/atomicstack/replay-control/internal/format/table"
	"github.com/atomicstack/replay-control/internal/session"
	"github.com/atomicstack/replay-control/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const headerSeparator = " · "

var busySlots = []command.Slot{
	command.SlotStart,
	command.SlotPause,
	command.SlotStop,
	command.SlotReplay,
	command.SlotDelete,
	command.SlotExport,
	command.SlotImport,
	command.SlotCategorize,
	command.SlotRefresh,
}

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.header()
	switch m.mode {
	case ModePrompt:
		if m.promptForm != nil {
			return m.viewPromptForm(header)
		}
	case ModeConfirm:
		if m.confirmForm != nil {
			return m.viewConfirmForm(header)
		}
	}
	return m.viewList(header)
}

func (m *Model) viewList(header string) string {
	lines := make([]styledLine, 0, 16)
	if header != "" {
		lines = append(lines, styledLine{text: header, style: m.headerStyle()})
	}
	lines = append(lines, styledLine{text: m.replaySummary(), style: styles.Info})
	current := m.list
	m.syncViewport()
	start := 0
	displayItems := current.Items
	if maxItems := m.maxVisibleItems(); maxItems > 0 && len(displayItems) > maxItems {
		start = current.ViewportOffset
		if start < 0 {
			start = 0
		}
		if start+maxItems > len(displayItems) {
			start = len(displayItems) - maxItems
			if start < 0 {
				start = 0
			}
			current.ViewportOffset = start
		}
		displayItems = displayItems[start : start+maxItems]
	}
	if len(current.Items) == 0 {
		lines = append(lines, styledLine{text: m.emptyMessage(), style: styles.Info})
	} else {
		rows := make([][]string, len(displayItems))
		for i, item := range displayItems {
			mark := " "
			if current.IsSelected(item.Name) {
				mark = "✓"
			}
			rows[i] = []string{fmt.Sprintf("[%s] %s", mark, item.Name), item.Category}
		}
		formatted := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft})
		for i, text := range formatted {
			lines = append(lines, m.buildItemLine(text, start+i, m.width))
		}
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: info, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: m.footerText(), style: styles.Footer})
	}
	// Reserve rows for the bottom bar (status + prompt).
	lines = limitHeight(lines, m.height-2, m.width)
	lines = applyWidth(lines, m.width)

	bottomLines := []styledLine{m.statusLine()}
	promptText := m.filterPrompt()
	bottomLines = append(bottomLines, styledLine{text: promptText, raw: true})
	bottomLines = applyWidth(bottomLines, m.width)
	lines = append(lines, bottomLines...)
	return renderLines(lines)
}

func (m *Model) viewPromptForm(header string) string {
	form := m.promptForm
	lines := []styledLine{}
	if header != "" {
		lines = append(lines, styledLine{text: header, style: m.headerStyle()})
	}
	lines = append(lines, styledLine{text: form.Title(), style: styles.Header})
	if targets := form.Targets(); len(targets) > 0 {
		lines = append(lines, styledLine{text: strings.Join(targets, ", "), style: styles.Info})
	}
	lines = append(lines, styledLine{})
	lines = append(lines, styledLine{text: form.InputView(), raw: true})
	if errText := form.Error(); errText != "" {
		lines = append(lines, styledLine{text: errText, style: styles.Error})
	}
	lines = append(lines, styledLine{})
	lines = append(lines, styledLine{text: form.Help(), style: styles.Footer})
	lines = limitHeight(lines, m.height, m.width)
	lines = applyWidth(lines, m.width)
	return renderLines(lines)
}

func (m *Model) viewConfirmForm(header string) string {
	form := m.confirmForm
	lines := []styledLine{}
	if header != "" {
		lines = append(lines, styledLine{text: header, style: m.headerStyle()})
	}
	lines = append(lines, styledLine{text: form.Question(), style: styles.Warning})
	for _, name := range form.Targets() {
		lines = append(lines, styledLine{text: "  " + name, style: styles.Item})
	}
	lines = append(lines, styledLine{})
	lines = append(lines, styledLine{text: form.Help(), style: styles.Footer})
	lines = limitHeight(lines, m.height, m.width)
	lines = applyWidth(lines, m.width)
	return renderLines(lines)
}

// buildItemLine constructs a single styledLine for a catalog row.
// width is the target column width; when > 0 the text is padded so that
// the cursor row's background spans the full container.
func (m *Model) buildItemLine(text string, idx, width int) styledLine {
	indicator := "▌"
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	if idx == m.list.Cursor {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := indicator + " " + strings.TrimRight(text, " ")
	if width > 0 {
		if pad := width - len([]rune(fullText)); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1, // just the ▌ character
	}
}

// header renders the title, session state and any in-flight operations.
func (m *Model) header() string {
	segments := []string{defaultTitle}
	if m.list.Category != "" {
		segments[0] = fmt.Sprintf("%s [%s]", defaultTitle, m.list.Category)
	}
	st := m.session.State()
	state := st.String()
	if !m.session.Observed() {
		state += "?"
	}
	segments = append(segments, state)
	if st == session.Idle && m.lastFile != "" {
		segments = append(segments, "last: "+m.lastFile)
	}
	if n := m.list.SelectionCount(); n > 0 {
		segments = append(segments, fmt.Sprintf("%d selected", n))
	}
	var busy []string
	for _, slot := range busySlots {
		if m.bus.Guard().Busy(slot) {
			busy = append(busy, string(slot))
		}
	}
	if len(busy) > 0 {
		segments = append(segments, strings.Join(busy, ",")+"…")
	}
	return strings.Join(segments, headerSeparator)
}

func (m *Model) headerStyle() *lipgloss.Style {
	switch m.session.State() {
	case session.Recording:
		return styles.StatusRecording
	case session.Paused:
		return styles.StatusPaused
	}
	return styles.Header
}

func (m *Model) replaySummary() string {
	precision := "off"
	if m.replay.Precision {
		precision = "on"
	}
	return fmt.Sprintf("replay: loops %d  speed %.2fx  precision %s", m.replay.LoopCount, m.replay.Speed, precision)
}

func (m *Model) emptyMessage() string {
	switch {
	case m.list.Filter != "":
		return fmt.Sprintf("No matches for %q", m.list.Filter)
	case m.list.Category != "":
		return fmt.Sprintf("No recordings in %q", m.list.Category)
	case !m.catalog.Loaded():
		return "Loading recordings…"
	}
	return "(no recordings)"
}

// footerText lists the actions available in the current state.
func (m *Model) footerText() string {
	parts := []string{"enter select", "tab add", "ctrl+a all", "ctrl+d none", "ctrl+f category"}
	st := m.session.State()
	count := m.list.SelectionCount()
	for _, def := range m.registry.All() {
		if !action.Enabled(def.ID, st, count) {
			continue
		}
		parts = append(parts, def.Key+" "+def.Label)
	}
	parts = append(parts, "esc quit")
	return strings.Join(parts, "  ")
}

func (m *Model) statusLine() styledLine {
	if m.errMsg != "" {
		return styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	}
	if warn, msg := m.hasBackendIssue(); warn {
		return styledLine{text: fmt.Sprintf("Warning: %s", msg), style: styles.Warning}
	}
	return styledLine{}
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.syncViewport()
	return nil
}

func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := 2 // bottom bar: status + filter prompt
	used += 2 // header + replay summary
	if info := m.currentInfo(); info != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) setInfo(message string) {
	if message == "" {
		return
	}
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		result[i] = styledLine{
			text:          text,
			style:         line.style,
			prefixStyle:   line.prefixStyle,
			highlightFrom: line.highlightFrom,
			raw:           line.raw,
		}
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
