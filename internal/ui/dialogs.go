package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opensolutionsgroup/ddi/internal/format"
	"github.com/opensolutionsgroup/ddi/internal/glyphs"
)

// dialogResult is the outcome of a closed dialog. A canceled dialog
// carries index -1 and no other meaning.
type dialogResult struct {
	canceled bool
	index    int
	text     string
	yes      bool
}

func cancelResult() *dialogResult {
	return &dialogResult{canceled: true, index: -1}
}

// dialog is one modal interaction. Handle methods return a non-nil
// result when the dialog closes; the dialog value itself may be
// replaced (bubbles components update by value).
type dialog interface {
	handleKey(msg tea.KeyMsg) (dialog, *dialogResult)
	handleMouse(msg tea.MouseMsg) (dialog, *dialogResult)
	view(width int, colors palette) string
}

// dialogBoxTop is the screen row of the first line inside a dialog
// border: title bar on row 0, rule on 1, border row on 2.
const dialogBoxTop = 3

// renderDialogBox draws the shared dialog frame.
func renderDialogBox(title string, lines []string, width int, colors palette, borderColor lipgloss.AdaptiveColor) string {
	innerWidth := width - 6
	if innerWidth < 10 {
		innerWidth = 10
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(colors.primary)
	body := []string{titleStyle.Render(format.Truncate(title, innerWidth)), ""}
	for _, line := range lines {
		body = append(body, format.Truncate(line, innerWidth))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(strings.Join(body, "\n"))
}

// --- menu ---

// menuDialog is a vertical selection list. Digits 1-9 activate an item
// directly; a left click on an item row activates it like Enter.
type menuDialog struct {
	title    string
	items    []string
	selected int
}

func newMenu(title string, items []string) *menuDialog {
	return &menuDialog{title: title, items: items}
}

// itemRow maps an item index to its absolute screen row: the dialog
// title sits at dialogBoxTop, then a blank line, then the items.
func (m *menuDialog) itemRow(i int) int {
	return dialogBoxTop + 2 + i
}

func (m *menuDialog) handleKey(msg tea.KeyMsg) (dialog, *dialogResult) {
	key := msg.String()
	switch key {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case "home":
		m.selected = 0
	case "end":
		m.selected = len(m.items) - 1
	case "enter", " ":
		return m, &dialogResult{index: m.selected}
	case "esc", "q", "Q":
		return m, cancelResult()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.items) {
				return m, &dialogResult{index: i}
			}
		}
	}
	return m, nil
}

func (m *menuDialog) handleMouse(msg tea.MouseMsg) (dialog, *dialogResult) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Action == tea.MouseActionPress && m.selected > 0 {
			m.selected--
		}
	case tea.MouseButtonWheelDown:
		if msg.Action == tea.MouseActionPress && m.selected < len(m.items)-1 {
			m.selected++
		}
	case tea.MouseButtonRight:
		if msg.Action == tea.MouseActionRelease {
			return m, cancelResult()
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionRelease {
			return m, nil
		}
		for i := range m.items {
			if msg.Y == m.itemRow(i) {
				m.selected = i
				return m, &dialogResult{index: i}
			}
		}
	}
	return m, nil
}

func (m *menuDialog) view(width int, colors palette) string {
	pointer := glyphs.Get("pointer")
	blank := strings.Repeat(" ", len([]rune(pointer)))

	var lines []string
	for i, item := range m.items {
		label := fmt.Sprintf("%d. %s", i+1, item)
		if i >= 9 {
			label = "   " + item
		}
		if i == m.selected {
			lines = append(lines, lipgloss.NewStyle().
				Bold(true).
				Foreground(colors.primary).
				Background(colors.selected).
				Render(pointer+label))
		} else {
			lines = append(lines, blank+label)
		}
	}
	lines = append(lines, "", "↑/↓ move · Enter select · Esc cancel")
	return renderDialogBox(m.title, lines, width, colors, colors.primary)
}

// --- text input ---

// textDialog asks for one line of text. Enter submits (the default
// value when left empty); Esc submits empty so callers can fall back.
type textDialog struct {
	title   string
	prompt  string
	defval  string
	input   textinput.Model
}

func newTextDialog(title, prompt, defval string) *textDialog {
	ti := textinput.New()
	ti.Placeholder = defval
	ti.Focus()
	ti.CharLimit = 128
	return &textDialog{title: title, prompt: prompt, defval: defval, input: ti}
}

func (d *textDialog) handleKey(msg tea.KeyMsg) (dialog, *dialogResult) {
	switch msg.String() {
	case "enter":
		value := strings.TrimSpace(d.input.Value())
		if value == "" {
			value = d.defval
		}
		return d, &dialogResult{text: value}
	case "esc":
		return d, &dialogResult{text: ""}
	}
	d.input, _ = d.input.Update(msg)
	return d, nil
}

func (d *textDialog) handleMouse(tea.MouseMsg) (dialog, *dialogResult) {
	// Text entry ignores the mouse entirely.
	return d, nil
}

func (d *textDialog) view(width int, colors palette) string {
	lines := []string{d.prompt, "", d.input.View(), "", "Enter accept · Esc skip"}
	return renderDialogBox(d.title, lines, width, colors, colors.primary)
}

// --- confirmation ---

// confirmDialog is a y/n question. Anything that is not yes is no.
type confirmDialog struct {
	title string
	lines []string
}

func newConfirm(title string, lines ...string) *confirmDialog {
	return &confirmDialog{title: title, lines: lines}
}

func (d *confirmDialog) handleKey(msg tea.KeyMsg) (dialog, *dialogResult) {
	switch msg.String() {
	case "y", "Y":
		return d, &dialogResult{yes: true}
	case "n", "N", "esc", "q", "enter":
		return d, &dialogResult{yes: false}
	}
	return d, nil
}

func (d *confirmDialog) handleMouse(msg tea.MouseMsg) (dialog, *dialogResult) {
	if msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionRelease {
		return d, &dialogResult{yes: false}
	}
	return d, nil
}

func (d *confirmDialog) view(width int, colors palette) string {
	lines := append([]string{}, d.lines...)
	lines = append(lines, "", "y = yes · n = no")
	return renderDialogBox(d.title, lines, width, colors, colors.warning)
}

// --- final warning ---

// finalWarningDialog gates destructive operations: the operator must
// type YES (case-insensitive). Anything else cancels.
type finalWarningDialog struct {
	title string
	lines []string
	input textinput.Model
}

func newFinalWarning(title string, lines ...string) *finalWarningDialog {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 8
	return &finalWarningDialog{title: title, lines: lines, input: ti}
}

func (d *finalWarningDialog) handleKey(msg tea.KeyMsg) (dialog, *dialogResult) {
	switch msg.String() {
	case "enter":
		yes := strings.EqualFold(strings.TrimSpace(d.input.Value()), "YES")
		return d, &dialogResult{yes: yes, canceled: !yes}
	case "esc":
		return d, cancelResult()
	}
	d.input, _ = d.input.Update(msg)
	return d, nil
}

func (d *finalWarningDialog) handleMouse(tea.MouseMsg) (dialog, *dialogResult) {
	return d, nil
}

func (d *finalWarningDialog) view(width int, colors palette) string {
	warn := glyphs.Get("warning")
	lines := []string{warn + " THIS OPERATION DESTROYS DATA " + warn, ""}
	lines = append(lines, d.lines...)
	lines = append(lines, "", "Type YES to proceed:", d.input.View())
	return renderDialogBox(d.title, lines, width, colors, colors.danger)
}

// --- message box ---

// messageDialog shows information until any key is pressed.
type messageDialog struct {
	title string
	lines []string
}

func newMessage(title string, lines ...string) *messageDialog {
	return &messageDialog{title: title, lines: lines}
}

func (d *messageDialog) handleKey(tea.KeyMsg) (dialog, *dialogResult) {
	return d, &dialogResult{}
}

func (d *messageDialog) handleMouse(msg tea.MouseMsg) (dialog, *dialogResult) {
	if msg.Action == tea.MouseActionRelease &&
		(msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonRight) {
		return d, &dialogResult{}
	}
	return d, nil
}

func (d *messageDialog) view(width int, colors palette) string {
	lines := append([]string{}, d.lines...)
	lines = append(lines, "", "Press any key to continue")
	return renderDialogBox(d.title, lines, width, colors, colors.secondary)
}
