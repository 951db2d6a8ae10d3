package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opensolutionsgroup/ddi/internal/format"
	"github.com/opensolutionsgroup/ddi/internal/glyphs"
)

// Chrome lays out the constant parts of every screen: title bar,
// content window, footer shortcut line and the log pane. It re-reads
// its dimensions from the last WindowSizeMsg on every render, so a
// resize just falls through.
type Chrome struct {
	width        int
	height       int
	logHeight    int
	version      string
	screenTitle  string
	footerHint   string
	logFocused   bool
	colors       palette
}

// NewChrome creates the screen frame with a fixed-height log pane.
func NewChrome(version string, logHeight int) *Chrome {
	return &Chrome{
		logHeight: logHeight,
		version:   version,
		colors:    defaultPalette(),
	}
}

// Resize records the current terminal dimensions.
func (c *Chrome) Resize(width, height int) {
	c.width = width
	c.height = height
}

// SetScreen sets the title shown in the title bar and the footer
// shortcut hint.
func (c *Chrome) SetScreen(title, hint string) {
	c.screenTitle = title
	c.footerHint = hint
}

// SetLogFocused switches the log pane border label.
func (c *Chrome) SetLogFocused(focused bool) { c.logFocused = focused }

// ContentHeight is the height available to the content window between
// the title bar and the log pane.
func (c *Chrome) ContentHeight() int {
	// title bar + rule + footer + log pane border rows
	h := c.height - c.logHeight - 4
	if h < 0 {
		return 0
	}
	return h
}

// ContentWidth is the usable width of the content window.
func (c *Chrome) ContentWidth() int { return c.width }

// Render assembles the full screen around the given content.
func (c *Chrome) Render(content string, buffer *LogBuffer) string {
	if c.width <= 0 || c.height <= 0 {
		return "Initializing..."
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(c.colors.primary).
		Width(c.width)
	title := fmt.Sprintf("DDI %s - %s", c.version, c.screenTitle)
	titleBar := titleStyle.Render(format.Truncate(title, c.width))

	rule := lipgloss.NewStyle().
		Foreground(c.colors.secondary).
		Render(strings.Repeat(glyphs.Get("rule"), c.width))

	body := lipgloss.NewStyle().
		Width(c.width).
		Height(c.ContentHeight()).
		Render(content)

	footer := lipgloss.NewStyle().
		Foreground(c.colors.secondary).
		Width(c.width).
		Render(format.Truncate(c.footerHint, c.width))

	return lipgloss.JoinVertical(lipgloss.Left,
		titleBar,
		rule,
		body,
		footer,
		c.renderLogPane(buffer),
	)
}

// renderLogPane draws the bordered log window with a focus-dependent
// label.
func (c *Chrome) renderLogPane(buffer *LogBuffer) string {
	label := " Log (Tab: focus) "
	borderColor := c.colors.secondary
	if c.logFocused {
		label = " Log [FOCUSED: ↑/↓ PgUp/PgDn Home/End, Tab: back] "
		borderColor = c.colors.primary
	}

	innerWidth := c.width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}
	innerHeight := c.logHeight - 2
	if innerHeight < 1 {
		innerHeight = 1
	}

	var lines []string
	for _, line := range buffer.VisibleSlice(innerHeight) {
		lines = append(lines, format.Truncate(line, innerWidth))
	}
	for len(lines) < innerHeight {
		lines = append(lines, "")
	}

	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(innerWidth).
		Render(strings.Join(lines, "\n"))

	// Stitch the label into the top border row.
	rows := strings.SplitN(pane, "\n", 2)
	if len(rows) == 2 {
		top := []rune(rows[0])
		labelRunes := []rune(format.Truncate(label, innerWidth))
		for i, r := range labelRunes {
			if i+2 < len(top)-1 {
				top[i+2] = r
			}
		}
		pane = string(top) + "\n" + rows[1]
	}
	return pane
}

// LogPaneHeight returns the inner line count of the log pane, the
// value scroll operations need.
func (c *Chrome) LogPaneHeight() int {
	h := c.logHeight - 2
	if h < 1 {
		return 1
	}
	return h
}
