package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opensolutionsgroup/ddi/internal/format"
	"github.com/opensolutionsgroup/ddi/internal/glyphs"
	"github.com/opensolutionsgroup/ddi/internal/imaging"
)

// progressRenderer draws the classic bordered progress window: the
// static From/To header is cached per invalidation, the percentage
// line, bar and stats redraw with every sample.
type progressRenderer struct {
	op     imaging.Operation
	colors palette

	sample     imaging.Sample
	haveSample bool
	errors     int

	finished bool
	success  bool
	exitCode int

	headerCache []string
	cacheWidth  int
}

func newProgressRenderer(op imaging.Operation, colors palette) *progressRenderer {
	return &progressRenderer{op: op, colors: colors}
}

func (r *progressRenderer) update(sample imaging.Sample, ranges []imaging.ErrorRange) {
	r.sample = sample
	r.haveSample = true
	r.errors = len(ranges)
}

func (r *progressRenderer) finish(success bool, code int) {
	r.finished = true
	r.success = success
	r.exitCode = code
}

func (r *progressRenderer) invalidate() {
	r.headerCache = nil
	r.cacheWidth = 0
}

// header renders the static block once per width.
func (r *progressRenderer) header(innerWidth int) []string {
	if r.headerCache != nil && r.cacheWidth == innerWidth {
		return r.headerCache
	}
	r.headerCache = []string{
		format.Truncate("From: "+r.op.SourceLabel, innerWidth),
		format.Truncate("To:   "+r.op.DestLabel, innerWidth),
		format.Truncate("Size: "+format.Bytes(r.op.TotalBytes), innerWidth),
		"",
		format.Truncate("v: block map view · Tab: log", innerWidth),
		"",
	}
	r.cacheWidth = innerWidth
	return r.headerCache
}

func (r *progressRenderer) view(width, height int) string {
	innerWidth := width - 4
	if innerWidth < 20 {
		innerWidth = 20
	}

	lines := append([]string{}, r.header(innerWidth)...)

	pct := 0.0
	if r.haveSample {
		pct = r.sample.Percentage
	}
	if r.finished && r.success {
		pct = 100
	}

	lines = append(lines, fmt.Sprintf("%6.2f%%", pct))
	lines = append(lines, renderBar(pct, innerWidth))
	lines = append(lines, "")

	if r.haveSample {
		lines = append(lines, format.Truncate(fmt.Sprintf("Copied:  %s at %s",
			format.Bytes(r.sample.Bytes), format.Rate(r.sample.Speed)), innerWidth))
		lines = append(lines, format.Truncate(fmt.Sprintf("Elapsed: %s   ETA: %s   I/O errors: %d",
			format.Clock(r.sample.Elapsed), format.Clock(r.sample.ETA), r.errors), innerWidth))
	} else {
		lines = append(lines, "Waiting for first progress report...", "")
	}

	if r.finished {
		lines = append(lines, "", r.finalLine(), "Press any key to continue")
	}

	borderColor := r.colors.primary
	if r.finished {
		if r.success {
			borderColor = r.colors.success
		} else {
			borderColor = r.colors.danger
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(format.Truncate(r.op.Name, innerWidth) + "\n\n" + strings.Join(lines, "\n"))
}

func (r *progressRenderer) finalLine() string {
	if r.success {
		return lipgloss.NewStyle().Foreground(r.colors.success).Bold(true).
			Render("Operation completed successfully")
	}
	return lipgloss.NewStyle().Foreground(r.colors.danger).Bold(true).
		Render(fmt.Sprintf("Operation FAILED (exit code %d)", r.exitCode))
}

// renderBar draws a proportional bar of filled and empty glyphs.
func renderBar(pct float64, width int) string {
	if width < 2 {
		return ""
	}
	filled := int(float64(width) * pct / 100)
	if filled > width {
		filled = width
	}
	return strings.Repeat(glyphs.Get("filled"), filled) +
		strings.Repeat(glyphs.Get("empty"), width-filled)
}
