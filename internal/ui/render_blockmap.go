package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opensolutionsgroup/ddi/internal/format"
	"github.com/opensolutionsgroup/ddi/internal/glyphs"
	"github.com/opensolutionsgroup/ddi/internal/imaging"
)

// cellState classifies one block map cell.
type cellState int

const (
	cellPending cellState = iota
	cellWriting
	cellComplete
	cellError
)

// blockCell computes the state of cell i. While running, cells whose
// byte range overlaps a recorded error range show the error glyph no
// matter what; otherwise cells below the fill line are complete, the
// cell at the fill line is being written, the rest are pending. After
// finish the grid repaints to the final verdict: every cell complete
// on success, every cell the error glyph on failure.
func blockCell(i, filled int, bytesPerCell int64, ranges []imaging.ErrorRange, finished, success bool) cellState {
	if finished {
		if success {
			return cellComplete
		}
		return cellError
	}
	start := int64(i) * bytesPerCell
	end := start + bytesPerCell
	for _, r := range ranges {
		if r.Overlaps(start, end) {
			return cellError
		}
	}
	switch {
	case i < filled:
		return cellComplete
	case i == filled:
		return cellWriting
	default:
		return cellPending
	}
}

// filledCells floors the completed cell count for a percentage.
func filledCells(totalCells int, pct float64) int {
	f := int(float64(totalCells) * pct / 100)
	if f > totalCells {
		return totalCells
	}
	return f
}

// blockMapRenderer draws the device as a grid of cells, one glyph per
// slice of the device, with I/O errors pinned to their position.
type blockMapRenderer struct {
	op     imaging.Operation
	colors palette

	sample     imaging.Sample
	haveSample bool
	ranges     []imaging.ErrorRange

	finished bool
	success  bool
	exitCode int
}

func newBlockMapRenderer(op imaging.Operation, colors palette) *blockMapRenderer {
	return &blockMapRenderer{op: op, colors: colors}
}

func (r *blockMapRenderer) update(sample imaging.Sample, ranges []imaging.ErrorRange) {
	r.sample = sample
	r.haveSample = true
	r.ranges = ranges
}

func (r *blockMapRenderer) finish(success bool, code int) {
	r.finished = true
	r.success = success
	r.exitCode = code
}

// invalidate is a no-op: the grid is recomputed from scratch on every
// view, nothing static is cached.
func (r *blockMapRenderer) invalidate() {}

func (r *blockMapRenderer) view(width, height int) string {
	innerWidth := width - 4
	if innerWidth < 20 {
		innerWidth = 20
	}
	// title, blank, legend, two stats lines, hint
	gridRows := height - 8
	if gridRows < 1 {
		gridRows = 1
	}
	totalCells := gridRows * innerWidth

	bytesPerCell := int64(1)
	if r.op.TotalBytes > 0 {
		bytesPerCell = (r.op.TotalBytes + int64(totalCells) - 1) / int64(totalCells)
	}

	pct := 0.0
	if r.haveSample {
		pct = r.sample.Percentage
	}
	if r.finished && r.success {
		pct = 100
	}
	filled := filledCells(totalCells, pct)

	glyphFor := map[cellState]string{
		cellPending:  glyphs.Get("pending"),
		cellWriting:  glyphs.Get("writing"),
		cellComplete: glyphs.Get("complete"),
		cellError:    glyphs.Get("error"),
	}
	errStyle := lipgloss.NewStyle().Foreground(r.colors.danger).Bold(true)

	var grid strings.Builder
	for row := 0; row < gridRows; row++ {
		for col := 0; col < innerWidth; col++ {
			state := blockCell(row*innerWidth+col, filled, bytesPerCell, r.ranges, r.finished, r.success)
			if state == cellError {
				grid.WriteString(errStyle.Render(glyphFor[state]))
			} else {
				grid.WriteString(glyphFor[state])
			}
		}
		if row < gridRows-1 {
			grid.WriteByte('\n')
		}
	}

	legend := format.Truncate(fmt.Sprintf("%s done  %s writing  %s pending  %s error  ·  %s per cell",
		glyphs.Get("complete"), glyphs.Get("writing"), glyphs.Get("pending"), glyphs.Get("error"),
		format.Bytes(bytesPerCell)), innerWidth)

	var stats []string
	if r.haveSample {
		stats = append(stats, format.Truncate(fmt.Sprintf("%6.2f%%  %s at %s",
			pct, format.Bytes(r.sample.Bytes), format.Rate(r.sample.Speed)), innerWidth))
		stats = append(stats, format.Truncate(fmt.Sprintf("Elapsed: %s   ETA: %s   I/O errors: %d   v: progress view",
			format.Clock(r.sample.Elapsed), format.Clock(r.sample.ETA), len(r.ranges)), innerWidth))
	} else {
		stats = append(stats, "Waiting for first progress report...", "")
	}
	if r.finished {
		stats = append(stats, r.finalLine())
	}

	borderColor := r.colors.primary
	if r.finished {
		if r.success {
			borderColor = r.colors.success
		} else {
			borderColor = r.colors.danger
		}
	}

	content := strings.Join(append([]string{
		format.Truncate(r.op.Name, innerWidth),
		"",
		grid.String(),
		legend,
	}, stats...), "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(content)
}

func (r *blockMapRenderer) finalLine() string {
	if r.success {
		return lipgloss.NewStyle().Foreground(r.colors.success).Bold(true).
			Render("Operation completed successfully. Press any key.")
	}
	return lipgloss.NewStyle().Foreground(r.colors.danger).Bold(true).
		Render(fmt.Sprintf("Operation FAILED (exit code %d). Press any key.", r.exitCode))
}
