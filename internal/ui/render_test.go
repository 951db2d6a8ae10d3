package ui

import (
	"testing"
	"time"

	"github.com/opensolutionsgroup/ddi/internal/imaging"
)

func TestFilledCells(t *testing.T) {
	tests := []struct {
		cells int
		pct   float64
		want  int
	}{
		{100, 0, 0},
		{100, 25, 25},
		{100, 99.9, 99},
		{100, 100, 100},
		{100, 150, 100},
		{7, 50, 3},
	}
	for _, tt := range tests {
		if got := filledCells(tt.cells, tt.pct); got != tt.want {
			t.Errorf("filledCells(%d, %v) = %d, want %d", tt.cells, tt.pct, got, tt.want)
		}
	}
}

func TestBlockCellStates(t *testing.T) {
	// 10 cells of 100 bytes; fill line at cell 4; error at bytes 250-260.
	ranges := []imaging.ErrorRange{{Start: 250, End: 260}}

	tests := []struct {
		name string
		i    int
		want cellState
	}{
		{"below fill line", 1, cellComplete},
		{"error range wins", 2, cellError},
		{"at fill line", 4, cellWriting},
		{"above fill line", 7, cellPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := blockCell(tt.i, 4, 100, ranges, false, false); got != tt.want {
				t.Errorf("blockCell(%d) = %v, want %v", tt.i, got, tt.want)
			}
		})
	}
}

// The final repaint depends only on the verdict: a successful run
// fills the whole map with complete cells, a failed one with error
// cells, regardless of how far the fill line got or where errors were
// recorded along the way.
func TestBlockCellFinalStates(t *testing.T) {
	ranges := []imaging.ErrorRange{{Start: 250, End: 260}}
	for i := 0; i < 10; i++ {
		if got := blockCell(i, 4, 100, ranges, true, true); got != cellComplete {
			t.Errorf("success: cell %d = %v, want complete", i, got)
		}
		if got := blockCell(i, 4, 100, ranges, true, false); got != cellError {
			t.Errorf("failure: cell %d = %v, want error", i, got)
		}
	}
}

func TestBlockMapFailedFinishPaintsNoProgress(t *testing.T) {
	op := imaging.Operation{Name: "test", TotalBytes: 1 << 20}
	r := newBlockMapRenderer(op, defaultPalette())
	r.update(imaging.Sample{Bytes: 1 << 19, Percentage: 50}, nil)
	r.finish(false, 2)

	const totalCells, bytesPerCell = 100, 1 << 14
	for i := 0; i < totalCells; i++ {
		got := blockCell(i, filledCells(totalCells, r.sample.Percentage),
			bytesPerCell, r.ranges, r.finished, r.success)
		if got != cellError {
			t.Fatalf("cell %d = %v after failed finish, want error", i, got)
		}
	}
}

func TestBlockCellErrorSpanningCells(t *testing.T) {
	// A range crossing a cell boundary marks both cells.
	ranges := []imaging.ErrorRange{{Start: 95, End: 110}}
	if got := blockCell(0, 9, 100, ranges, false, false); got != cellError {
		t.Errorf("cell 0 = %v, want error", got)
	}
	if got := blockCell(1, 9, 100, ranges, false, false); got != cellError {
		t.Errorf("cell 1 = %v, want error", got)
	}
	if got := blockCell(2, 9, 100, ranges, false, false); got != cellComplete {
		t.Errorf("cell 2 = %v, want complete", got)
	}
}

// Drives the documented error scenario end to end: an error reported
// between the 100000 and 150000 byte counts must surface as error
// cells exactly over that interval.
func TestBlockMapTracksErrorScenario(t *testing.T) {
	start := time.Now()
	tr := imaging.NewTracker(1000000, start)
	tr.Observe("100000 bytes copied, 1 s, 100 kB/s", start.Add(time.Second))
	tr.Observe("dd: error reading '/dev/sdb': Input/output error", start.Add(time.Second))
	sample, ok := tr.Observe("150000 bytes copied, 2 s, 75 kB/s", start.Add(2*time.Second))
	if !ok {
		t.Fatal("no sample from byte-count line")
	}

	// 100 cells over 1000000 bytes: 10000 bytes per cell. The error
	// range (100000,150000) covers cells 10 through 14.
	const totalCells, bytesPerCell = 100, 10000
	filled := filledCells(totalCells, sample.Percentage)
	for i := 0; i < totalCells; i++ {
		got := blockCell(i, filled, bytesPerCell, tr.ErrorRanges(), false, false)
		inError := i >= 10 && i < 15
		if inError && got != cellError {
			t.Errorf("cell %d = %v, want error", i, got)
		}
		if !inError && got == cellError {
			t.Errorf("cell %d = error outside the reported range", i)
		}
	}
}

func TestToggleReplaysLastSample(t *testing.T) {
	op := imaging.Operation{Name: "test", TotalBytes: 1000}
	start := time.Now()
	m := &monitor{
		op:       op,
		tracker:  imaging.NewTracker(1000, start),
		mode:     imaging.ModeProgress,
		progress: newProgressRenderer(op, defaultPalette()),
		blockmap: newBlockMapRenderer(op, defaultPalette()),
	}

	if sample, ok := m.tracker.Observe("500 bytes copied, 1 s, 500 B/s", start.Add(time.Second)); ok {
		m.active().update(sample, m.tracker.ErrorRanges())
	}
	if m.blockmap.haveSample {
		t.Fatal("inactive renderer received the sample")
	}

	m.toggleMode()
	if m.mode != imaging.ModeBlockMap {
		t.Fatalf("mode = %v after toggle", m.mode)
	}
	if !m.blockmap.haveSample {
		t.Error("block map did not receive the replayed sample")
	}
	if m.blockmap.sample.Bytes != 500 {
		t.Errorf("replayed bytes = %d, want 500", m.blockmap.sample.Bytes)
	}
}

func TestProgressHeaderCacheInvalidation(t *testing.T) {
	op := imaging.Operation{Name: "test", SourceLabel: "src", DestLabel: "dst", TotalBytes: 1000}
	r := newProgressRenderer(op, defaultPalette())

	first := r.header(40)
	again := r.header(40)
	if &first[0] != &again[0] {
		t.Error("header rebuilt despite valid cache")
	}

	r.invalidate()
	rebuilt := r.header(40)
	if len(rebuilt) == 0 {
		t.Fatal("empty header after invalidation")
	}
	if &first[0] == &rebuilt[0] {
		t.Error("invalidate did not drop the cached header")
	}
}

func TestRenderBar(t *testing.T) {
	bar := renderBar(50, 10)
	if len([]rune(bar)) != 10 {
		t.Errorf("bar width = %d, want 10", len([]rune(bar)))
	}
	if bar == renderBar(0, 10) {
		t.Error("50%% bar identical to empty bar")
	}
	if renderBar(100, 10) == renderBar(50, 10) {
		t.Error("full bar identical to half bar")
	}
}
