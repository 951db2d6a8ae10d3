// Package imaging models one supervised run of an external copy
// command: building the command line, launching the child process,
// parsing its progress stream, and judging the outcome.
package imaging

// DisplayMode selects how a running operation is visualized.
type DisplayMode int

const (
	ModeProgress DisplayMode = iota
	ModeBlockMap
)

func (m DisplayMode) String() string {
	if m == ModeBlockMap {
		return "blockmap"
	}
	return "progress"
}

// Toggle returns the other display mode.
func (m DisplayMode) Toggle() DisplayMode {
	if m == ModeProgress {
		return ModeBlockMap
	}
	return ModeProgress
}

// ParseDisplayMode maps a config string to a DisplayMode. Unknown
// values fall back to the progress bar.
func ParseDisplayMode(s string) DisplayMode {
	if s == "blockmap" {
		return ModeBlockMap
	}
	return ModeProgress
}

// Operation describes one copy run handed to the monitor. All fields
// except Mode are fixed once the operation starts; the operator may
// toggle Mode while it runs.
type Operation struct {
	Command     string // opaque shell command executed by the runner
	TotalBytes  int64  // expected size; 0 means unknown
	SourceLabel string
	DestLabel   string
	Name        string // title for the block map window
	Mode        DisplayMode
}

// Sample is a point-in-time progress measurement derived from one
// parsed byte-count line.
type Sample struct {
	Bytes      int64
	Elapsed    float64 // seconds since the operation started
	Speed      float64 // bytes per second, 0 when elapsed <= 0
	Percentage float64 // clamped to [0, 100]; 0 when total is 0
	ETA        float64 // seconds remaining, -1 when undefined
}

// ErrorRange is a half-open byte interval [Start, End) during which
// the child process reported an I/O error. Ranges are appended in
// observation order and never merged or removed.
type ErrorRange struct {
	Start int64
	End   int64
}

// Overlaps reports whether the half-open interval [start, end)
// intersects this range.
func (r ErrorRange) Overlaps(start, end int64) bool {
	return start < r.End && r.Start < end
}
