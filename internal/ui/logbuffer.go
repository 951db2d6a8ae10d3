package ui

import "sync"

// LogBuffer is the append-only backing store of the log pane. The
// logger sink appends from outside the bubbletea loop, so a mutex
// guards the slice. Appends never fail and never block.
type LogBuffer struct {
	mu     sync.Mutex
	lines  []string
	offset int  // index of the first visible line
	follow bool // pinned to the bottom
}

// NewLogBuffer creates an empty buffer pinned to the bottom.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{follow: true}
}

// Append adds one line. It satisfies logger.Sink.
func (b *LogBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

// Len returns the number of stored lines.
func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// VisibleSlice returns the lines currently in view for a pane of the
// given height. While following, the view tracks the newest lines.
func (b *LogBuffer) VisibleSlice(height int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if height <= 0 || len(b.lines) == 0 {
		return nil
	}
	offset := b.offset
	if b.follow {
		offset = b.maxOffset(height)
	}
	offset = clamp(offset, 0, b.maxOffset(height))
	end := offset + height
	if end > len(b.lines) {
		end = len(b.lines)
	}
	out := make([]string, end-offset)
	copy(out, b.lines[offset:end])
	return out
}

// maxOffset is the bottom-most first-visible-line index. Callers hold
// the mutex.
func (b *LogBuffer) maxOffset(height int) int {
	m := len(b.lines) - height
	if m < 0 {
		return 0
	}
	return m
}

// ScrollUp moves the view n lines toward the oldest entry.
func (b *LogBuffer) ScrollUp(n, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.follow {
		b.offset = b.maxOffset(height)
		b.follow = false
	}
	b.offset = clamp(b.offset-n, 0, b.maxOffset(height))
}

// ScrollDown moves the view n lines toward the newest entry, resuming
// follow mode at the bottom.
func (b *LogBuffer) ScrollDown(n, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offset = clamp(b.offset+n, 0, b.maxOffset(height))
	if b.offset == b.maxOffset(height) {
		b.follow = true
	}
}

// ScrollToTop jumps to the oldest entry.
func (b *LogBuffer) ScrollToTop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offset = 0
	b.follow = false
}

// ScrollToBottom jumps to the newest entry and resumes following.
func (b *LogBuffer) ScrollToBottom() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.follow = true
}

// Following reports whether the view is pinned to the newest lines.
func (b *LogBuffer) Following() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.follow
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
