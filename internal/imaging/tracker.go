package imaging

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// byteCountRe matches the copy tool's periodic progress report: a
// decimal byte count followed by the token "bytes".
var byteCountRe = regexp.MustCompile(`(\d+)\s+bytes`)

// ioErrorRe matches the diagnostic phrases dd emits when it hits a
// read/write fault but keeps going (conv=noerror).
var ioErrorRe = regexp.MustCompile(`(?i)(error reading|error writing|Input/output error|Cannot allocate memory)`)

// Tracker turns the child's diagnostic lines into progress samples and
// error ranges. It is not safe for concurrent use; the monitor owns it.
type Tracker struct {
	total int64
	start time.Time

	lastBytes    int64
	pendingError int64
	hasPending   bool
	ranges       []ErrorRange
	lastSample   Sample
	haveSample   bool
}

// NewTracker creates a tracker for an operation of the given total
// size, measuring elapsed time from now.
func NewTracker(totalBytes int64, now time.Time) *Tracker {
	return &Tracker{total: totalBytes, start: now}
}

// Observe processes one diagnostic line. It returns the derived sample
// and true when the line carried a byte count; other lines (including
// pure error lines) return false.
func (t *Tracker) Observe(line string, now time.Time) (Sample, bool) {
	if ioErrorRe.MatchString(line) {
		// Remember where the error happened; the range closes at the
		// next reported byte count.
		t.pendingError = t.lastBytes
		t.hasPending = true
	}

	m := byteCountRe.FindStringSubmatch(line)
	if m == nil {
		return Sample{}, false
	}

	bytes, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Sample{}, false
	}

	if t.hasPending {
		t.ranges = append(t.ranges, ErrorRange{Start: t.pendingError, End: bytes})
		t.hasPending = false
	}

	sample := ComputeSample(bytes, t.total, now.Sub(t.start).Seconds())
	// A decreasing byte count is accepted as a fresh sample; dd restarts
	// its counter on multi-pass invocations.
	t.lastBytes = bytes
	t.lastSample = sample
	t.haveSample = true
	return sample, true
}

// ComputeSample derives a Sample from a byte count, the expected total
// and the elapsed seconds.
func ComputeSample(bytes, total int64, elapsed float64) Sample {
	s := Sample{Bytes: bytes, Elapsed: elapsed, ETA: -1}
	if elapsed > 0 {
		s.Speed = float64(bytes) / elapsed
	}
	if total > 0 {
		s.Percentage = float64(bytes) / float64(total) * 100
		if s.Percentage > 100 {
			s.Percentage = 100
		}
	}
	if s.Speed > 0 && total > 0 {
		s.ETA = float64(total-bytes) / s.Speed
		if s.ETA < 0 {
			s.ETA = 0
		}
	}
	return s
}

// ErrorRanges returns the ranges recorded so far. The slice is shared;
// callers must treat it as read-only.
func (t *Tracker) ErrorRanges() []ErrorRange {
	return t.ranges
}

// LastSample returns the most recent sample and whether one exists.
func (t *Tracker) LastSample() (Sample, bool) {
	return t.lastSample, t.haveSample
}

// IsIOError reports whether a diagnostic line matches the I/O error
// phrases, for logging purposes.
func IsIOError(line string) bool {
	return ioErrorRe.MatchString(line)
}

// Outcome applies the success policy to a finished operation: exit
// code 0 succeeds, and exit code 1 succeeds only when the diagnostic
// text contains "No space left on device", the expected terminal
// condition when the target fills up before the source runs out.
func Outcome(exitCode int, stderrText string) bool {
	if exitCode == 0 {
		return true
	}
	if exitCode == 1 && strings.Contains(stderrText, "No space left on device") {
		return true
	}
	return false
}
