package ui

import (
	"context"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opensolutionsgroup/ddi/internal/imaging"
	"github.com/opensolutionsgroup/ddi/internal/logger"
)

// opLineMsg is one stderr line from the running child.
type opLineMsg string

// opExitMsg reports that the child finished.
type opExitMsg imaging.ExitResult

// monitorDoneMsg tells the app the operator acknowledged the final
// screen.
type monitorDoneMsg struct {
	success bool
}

// stderrTailLimit bounds the diagnostic text kept for the success
// policy and the failure log.
const stderrTailLimit = 50

// monitor supervises one running operation: it owns the child
// process, the tracker and both renderers, and handles the keys that
// stay live while a copy runs.
type monitor struct {
	op      imaging.Operation
	proc    *imaging.Process
	tracker *imaging.Tracker
	log     *logger.Logger

	mode     imaging.DisplayMode
	progress *progressRenderer
	blockmap *blockMapRenderer

	tail     []string
	finished bool
	success  bool
	exitCode int
}

// startMonitor launches the operation's command and returns the
// monitor together with its first event-wait command.
func startMonitor(op imaging.Operation, log *logger.Logger, colors palette) (*monitor, tea.Cmd, error) {
	proc, err := imaging.StartProcess(context.Background(), op.Command)
	if err != nil {
		return nil, nil, err
	}
	log.Info("started: %s", op.Name)

	m := &monitor{
		op:       op,
		proc:     proc,
		tracker:  imaging.NewTracker(op.TotalBytes, time.Now()),
		log:      log,
		mode:     op.Mode,
		progress: newProgressRenderer(op, colors),
		blockmap: newBlockMapRenderer(op, colors),
	}
	return m, m.waitForEvent(), nil
}

// waitForEvent multiplexes the child's stderr stream and its exit.
// The runner closes the line channel before posting the exit result,
// so a closed channel simply falls through to Done.
func (m *monitor) waitForEvent() tea.Cmd {
	proc := m.proc
	return func() tea.Msg {
		line, ok := <-proc.Lines()
		if ok {
			return opLineMsg(line)
		}
		return opExitMsg(<-proc.Done())
	}
}

func (m *monitor) active() renderer {
	if m.mode == imaging.ModeBlockMap {
		return m.blockmap
	}
	return m.progress
}

// handleLine feeds one diagnostic line through the tracker and the
// active renderer.
func (m *monitor) handleLine(line string) tea.Cmd {
	m.tail = append(m.tail, line)
	if len(m.tail) > stderrTailLimit {
		m.tail = m.tail[1:]
	}

	if imaging.IsIOError(line) {
		m.log.Warn("I/O error: %s", line)
	}
	if sample, ok := m.tracker.Observe(line, time.Now()); ok {
		m.active().update(sample, m.tracker.ErrorRanges())
	}
	return m.waitForEvent()
}

// handleExit applies the success policy and locks both renderers into
// their final state.
func (m *monitor) handleExit(res imaging.ExitResult) {
	m.finished = true
	m.exitCode = res.Code
	m.success = res.Err == nil && imaging.Outcome(res.Code, strings.Join(m.tail, "\n"))

	if res.Err != nil {
		m.log.Error("operation error: %v", res.Err)
	}
	if m.success {
		m.log.Info("finished: %s (exit %d)", m.op.Name, res.Code)
	} else {
		m.log.Error("FAILED: %s (exit %d)", m.op.Name, res.Code)
	}
	if n := len(m.tracker.ErrorRanges()); n > 0 {
		m.log.Warn("%d I/O error range(s) recorded", n)
	}

	m.progress.finish(m.success, res.Code)
	m.blockmap.finish(m.success, res.Code)
}

// toggleMode switches renderers, drops the incoming renderer's cached
// chrome and replays the last sample so it paints current data
// immediately.
func (m *monitor) toggleMode() {
	m.mode = m.mode.Toggle()
	m.active().invalidate()
	if sample, ok := m.tracker.LastSample(); ok {
		m.active().update(sample, m.tracker.ErrorRanges())
	}
}

// handleKey processes keys while the monitor owns the screen. It
// returns done=true once the operator acknowledges the final screen.
// While the child runs, everything except the view toggle is ignored;
// a running copy cannot be canceled from here.
func (m *monitor) handleKey(msg tea.KeyMsg) (done bool) {
	if m.finished {
		return true
	}
	if msg.String() == "v" {
		m.toggleMode()
	}
	return false
}

// terminate asks a still-running child to stop. Used on application
// shutdown so quitting the console does not orphan a copy.
func (m *monitor) terminate() {
	if m.finished {
		return
	}
	if err := m.proc.Signal(os.Interrupt); err != nil {
		m.log.Warn("failed to signal child: %v", err)
	}
}

func (m *monitor) view(width, height int) string {
	return m.active().view(width, height)
}
