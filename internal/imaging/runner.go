package imaging

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// ExitResult carries the terminal state of a finished process.
type ExitResult struct {
	Code int
	Err  error // start/wait failure unrelated to the exit code
}

// Process is a running shell command whose stderr is streamed line by
// line. dd writes both its error messages and its status=progress
// reports to stderr, so stdout is left connected to the shell pipe
// and never read here.
type Process struct {
	cmd   *exec.Cmd
	lines chan string
	done  chan ExitResult
}

// StartProcess launches command under "sh -c" and begins pumping its
// stderr. The returned Process owns the child; cancel ctx to kill it.
func StartProcess(ctx context.Context, command string) (*Process, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %q: %w", command, err)
	}

	p := &Process{
		cmd:   cmd,
		lines: make(chan string, 64),
		done:  make(chan ExitResult, 1),
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanProgressLines)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
		close(p.lines)

		err := cmd.Wait()
		code := 0
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
			err = nil
		}
		p.done <- ExitResult{Code: code, Err: err}
		close(p.done)
	}()

	return p, nil
}

// scanProgressLines splits on \n like bufio.ScanLines but also on
// lone \r. dd's status=progress reports end in a carriage return so
// they can repaint in place; each one still has to arrive as its own
// line.
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			// Swallow the \n of a \r\n pair.
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// A trailing \r may be half of \r\n; wait for more data.
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Lines streams stderr output. The channel closes when the child
// closes its stderr.
func (p *Process) Lines() <-chan string { return p.lines }

// Done yields the exit result once, after Lines has closed.
func (p *Process) Done() <-chan ExitResult { return p.done }

// Signal forwards a signal to the child if it is still running.
func (p *Process) Signal(sig os.Signal) error {
	if p.cmd.Process == nil {
		return fmt.Errorf("process not started")
	}
	return p.cmd.Process.Signal(sig)
}
