package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Sink receives formatted log lines. The TUI log pane implements this
// so every component's messages stay visible to the operator.
type Sink interface {
	Append(line string)
}

// VerboseChecker interface for checking verbose state
type VerboseChecker interface {
	IsVerbose() bool
}

// Logger provides leveled logging to a writer (normally the log file)
// and an optional Sink shared with the UI.
type Logger struct {
	component      string
	verboseChecker VerboseChecker

	mu     *sync.Mutex
	writer io.Writer
	sink   Sink
}

// New creates a new logger instance writing to stderr until a file or
// sink is attached.
func New(component string, verboseChecker VerboseChecker) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: verboseChecker,
		mu:             &sync.Mutex{},
		writer:         os.Stderr,
	}
}

// NewWithCallback creates a new logger instance with a callback function
func NewWithCallback(component string, verboseCheck func() bool) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: &callbackChecker{callback: verboseCheck},
		mu:             &sync.Mutex{},
		writer:         os.Stderr,
	}
}

// WithComponent creates a logger with a specific component name that
// shares this logger's writer and sink.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: l.verboseChecker,
		mu:             l.mu,
		writer:         l.writer,
		sink:           l.sink,
	}
}

// SetWriter replaces the log destination, normally with the log file.
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// SetSink attaches the UI sink. A nil sink detaches it.
func (l *Logger) SetSink(s Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink = s
}

// callbackChecker implements VerboseChecker with a callback function
type callbackChecker struct {
	callback func() bool
}

func (c *callbackChecker) IsVerbose() bool {
	if c.callback == nil {
		return false
	}
	return c.callback()
}

// Debug logs debug messages (only when verbose=true)
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.verboseChecker != nil && l.verboseChecker.IsVerbose() {
		l.log("DEBUG", msg, args...)
	}
}

// Info logs informational messages
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log("INFO", msg, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log("WARN", msg, args...)
}

// Error logs error messages
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log("ERROR", msg, args...)
}

// log formats and writes log message
func (l *Logger) log(level, msg string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05")
	component := l.component
	if component == "" {
		component = "main"
	}

	formattedMsg := fmt.Sprintf(msg, args...)
	logLine := fmt.Sprintf("%s %s [%s] %s", timestamp, level, component, formattedMsg)

	l.mu.Lock()
	writer := l.writer
	sink := l.sink
	l.mu.Unlock()

	if writer != nil {
		if _, err := fmt.Fprintln(writer, logLine); err != nil {
			// Log write failed, but we can't do much about it
			// since this is the logger itself
			_ = err
		}
	}
	if sink != nil {
		sink.Append(logLine)
	}
}
