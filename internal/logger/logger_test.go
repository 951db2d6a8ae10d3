package logger

import (
	"bytes"
	"strings"
	"testing"
)

type captureSink struct {
	lines []string
}

func (c *captureSink) Append(line string) { c.lines = append(c.lines, line) }

func TestLoggerWritesWriterAndSink(t *testing.T) {
	var buf bytes.Buffer
	sink := &captureSink{}

	log := NewWithCallback("device", func() bool { return false })
	log.SetWriter(&buf)
	log.SetSink(sink)

	log.Info("found %d devices", 3)

	if !strings.Contains(buf.String(), "found 3 devices") {
		t.Errorf("writer missing message: %q", buf.String())
	}
	if len(sink.lines) != 1 || !strings.Contains(sink.lines[0], "[device]") {
		t.Errorf("sink missing component line: %v", sink.lines)
	}
}

func TestDebugGatedByVerbose(t *testing.T) {
	var buf bytes.Buffer
	verbose := false

	log := NewWithCallback("test", func() bool { return verbose })
	log.SetWriter(&buf)

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be suppressed: %q", buf.String())
	}

	verbose = true
	log.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug should be written when verbose: %q", buf.String())
	}
}

func TestWithComponentSharesOutputs(t *testing.T) {
	var buf bytes.Buffer
	sink := &captureSink{}

	root := NewWithCallback("main", func() bool { return false })
	root.SetWriter(&buf)
	root.SetSink(sink)

	child := root.WithComponent("smart")
	child.Warn("drive has issues")

	if len(sink.lines) != 1 || !strings.Contains(sink.lines[0], "[smart]") {
		t.Errorf("child logger did not reach shared sink: %v", sink.lines)
	}
}
