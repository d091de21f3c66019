package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFromVerbosity(t *testing.T) {
	specs := []struct {
		verbose     bool
		veryVerbose bool
		expLevel    Level
	}{
		{false, false, Notice},
		{true, false, Info},
		{false, true, Debug},
		{true, true, Debug},
	}

	for specIndex, spec := range specs {
		level := LevelFromVerbosity(spec.verbose, spec.veryVerbose)
		if level != spec.expLevel {
			t.Fatalf("[spec %d] expected level %d; got %d", specIndex, spec.expLevel, level)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(&bytes.Buffer{})

	SetLevel(Notice)
	logger := New("filter test")
	logger.Debug("hidden debug")
	logger.Notice("visible notice")

	out := buf.String()
	if strings.Contains(out, "hidden debug") {
		t.Fatalf("expected debug message to be filtered; got %q", out)
	}
	if !strings.Contains(out, "visible notice") || !strings.Contains(out, "[filter test]") {
		t.Fatalf("expected notice message with module name; got %q", out)
	}

	buf.Reset()
	SetLevel(Debug)
	defer SetLevel(Notice)
	logger.Debug("shown debug")
	if !strings.Contains(buf.String(), "shown debug") {
		t.Fatalf("expected debug message after raising verbosity; got %q", buf.String())
	}
}
