package logging

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	slog.Debug("embedding article", "article", "12")

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "article=12") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Logger().Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}

	Logger().Warn("store recovered", "path", "x.json")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected warning in output, got %q", buf.String())
	}
}
