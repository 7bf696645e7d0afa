package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		WithLogger(logger, "component", "search").Info("searching", "city", "Accra")

		out := buf.String()
		if !strings.Contains(out, "searching") || !strings.Contains(out, "component=search") {
			t.Errorf("unexpected log output: %q", out)
		}
	})

	t.Run("SetLogLevel filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "outside.log")
		logger, closer, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("hello")
		if err := closer.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	data, err := MarshalJSON(map[string]int{"count": 2}, false)
	if err != nil || string(data) != `{"count":2}` {
		t.Errorf("unexpected compact output %q (%v)", data, err)
	}

	data, err = MarshalJSON(map[string]int{"count": 2}, true)
	if err != nil || !strings.Contains(string(data), "\n  \"count\": 2") {
		t.Errorf("unexpected pretty output %q (%v)", data, err)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b || len(a) != 36 {
		t.Errorf("expected distinct uuids, got %s %s", a, b)
	}
}
