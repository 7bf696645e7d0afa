package shared

import (
	"errors"
	"os/exec"
	"testing"
)

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCmd
	t.Cleanup(func() { getRuntime, startCmd = origRuntime, origStart })

	var started []string
	startCmd = func(cmd *exec.Cmd) error {
		started = cmd.Args
		return nil
	}

	t.Run("linux", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		if err := OpenBrowser("https://www.google.com/maps/dir/?api=1&destination=5.6,-0.18"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(started) != 2 || started[0] != "xdg-open" {
			t.Errorf("unexpected command: %v", started)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("rejects non-web URLs", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		if err := OpenBrowser("file:///etc/passwd"); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("start failure", func(t *testing.T) {
		getRuntime = func() string { return "darwin" }
		startCmd = func(cmd *exec.Cmd) error { return errors.New("boom") }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected start failure to be reported")
		}
	})
}
