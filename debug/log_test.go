package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogDisabledWritesNothing(t *testing.T) {
	Disable()
	if Enabled() {
		t.Fatal("Enabled() after Disable")
	}
	Log("fsw", "ignored %d", 1)
}

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(Disable)

	Log("led", "send cc %d value %d", 106, 3)

	out := buf.String()
	if !strings.Contains(out, "send cc 106 value 3") {
		t.Errorf("log = %q", out)
	}
	if !strings.Contains(out, "category=led") {
		t.Errorf("category attribute missing: %q", out)
	}

	SetOutput(nil)
	buf.Reset()
	Log("led", "dropped")
	if buf.Len() != 0 {
		t.Errorf("SetOutput(nil) still logs: %q", buf.String())
	}
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(Disable)

	for i := 0; i < 7; i++ {
		LogEvery(3, "midi", "tick")
	}
	if got := strings.Count(buf.String(), "tick"); got != 2 {
		t.Errorf("LogEvery wrote %d lines, want 2: %q", got, buf.String())
	}
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	Log("board", "mode %s", "Stomp")
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Debug logging started", "mode Stomp", "category=board"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q: %q", want, data)
		}
	}
}
