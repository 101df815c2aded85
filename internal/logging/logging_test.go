package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenWritesLogfmt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	logger, closeFn, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := logger.Log("event", EventRunStarted, "source", "coin", "trials", 1000); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{"ts=", "event=run_started", "source=coin", "trials=1000"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %q: %s", want, line)
		}
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	for i := 0; i < 2; i++ {
		logger, closeFn, err := Open(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := logger.Log("event", EventRunCompleted); err != nil {
			t.Fatalf("log %d: %v", i, err)
		}
		if err := closeFn(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if got := strings.Count(string(data), "event=run_completed"); got != 2 {
		t.Errorf("want 2 appended lines, got %d", got)
	}
}

func TestOpenEmptyPathIsNop(t *testing.T) {
	logger, closeFn, err := Open("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := logger.Log("event", EventRunCanceled); err != nil {
		t.Fatalf("nop log: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
}

func TestOpenBadPath(t *testing.T) {
	_, _, err := Open(filepath.Join(t.TempDir(), "missing", "run.log"))
	if err == nil {
		t.Fatal("want error for unwritable path")
	}
	if !strings.Contains(err.Error(), "open log file") {
		t.Errorf("error missing context: %v", err)
	}
}
