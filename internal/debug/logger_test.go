package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledLoggerWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l := NewLogger(false, path)
	l.Printf("hidden %d", 1)
	l.Info("hidden")
	if l.Enabled() {
		t.Fatal("logger should be disabled")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("debug file created: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestEnabledLoggerAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l := NewLogger(true, path)
	l.Printf("turn %d", 3)
	l.Debug("action failed", "verb", "take", "reason", "can_access_direct")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	got := string(data)
	for _, want := range []string{"DEBUG MODE ENABLED", "turn 3", "verb=take", "reason=can_access_direct"} {
		if !strings.Contains(got, want) {
			t.Errorf("log is missing %q:\n%s", want, got)
		}
	}
}
