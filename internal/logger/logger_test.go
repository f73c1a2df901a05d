package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// level tests
// =============================================================================

func TestLevelPriority_Ordering(t *testing.T) {
	if levelPriority(Debug) >= levelPriority(Info) {
		t.Error("Debug should be lower priority than Info")
	}
	if levelPriority(Info) >= levelPriority(Warn) {
		t.Error("Info should be lower priority than Warn")
	}
	if levelPriority(Warn) >= levelPriority(Error) {
		t.Error("Warn should be lower priority than Error")
	}
	if levelPriority(LogLevel("unknown")) != levelPriority(Info) {
		t.Error("unknown levels should default to Info priority")
	}
}

func TestSetLevel(t *testing.T) {
	original := minLevel
	defer func() { minLevel = original }()

	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", Debug},
		{"info", Info},
		{"warn", Warn},
		{"error", Error},
		{"invalid", Info},
		{"DEBUG", Info},
		{"", Info},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			SetLevel(tt.input)
			if minLevel != tt.expected {
				t.Errorf("SetLevel(%q): minLevel = %s, want %s", tt.input, minLevel, tt.expected)
			}
		})
	}
}

// =============================================================================
// Subscribe/Unsubscribe tests
// =============================================================================

func withCleanListeners(t *testing.T) {
	t.Helper()
	original := listeners
	listeners = make([]chan LogEntry, 0)
	t.Cleanup(func() { listeners = original })
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	withCleanListeners(t)

	ch1 := Subscribe()
	ch2 := Subscribe()
	Unsubscribe(ch1)

	if len(listeners) != 1 || listeners[0] != ch2 {
		t.Fatalf("Expected only ch2 to remain subscribed, got %d listeners", len(listeners))
	}
	if _, ok := <-ch1; ok {
		t.Error("Unsubscribed channel should be closed")
	}
}

func TestLog_BroadcastsAboveThreshold(t *testing.T) {
	withCleanListeners(t)
	original := minLevel
	defer func() { minLevel = original }()
	minLevel = Warn

	ch := Subscribe()
	Infof("filtered %d", 1)
	Warnf("kept %d", 2)

	select {
	case entry := <-ch:
		if entry.Level != Warn || entry.Message != "kept 2" {
			t.Errorf("Unexpected entry: %+v", entry)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a broadcast entry")
	}

	select {
	case entry := <-ch:
		t.Errorf("Info message should have been filtered, got %+v", entry)
	default:
	}
}

func TestStd_PrefixesMessages(t *testing.T) {
	withCleanListeners(t)
	original := minLevel
	defer func() { minLevel = original }()
	minLevel = Debug

	ch := Subscribe()
	Std("StateMachine: ").Debugf("visiting state %s", "10:00:00")

	entry := <-ch
	if entry.Message != "StateMachine: visiting state 10:00:00" {
		t.Errorf("Message = %q", entry.Message)
	}
	if entry.Level != Debug {
		t.Errorf("Level = %s, want DEBUG", entry.Level)
	}
}

func TestNop_Discards(t *testing.T) {
	withCleanListeners(t)

	ch := Subscribe()
	l := Nop()
	l.Debugf("x")
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")

	select {
	case entry := <-ch:
		t.Errorf("Nop logger should not broadcast, got %+v", entry)
	default:
	}
}

// =============================================================================
// Init tests
// =============================================================================

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	Init(dir)
	defer Close()

	Errorf("disk check %s", "ok")

	data, err := os.ReadFile(filepath.Join(dir, "unqlocked.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "[ERROR] disk check ok") {
		t.Errorf("Log file missing entry, got: %s", data)
	}
}
