package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{"DEBUG", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"WARNING", logrus.WarnLevel},
		{"warn", logrus.WarnLevel},
		{"ERROR", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"nonsense", logrus.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v; want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "leasesync.log")

	logger, closer := NewLogger(LogOptions{File: path, Level: "INFO"})
	logger.Info("Sync complete: 1 added, 0 updated, 0 skipped, 0 failed")
	logger.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Sync complete: 1 added") {
		t.Errorf("log file missing summary line: %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Errorf("debug line written at info level: %q", data)
	}
}

func TestNewLogger_VerboseForcesDebug(t *testing.T) {
	logger, closer := NewLogger(LogOptions{Level: "ERROR", Verbose: true})
	defer closer.Close()
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v; want debug", logger.GetLevel())
	}
}

func TestNewLogger_UnwritableFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	// a path below a regular file can never be created
	logger, closer := NewLogger(LogOptions{File: filepath.Join(blocker, "x.log")})
	defer closer.Close()
	if logger == nil {
		t.Fatal("expected a logger")
	}
}
