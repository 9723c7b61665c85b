package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lepinkainen/imgconvert/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.name, got, tt.expected)
		}
	}
}

func TestNew_JSONToFallback(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(config.Logging{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("visible", "files", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 record above debug level, got %d: %q", len(lines), buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("Record is not JSON: %v", err)
	}
	if record["msg"] != "visible" || record["files"] != float64(2) {
		t.Errorf("Unexpected record: %v", record)
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "imgconvert.log")
	logger, closeFn, err := New(config.Logging{Level: "debug", Format: "console", File: path}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("to file")
	if err := closeFn(); err != nil {
		t.Fatalf("close error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("Expected record in log file, got %q", data)
	}
}
