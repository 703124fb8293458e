package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name   string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{" INFO ", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelWarn, false},
		{"", slog.LevelWarn, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLevel(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	saved := slog.Default()
	t.Cleanup(func() { slog.SetDefault(saved) })

	dir := t.TempDir()
	var console bytes.Buffer

	logger, closer, err := Setup(Config{Level: "info", Dir: dir, Console: &console})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger.Debug("hidden")
	logger.With("run", "r1").Info("snapshots loaded", "count", 3)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if out := console.String(); !strings.Contains(out, "snapshots loaded") || !strings.Contains(out, "run=r1") {
		t.Errorf("console output missing record: %q", out)
	}
	if strings.Contains(console.String(), "hidden") {
		t.Error("debug record should be filtered at info level")
	}

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), data)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["msg"] != "snapshots loaded" || record["count"] != 3.0 {
		t.Errorf("unexpected record: %v", record)
	}
}

func TestCacheDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if got := CacheDir(); got != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("CacheDir() = %q", got)
	}
}
