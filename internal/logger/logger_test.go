package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLoggerDiscards(t *testing.T) {
	Nop()
	// Must not panic before Init.
	Info("hello")
	Sugar.Debugf("frame %d", 1)
	Sync()
}

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{level: "error", expected: []string{"ERROR"}, excluded: []string{"WARN", "INFO", "DEBUG"}},
		{level: "warn", expected: []string{"ERROR", "WARN"}, excluded: []string{"INFO", "DEBUG"}},
		{level: "info", expected: []string{"ERROR", "WARN", "INFO"}, excluded: []string{"DEBUG"}},
		{level: "debug", expected: []string{"ERROR", "WARN", "INFO", "DEBUG"}},
		{level: "bogus", expected: []string{"INFO"}, excluded: []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")
			opts := DefaultOptions()
			opts.Level = tt.level
			opts.Console = false
			opts.FilePath = logFile
			opts.Compress = false
			if err := Init(opts); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			defer Nop()

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			levels := readLevels(t, logFile)
			for _, exp := range tt.expected {
				if !levels[exp] {
					t.Errorf("expected %s entry in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if levels[exc] {
					t.Errorf("unexpected %s entry for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestInitWithoutSinks(t *testing.T) {
	opts := DefaultOptions()
	opts.Console = false
	if err := Init(opts); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Nop()
	Error("goes nowhere")
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Level != "info" {
		t.Errorf("Level = %q, want info", opts.Level)
	}
	if !opts.Console {
		t.Error("expected console output by default")
	}
	if opts.FilePath != "" {
		t.Errorf("FilePath = %q, want empty", opts.FilePath)
	}
	if opts.MaxBackups != 3 {
		t.Errorf("MaxBackups = %d, want 3", opts.MaxBackups)
	}
}

func readLevels(t *testing.T, path string) map[string]bool {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	levels := make(map[string]bool)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry struct {
			Level string `json:"level"`
		}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		levels[entry.Level] = true
	}
	return levels
}
