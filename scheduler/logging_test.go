package scheduler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	config := DefaultConfig()
	config.LogFormat = "json"

	var buf bytes.Buffer
	logger, err := config.NewLogger(&buf, "[SCHEDULER] ")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Printf("hour %d of %s", 5, "Moon")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	if record["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", record["level"])
	}
	if record["msg"] != "[SCHEDULER] hour 5 of Moon" {
		t.Errorf("msg = %v", record["msg"])
	}
}

func TestNewLoggerText(t *testing.T) {
	config := DefaultConfig()

	var buf bytes.Buffer
	logger, err := config.NewLogger(&buf, "[PLANETARY] ")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Printf("ready")

	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, `msg="[PLANETARY] ready"`) {
		t.Errorf("unexpected text output: %s", out)
	}
}

func TestNewLoggerLevelFilters(t *testing.T) {
	config := DefaultConfig()
	config.LogLevel = "warn"

	var buf bytes.Buffer
	logger, err := config.NewLogger(&buf, "")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Printf("suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected no output at warn level, got %s", buf.String())
	}
}

func TestNewLoggerErrors(t *testing.T) {
	config := DefaultConfig()
	config.LogFormat = "xml"
	if _, err := config.NewLogger(&bytes.Buffer{}, ""); err == nil {
		t.Error("expected error for unknown format")
	}

	config = DefaultConfig()
	config.LogLevel = "verbose"
	if _, err := config.NewLogger(&bytes.Buffer{}, ""); err == nil {
		t.Error("expected error for unknown level")
	}
}
