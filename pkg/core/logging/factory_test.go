package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	sslog "github.com/frle10/smartscript/foundation/core/log"
)

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("server")

	if cfg.Name != "server" {
		t.Errorf("Name = %v, want server", cfg.Name)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %v, want json", cfg.Format)
	}
}

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		level    string
		expected sslog.Level
	}{
		{"trace", sslog.LevelTrace},
		{"debug", sslog.LevelDebug},
		{"info", sslog.LevelInfo},
		{"warning", sslog.LevelWarn},
		{"ERROR", sslog.LevelError},
		{"", sslog.LevelInfo},
		{"verbose", sslog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(LoggerConfig{Name: "test", Level: tt.level, Output: &bytes.Buffer{}})
			if got := logger.GetLevel(); got != tt.expected {
				t.Errorf("level = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Name: "server", Level: "debug", Format: "json", Output: &buf})

	logger.Debug("script loaded", sslog.Fields{"script": "index.smscr"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["logger"] != "server" {
		t.Errorf("logger = %v, want server", entry["logger"])
	}
	if entry["script"] != "index.smscr" {
		t.Errorf("script = %v, want index.smscr", entry["script"])
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Name: "cli", Level: "info", Format: "text", Output: &buf})

	logger.Info("rendered")

	if !strings.Contains(buf.String(), "rendered") || strings.HasPrefix(buf.String(), "{") {
		t.Errorf("unexpected text output %q", buf.String())
	}
}

func TestNewLogger_AdditionalOutputs(t *testing.T) {
	var primary, extra bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Name:              "server",
		Output:            &primary,
		AdditionalOutputs: []io.Writer{&extra},
	})

	logger.Info("one")

	if primary.Len() == 0 {
		t.Error("primary output is empty")
	}
	if primary.String() != extra.String() {
		t.Errorf("outputs differ: %q vs %q", primary.String(), extra.String())
	}
}

func TestNewCLILogger(t *testing.T) {
	if got := NewCLILogger("cli", false).GetLevel(); got != sslog.LevelWarn {
		t.Errorf("quiet level = %v, want warn", got)
	}
	if got := NewCLILogger("cli", true).GetLevel(); got != sslog.LevelDebug {
		t.Errorf("verbose level = %v, want debug", got)
	}
}
