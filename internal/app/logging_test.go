package app

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"Info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"ERROR", LogLevelError},
		{"verbose", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf, Prefix: "test"})

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn %d", 1)
	logger.Error("error %s", "two")

	out := buf.String()
	for _, absent := range []string{"[DEBUG]", "[INFO]"} {
		if strings.Contains(out, absent) {
			t.Errorf("output contains %s:\n%s", absent, out)
		}
	}
	for _, present := range []string{"[WARN] test: warn 1", "[ERROR] test: error two"} {
		if !strings.Contains(out, present) {
			t.Errorf("output missing %q:\n%s", present, out)
		}
	}
}

func TestLogger_FieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf})

	logger.WithField("zeta", 1).WithComponent("lsp").WithField("alpha", "a").Info("msg")

	if !strings.Contains(buf.String(), "msg {alpha=a, component=lsp, zeta=1}") {
		t.Errorf("output = %q, want sorted fields", buf.String())
	}
}

func TestLogger_DerivedSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelError, Output: &buf})
	child := logger.WithComponent("watcher")

	child.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("output = %q, want none at error level", buf.String())
	}

	logger.SetLevel(LogLevelDebug)
	child.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q, want derived logger to follow SetLevel", buf.String())
	}
	if got := child.Level(); got != LogLevelDebug {
		t.Errorf("Level() = %v, want %v", got, LogLevelDebug)
	}
}

func TestLogger_SetOutput(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf1})

	logger.Info("one")
	logger.SetOutput(&buf2)
	logger.Info("two")

	if !strings.Contains(buf1.String(), "one") || strings.Contains(buf1.String(), "two") {
		t.Errorf("buf1 = %q", buf1.String())
	}
	if !strings.Contains(buf2.String(), "two") {
		t.Errorf("buf2 = %q", buf2.String())
	}
}

func TestLogger_DisableEnable(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf})

	logger.Disable()
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Error("expected no output when disabled")
	}

	logger.Enable()
	logger.Info("shown")
	if buf.Len() == 0 {
		t.Error("expected output when enabled")
	}
}

func TestNullLogger(t *testing.T) {
	NullLogger.Debug("test")
	NullLogger.WithComponent("x").Error("test %d", 1)
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig()
	if cfg.Level != LogLevelInfo {
		t.Errorf("Level = %v, want %v", cfg.Level, LogLevelInfo)
	}
	if cfg.Output == nil {
		t.Error("Output = nil, want stderr")
	}
	if cfg.Prefix != "renamekit" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "renamekit")
	}
}
