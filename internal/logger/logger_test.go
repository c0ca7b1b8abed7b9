package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	// Warn is the default level, so only the warning reaches the file
	Info("scheduler armed")
	Warn("timer creation failed", "alarm", "workLogAlarm")

	data, err := os.ReadFile(LogFilePath(configDir))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "scheduler armed") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(out, "timer creation failed") || !strings.Contains(out, "workLogAlarm") {
		t.Errorf("warning missing from log file: %q", out)
	}
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")
	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}

	Debug("dispatch skipped", "reason", "blocked")

	data, err := os.ReadFile(LogFilePath(configDir))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "dispatch skipped") {
		t.Errorf("debug message missing from log file: %q", data)
	}
}

func TestLogFilePath(t *testing.T) {
	got := LogFilePath("/tmp/cfg")
	if got != filepath.Join("/tmp/cfg", "logs", "wurkwurk.log") {
		t.Errorf("LogFilePath() = %q", got)
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
	if With("component", "test") != nil {
		t.Error("With() before Init should return nil")
	}
}
