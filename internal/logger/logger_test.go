package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	log, err := New(config.LoggerConfig{Level: "info", Encoding: "json", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("saved entry", zap.Int64("user_id", 3))
	log.Debug("hidden")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"saved entry"`) || !strings.Contains(out, `"user_id":3`) {
		t.Errorf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug message written at info level")
	}
}

func TestNewConsoleEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	log, err := New(config.LoggerConfig{Level: "debug", Encoding: "console", File: path})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("report aggregated")
	log.Sync()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "DEBUG") || !strings.Contains(string(data), "report aggregated") {
		t.Errorf("unexpected console output: %s", data)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(config.LoggerConfig{Level: "loud"}); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := New(config.LoggerConfig{Level: "info", Encoding: "xml"}); err == nil {
		t.Error("expected error for bad encoding")
	}
}

func TestForTUIDefaultsNextToDatabase(t *testing.T) {
	dir := t.TempDir()
	log, err := ForTUI(config.LoggerConfig{Level: "info"}, filepath.Join(dir, "prodtrack.db"))
	if err != nil {
		t.Fatal(err)
	}
	log.Info("started")
	log.Sync()

	if _, err := os.Stat(filepath.Join(dir, "prodtrack.log")); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}
