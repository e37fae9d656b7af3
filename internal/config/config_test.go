package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sadopc/prodtrack/internal/report"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "Australia/Sydney" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.Report.Labels != report.LabelsLive {
		t.Errorf("labels = %q", cfg.Report.Labels)
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Encoding != "console" {
		t.Errorf("logger = %+v", cfg.Logger)
	}
	if filepath.Base(cfg.Database.Path) != "prodtrack.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/team.db
timezone: Europe/London
logger:
  level: debug
  encoding: json
export:
  dir: /tmp/exports
report:
  labels: snapshot
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/team.db" || cfg.Timezone != "Europe/London" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Logger.Encoding != "json" || cfg.Export.Dir != "/tmp/exports" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Report.Labels != report.LabelsSnapshot {
		t.Errorf("labels = %q", cfg.Report.Labels)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "timezone: Europe/London\n")
	t.Setenv("PRODTRACK_TIMEZONE", "Asia/Tokyo")
	t.Setenv("PRODTRACK_DATABASE_PATH", "/tmp/env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timezone != "Asia/Tokyo" || cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit file")
	}
	if _, err := Load(writeConfig(t, "report:\n  labels: sometimes\n")); err == nil {
		t.Error("expected error for bad labels")
	}
	if _, err := Load(writeConfig(t, "timezone: Mars/Olympus\n")); err == nil {
		t.Error("expected error for bad timezone")
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Australia/Sydney"}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatal(err)
	}
	if loc.String() != "Australia/Sydney" {
		t.Errorf("loc = %s", loc)
	}
}
