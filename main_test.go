package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/prodtrack/internal/report"
)

func TestRootCommandName(t *testing.T) {
	if rootCmd.Use != "prodtrack" {
		t.Fatalf("expected root command name prodtrack, got %q", rootCmd.Use)
	}
}

func TestParseCounts(t *testing.T) {
	counts, err := parseCounts([]string{"1=5", "2=37"})
	if err != nil {
		t.Fatal(err)
	}
	if counts[1] != 5 || counts[2] != 37 || len(counts) != 2 {
		t.Errorf("counts = %v", counts)
	}

	for _, bad := range []string{"1", "x=3", "1=many"} {
		if _, err := parseCounts([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestWriteSummary(t *testing.T) {
	s := &report.Summary{
		Scope: "2026-10-01",
		Team: report.TeamSummary{
			Members: "1/2", Time: "1:27", Productivity: 19,
			Categories: []report.CategorySummary{{
				Name: "OPS", Count: 42, Time: "1:27", ShareLabel: "100%",
				Tasks: []report.TaskSummary{{Name: "Invoices", Unit: "Tasks - 10m", Count: 5, Time: "0:50", ShareLabel: "57.5%"}},
			}},
		},
		Individuals: []report.IndividualSummary{{Name: "alice", Time: "1:27", Productivity: 19}},
	}

	var buf bytes.Buffer
	if err := writeSummary(&buf, s); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Members 1/2", "Productivity 19%", "Invoices", "Tasks - 10m", "57.5%", "alice", "No entries."} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

// run executes the CLI against the given database and returns stdout.
func run(t *testing.T, db string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--db", db}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("prodtrack %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestCommandsEndToEnd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PRODTRACK_LOGGER_LEVEL", "error")
	dir := t.TempDir()
	db := filepath.Join(dir, "prodtrack.db")

	run(t, db, "user", "add", "alice", "--email", "alice@example.com")
	run(t, db, "user", "add", "bob")
	if out := run(t, db, "user", "list"); !strings.Contains(out, "alice@example.com") || !strings.Contains(out, "bob") {
		t.Fatalf("user list:\n%s", out)
	}

	run(t, db, "task", "add", "Invoices", "--category", "ops", "--duration", "10")
	run(t, db, "task", "add", "Calls", "--category", "ops", "--mode", "time")
	if out := run(t, db, "task", "list"); !strings.Contains(out, "OPS") || !strings.Contains(out, "Calls") {
		t.Fatalf("task list:\n%s", out)
	}

	out := run(t, db, "entry", "set", "--user", "alice", "--date", "2026-10-01", "1=5", "2=37")
	if !strings.Contains(out, "1:27") || !strings.Contains(out, "19%") {
		t.Fatalf("entry set:\n%s", out)
	}

	out = run(t, db, "report", "--from", "2026-10-01")
	if !strings.Contains(out, "Members 1/2") || !strings.Contains(out, "Productivity 19%") {
		t.Fatalf("report:\n%s", out)
	}

	exportDir := filepath.Join(dir, "exports")
	out = run(t, db, "export", "--from", "2026-10-01", "--dir", exportDir)
	path := strings.TrimSpace(out)
	if filepath.Base(path) != "team-output-01-10-2026.xlsx" {
		t.Fatalf("export path = %q", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows("individual-output")
	if len(rows) != 3 {
		t.Errorf("individual rows = %d, want 3", len(rows))
	}

	run(t, db, "task", "add", "Filing", "--category", "admin", "--duration", "5")
	run(t, db, "category", "order", "admin", "1")
	run(t, db, "category", "order", "ops", "2")
	if out := run(t, db, "category", "list"); out != "ADMIN\nOPS\n" {
		t.Errorf("category list = %q", out)
	}

	run(t, db, "category", "rename", "ops", "operations")
	if out := run(t, db, "task", "list"); !strings.Contains(out, "OPERATIONS") {
		t.Errorf("rename not applied:\n%s", out)
	}

	if _, err := os.Stat(db); err != nil {
		t.Errorf("database not created: %v", err)
	}
}
