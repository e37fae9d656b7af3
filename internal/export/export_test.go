package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/prodtrack/internal/report"
)

func sampleTables() []report.Table {
	return []report.Table{
		{
			Name:   "individual-output",
			Header: report.IndividualHeader,
			Rows: [][]any{
				{"01-10-2026", "alice", "OPS", "Invoices", "Tasks", 5, 50, "1:27", 19},
				{"01-10-2026", "alice", "OPS", "Calls", "Time (m)", 37, 37, "1:27", 19},
			},
		},
		{
			Name:   "team-output",
			Header: report.TeamHeader,
			Rows: [][]any{
				{"01-10-2026", "OPS", "Invoices", "Tasks", 5, 50, 100.0, 57.5, 19},
				{"01-10-2026", "OPS", "Calls", "Time (m)", 37, 37, 100.0, 42.5, 19},
			},
		},
	}
}

func sampleScope(t *testing.T, from, to string) report.Scope {
	t.Helper()
	s, err := report.ParseScope(from, to)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// ============================================================
// XLSX
// ============================================================

func TestFilename(t *testing.T) {
	if got := Filename(sampleScope(t, "2026-10-01", "")); got != "team-output-01-10-2026.xlsx" {
		t.Errorf("single day filename = %q", got)
	}
	if got := Filename(sampleScope(t, "2026-09-28", "2026-10-02")); got != "team-output-28-09-2026_to_02-10-2026.xlsx" {
		t.Errorf("range filename = %q", got)
	}
}

func TestToXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := ToXLSX(sampleTables(), path); err != nil {
		t.Fatalf("ToXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "individual-output" || sheets[1] != "team-output" {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := f.GetRows("individual-output")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (1 header + 2 data), got %d", len(rows))
	}
	for i, h := range report.IndividualHeader {
		if rows[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}
	if rows[1][1] != "alice" || rows[1][5] != "5" || rows[1][7] != "1:27" {
		t.Errorf("first data row = %v", rows[1])
	}

	team, _ := f.GetRows("team-output")
	if team[1][7] != "57.5" {
		t.Errorf("task share cell = %q, want 57.5", team[1][7])
	}
}

func TestXLSXHeaderStyleAndWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styled.xlsx")
	if err := ToXLSX(sampleTables(), path); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	for _, sheet := range []string{"individual-output", "team-output"} {
		idx, err := f.GetCellStyle(sheet, "C1")
		if err != nil {
			t.Fatal(err)
		}
		style, err := f.GetStyle(idx)
		if err != nil {
			t.Fatal(err)
		}
		if style.Font == nil || !style.Font.Bold {
			t.Errorf("%s header is not bold", sheet)
		}

		width, err := f.GetColWidth(sheet, "I")
		if err != nil {
			t.Fatal(err)
		}
		if width != ColumnWidth {
			t.Errorf("%s column width = %v, want %d", sheet, width, ColumnWidth)
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleTables()); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("workbook not readable: %v", err)
	}
	defer f.Close()
	if len(f.GetSheetList()) != 2 {
		t.Errorf("sheets = %v", f.GetSheetList())
	}
}

func TestToXLSXHeaderOnly(t *testing.T) {
	tables := []report.Table{
		{Name: "individual-output", Header: report.IndividualHeader},
		{Name: "team-output", Header: report.TeamHeader},
	}
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := ToXLSX(tables, path); err != nil {
		t.Fatal(err)
	}
	f, _ := excelize.OpenFile(path)
	defer f.Close()
	rows, _ := f.GetRows("team-output")
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}

func TestToXLSXErrors(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "x.xlsx")
	if err := ToXLSX(nil, empty); err == nil {
		t.Error("expected error for no sheets")
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Errorf("no workbook should be left behind, stat err = %v", err)
	}
	if err := ToXLSX(sampleTables(), "/nonexistent/dir/file.xlsx"); err == nil {
		t.Error("expected error for bad path")
	}
}

// ============================================================
// CSV
// ============================================================

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	return records
}

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.csv")
	if err := ToCSV(sampleTables()[1], path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(records))
	}
	if records[0][6] != "Total Category Percentage" {
		t.Errorf("header[6] = %q", records[0][6])
	}
	row := records[1]
	if row[4] != "5" || row[6] != "100.0" || row[7] != "57.5" || row[8] != "19" {
		t.Errorf("row = %v", row)
	}
}

func TestToCSVDir(t *testing.T) {
	dir := t.TempDir()
	paths, err := ToCSVDir(sampleTables(), dir, "01-10-2026")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "individual-output-01-10-2026.csv"),
		filepath.Join(dir, "team-output-01-10-2026.csv"),
	}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("paths = %v", paths)
	}
	if got := readCSV(t, paths[0]); len(got) != 3 {
		t.Errorf("individual rows = %d", len(got))
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	table := report.Table{
		Name:   "individual-output",
		Header: []string{"Staff Name", "Task"},
		Rows:   [][]any{{`O"Brien, Pat`, "Calls, inbound"}},
	}
	path := filepath.Join(t.TempDir(), "special.csv")
	if err := ToCSV(table, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][0] != `O"Brien, Pat` || records[1][1] != "Calls, inbound" {
		t.Errorf("cells mangled: %v", records[1])
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(sampleTables()[0], "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	summary := &report.Summary{
		Scope: "2026-10-01",
		Days:  1,
		Team: report.TeamSummary{
			Members:      "1/3",
			Minutes:      87,
			Time:         "1:27",
			Productivity: 19,
		},
	}
	path := filepath.Join(t.TempDir(), "summary.json")
	if err := ToJSON(summary, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("JSON should be pretty-printed")
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.TargetMinutes != 450 {
		t.Errorf("target_minutes_per_day = %d", result.TargetMinutes)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Errorf("exported_at is not RFC3339: %q", result.ExportedAt)
	}
	if result.Summary.Team.Members != "1/3" || result.Summary.Team.Time != "1:27" {
		t.Errorf("team = %+v", result.Summary.Team)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(&report.Summary{}, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{"x", "x"},
		{42, "42"},
		{14.6, "14.6"},
		{100.0, "100.0"},
	}
	for _, tt := range tests {
		if got := formatCell(tt.v); got != tt.want {
			t.Errorf("formatCell(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

// ============================================================
// Write
// ============================================================

type fakeSource struct {
	summary *report.Summary
	sheets  report.Sheets
	err     error
}

func (f fakeSource) Summary(report.Scope) (*report.Summary, error) { return f.summary, f.err }
func (f fakeSource) Sheets(report.Scope) (report.Sheets, error) { return f.sheets, f.err }

func sampleSheets() report.Sheets {
	return report.Sheets{
		Individual: []report.IndividualRow{{
			Date: "01-10-2026", User: "alice", Category: "OPS", Task: "Invoices",
			Unit: "Tasks", Count: 5, Minutes: 50, DayTotal: "0:50", Productivity: 11,
		}},
		Team: []report.TeamRow{{
			Date: "01-10-2026", Category: "OPS", Task: "Invoices", Unit: "Tasks",
			Count: 5, Minutes: 50, CategoryShare: 100, TaskShare: 100, Productivity: 11,
		}},
	}
}

func TestWriteFormats(t *testing.T) {
	scope := sampleScope(t, "2026-10-01", "")
	src := fakeSource{summary: &report.Summary{Scope: scope.String()}, sheets: sampleSheets()}

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatXLSX, []string{"team-output-01-10-2026.xlsx"}},
		{FormatCSV, []string{"individual-output-01-10-2026.csv", "team-output-01-10-2026.csv"}},
		{FormatJSON, []string{"summary-01-10-2026.json"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested")
			paths, err := Write(src, scope, tt.format, dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(paths) != len(tt.want) {
				t.Fatalf("paths = %v", paths)
			}
			for i, p := range paths {
				if p != filepath.Join(dir, tt.want[i]) {
					t.Errorf("path[%d] = %q", i, p)
				}
				if _, err := os.Stat(p); err != nil {
					t.Error(err)
				}
			}
		})
	}
}

func TestWriteEmptyAndErrors(t *testing.T) {
	scope := sampleScope(t, "2026-10-01", "")
	dir := t.TempDir()

	if _, err := Write(fakeSource{}, scope, FormatXLSX, dir); !errors.Is(err, ErrNoEntries) {
		t.Errorf("empty sheets: %v", err)
	}
	if _, err := Write(fakeSource{}, scope, "pdf", dir); err == nil {
		t.Error("expected unknown format error")
	}
	boom := errors.New("db down")
	if _, err := Write(fakeSource{err: boom}, scope, FormatJSON, dir); !errors.Is(err, boom) {
		t.Errorf("source error not returned: %v", err)
	}
}
