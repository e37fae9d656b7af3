package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sadopc/prodtrack/internal/report"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists the supported formats in picker order.
var Formats = []Format{FormatXLSX, FormatCSV, FormatJSON}

var ErrNoEntries = errors.New("no entries to export")

// Source produces the report projections an export is written from.
type Source interface {
	Summary(scope report.Scope) (*report.Summary, error)
	Sheets(scope report.Scope) (report.Sheets, error)
}

// Write exports scope in the given format into dir and returns the paths
// written. Sheet formats refuse a scope with no entries.
func Write(src Source, scope report.Scope, format Format, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	switch format {
	case FormatJSON:
		summary, err := src.Summary(scope)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, "summary-"+scope.Label()+".json")
		if err := ToJSON(summary, path); err != nil {
			return nil, err
		}
		return []string{path}, nil

	case FormatXLSX, FormatCSV:
		sheets, err := src.Sheets(scope)
		if err != nil {
			return nil, err
		}
		if sheets.Empty() {
			return nil, fmt.Errorf("%s: %w", scope, ErrNoEntries)
		}
		if format == FormatCSV {
			return ToCSVDir(sheets.Tables(), dir, scope.Label())
		}
		path := filepath.Join(dir, Filename(scope))
		if err := ToXLSX(sheets.Tables(), path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
