package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sadopc/prodtrack/internal/report"
)

// ToCSV writes a single table, header first, to path.
func ToCSV(table report.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(table.Header); err != nil {
		return err
	}

	for _, row := range table.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatCell(v)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// ToCSVDir writes every table as <name>-<label>.csv under dir and returns
// the paths written.
func ToCSVDir(tables []report.Table, dir, label string) ([]string, error) {
	var paths []string
	for _, t := range tables {
		path := filepath.Join(dir, t.Name+"-"+label+".csv")
		if err := ToCSV(t, path); err != nil {
			return paths, fmt.Errorf("export %s: %w", t.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return fmt.Sprintf("%.1f", x)
	default:
		return fmt.Sprint(x)
	}
}
