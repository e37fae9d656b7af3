package export

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/prodtrack/internal/report"
)

// ColumnWidth is the fixed width applied to every workbook column.
const ColumnWidth = 15

// Filename is the workbook name for a report scope.
func Filename(scope report.Scope) string {
	return "team-output-" + scope.Label() + ".xlsx"
}

// ToXLSX writes one worksheet per table to path.
func ToXLSX(tables []report.Table, path string) error {
	if len(tables) == 0 {
		return fmt.Errorf("build workbook: no sheets")
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	if err := WriteXLSX(out, tables); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteXLSX streams the workbook to w.
func WriteXLSX(w io.Writer, tables []report.Table) error {
	f, err := buildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(tables []report.Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("build workbook: no sheets")
	}
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	// NewFile starts with Sheet1; rename it for the first table.
	if err := f.SetSheetName("Sheet1", tables[0].Name); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for i, t := range tables {
		if i > 0 {
			if _, err := f.NewSheet(t.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("add sheet %s: %w", t.Name, err)
			}
		}
		if err := writeSheet(f, t, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %s: %w", t.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, t report.Table, headerStyle int) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(max(len(t.Header), 1))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(t.Name, "A", lastCol, ColumnWidth); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
