package export

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const maxColumnWidth = 60

// WriteXLSX renders wb as an .xlsx document with a bold header row on every sheet
func WriteXLSX(w io.Writer, wb *Workbook) error {
	if len(wb.Sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range wb.Sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return fmt.Errorf("failed to rename sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet.Name, err)
		}

		if err := writeRows(f, sheet); err != nil {
			return err
		}
		if len(sheet.Rows) > 0 {
			if err := f.SetRowStyle(sheet.Name, 1, 1, headerStyle); err != nil {
				return fmt.Errorf("failed to style header of %q: %w", sheet.Name, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet Sheet) error {
	widths := make(map[int]int)
	for r, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", r+1, err)
		}
		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = v
			if n := utf8.RuneCountInString(v); n > widths[c] {
				widths[c] = n
			}
		}
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", r+1, sheet.Name, err)
		}
	}

	for c, width := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return fmt.Errorf("failed to address column %d: %w", c+1, err)
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(sheet.Name, col, col, float64(width+2)); err != nil {
			return fmt.Errorf("failed to size column %s of %q: %w", col, sheet.Name, err)
		}
	}
	return nil
}

// SaveXLSX writes wb to path
func SaveXLSX(path string, wb *Workbook) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteXLSX(file, wb); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// Values converts a sheet into the generic cell grid used by spreadsheet APIs
func (s Sheet) Values() [][]interface{} {
	values := make([][]interface{}, len(s.Rows))
	for i, row := range s.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}
	return values
}
