package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"employee-manager/internal/domain"
)

var columnWidths = []float64{8, 18, 18, 30, 24, 16, 16, 40}

// WriteEmployeeXLSX writes a single-sheet workbook with a bold, filterable
// header row. The ID column is numeric.
func WriteEmployeeXLSX(w io.Writer, sheet string, employees []domain.Employee) error {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export: sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "top",
		},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	for i, h := range employeeHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("export: header %s: %w", h, err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, columnWidths[i]); err != nil {
			return fmt.Errorf("export: column width: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(employeeHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	for r, e := range employees {
		row := toRow(e)
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var value any = v
			if c == 0 {
				value = e.ID
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("export: row %d: %w", r+1, err)
			}
		}
	}

	end, _ := excelize.CoordinatesToCellName(len(employeeHeader), len(employees)+1)
	if err := f.AutoFilter(sheet, "A1:"+end, nil); err != nil {
		return fmt.Errorf("export: autofilter: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write xlsx: %w", err)
	}
	return nil
}
