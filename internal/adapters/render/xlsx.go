package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/okian/nobeldash/internal/domain/types"
)

// SheetName is the worksheet that holds exported tables.
const SheetName = "Laureates"

// Workbook writes tbl to a single-sheet XLSX. The caption, when set, takes the
// first row; the bold header row follows.
func Workbook(tbl types.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}

	row := 1
	if tbl.Caption != "" {
		if err := f.SetCellValue(SheetName, "A1", tbl.Caption); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
		row++
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	if err := setRow(f, row, tbl.Columns); err != nil {
		return nil, err
	}
	if len(tbl.Columns) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(tbl.Columns), row)
		if err := f.SetCellStyle(SheetName, first, last, bold); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
	}
	for _, r := range tbl.Rows {
		row++
		if err := setRow(f, row, r); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}
