package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/anthonymoser/cps-positions/internal/types"
)

// DefaultSheet is the worksheet name used by WriteXLSX when none is given.
const DefaultSheet = "Positions"

// WriteXLSX writes the table to w as a single-sheet workbook. Whole-number
// cells in the positions column are stored as numbers so spreadsheets can
// sum them.
func WriteXLSX(w io.Writer, table types.Table, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	positionsCol := table.ColumnIndex(types.ColumnPositions)
	for i, row := range table.Rows {
		cells := make([]interface{}, len(table.Columns))
		for j, value := range padRow(row, len(table.Columns)) {
			cells[j] = value
			if j == positionsCol {
				if n, err := strconv.ParseInt(value, 10, 64); err == nil {
					cells[j] = n
				}
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
