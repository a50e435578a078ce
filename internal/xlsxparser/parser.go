// =============================================================================
// CPS Positions - XLSX Parser Module
// =============================================================================
//
// Any of the input tables may be delivered as an Excel workbook instead of a
// CSV file. This module reads one worksheet into the same header-keyed and
// ordered shapes the CSV parser produces.
//
// SHEET LAYOUT:
//   | department | job_title | date    | status | positions |
//   |------------|-----------|---------|--------|-----------|
//   | Lincoln ES | Teacher   | 2023-01 | Filled | 10        |
//
//   The first row holds the headers. Empty rows are skipped. Cell values are
//   read as formatted text, so numeric cells arrive as they display.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/anthonymoser/cps-positions/internal/types"
)

// =============================================================================
// SHEET DATA STRUCTURE
// =============================================================================

// SheetData represents a parsed worksheet.
type SheetData struct {
	// Headers contains the cleaned first-row values.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	Rows []map[string]string

	// RawRows contains the data rows in column order, padded to the header
	// width.
	RawRows [][]string

	// Lines holds the 1-based worksheet row of each data row.
	Lines []int

	// SourceFile is the path (or name) of the workbook.
	SourceFile string

	// SheetName is the worksheet that was read.
	SheetName string

	// RowCount is the number of data rows.
	RowCount int
}

// Table returns the ordered rows as a types.Table.
func (d *SheetData) Table() types.Table {
	return types.Table{
		Columns: append([]string(nil), d.Headers...),
		Rows:    d.RawRows,
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse opens an XLSX workbook and reads one worksheet.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//   - sheet: The worksheet name. Empty selects the first sheet.
//
// RETURNS:
//   - The parsed sheet.
//   - An error if the workbook cannot be opened or the sheet is missing.
func Parse(filePath, sheet string) (*SheetData, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, filePath, sheet)
}

// ParseReader reads a workbook from r, for uploads and tests.
func ParseReader(r io.Reader, source, sheet string) (*SheetData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", source, err)
	}
	defer f.Close()

	return parseWorkbook(f, source, sheet)
}

// parseWorkbook reads the selected sheet of an open workbook.
func parseWorkbook(f *excelize.File, source, sheet string) (*SheetData, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook %s has no sheets", source)
		}
	} else if index, err := f.GetSheetIndex(sheet); err != nil || index < 0 {
		return nil, fmt.Errorf("workbook %s has no sheet named %q", source, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", sheet, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s in %s is empty", sheet, source)
	}

	headers := cleanHeaders(rows[0])
	data := &SheetData{
		Headers:    headers,
		Rows:       make([]map[string]string, 0, len(rows)-1),
		RawRows:    make([][]string, 0, len(rows)-1),
		Lines:      make([]int, 0, len(rows)-1),
		SourceFile: source,
		SheetName:  sheet,
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]

		// GetRows trims trailing empty cells, so an empty row may have
		// length zero.
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		rowMap, ordered := parseRow(row, headers)
		data.Rows = append(data.Rows, rowMap)
		data.RawRows = append(data.RawRows, ordered)
		data.Lines = append(data.Lines, i+1)
	}

	data.RowCount = len(data.Rows)
	return data, nil
}

// parseRow pads a worksheet row to the header width.
func parseRow(row []string, headers []string) (map[string]string, []string) {
	rowMap := make(map[string]string, len(headers))
	ordered := make([]string, len(headers))

	for col, header := range headers {
		raw := ""
		if col < len(row) {
			raw = row[col]
		}
		rowMap[header] = strings.TrimSpace(raw)
		ordered[col] = raw
	}

	return rowMap, ordered
}

// cleanHeaders trims header cells and names empty ones Column_N.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// FILE TYPE DETECTION
// =============================================================================

// IsWorkbook reports whether path names an Excel workbook by extension.
func IsWorkbook(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}
