// =============================================================================
// CPS Positions - CSV Parser Module
// =============================================================================
//
// This module parses the flat CSV inputs (position metadata, job list,
// department list and the optional time series). It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Multi-line headers
//   - Custom data start rows
//   - Quoted fields
//
// Every parsed file keeps both a header-keyed view of each row (for field
// validation) and the ordered raw rows (for export), along with the 1-based
// line number each data row came from so load errors can point at it.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anthonymoser/cps-positions/internal/config"
	"github.com/anthonymoser/cps-positions/internal/types"
)

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents a parsed CSV file.
type CSVData struct {
	// Headers contains the column headers from the CSV file.
	// For multi-line headers, these are the merged headers.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	Rows []map[string]string

	// RawRows contains the data rows in column order, padded to the header
	// width. Cells keep their text exactly as read; only Rows is trimmed.
	RawRows [][]string

	// Lines holds the 1-based source line of each data row.
	Lines []int

	// SourceFile is the path (or name) of the source.
	SourceFile string

	// RowCount is the total number of data rows (excluding headers).
	RowCount int

	// ColumnCount is the number of columns in the CSV.
	ColumnCount int
}

// Table returns the ordered rows as a types.Table.
func (d *CSVData) Table() types.Table {
	return types.Table{
		Columns: append([]string(nil), d.Headers...),
		Rows:    d.RawRows,
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the main configuration.
//
// RETURNS:
//   - A pointer to the CSVData struct containing the parsed data.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(bufio.NewReader(file), filePath, settings)
}

// ParseReader parses CSV content from r. source is only used to label the
// result and errors.
//
// PARSING PROCESS:
//  1. Configure the CSV reader with the specified delimiter
//  2. Read and merge header rows (for multi-line headers)
//  3. Read data rows starting from the configured data start row
//  4. Convert each row to a map of header -> value
func ParseReader(r io.Reader, source string, settings config.CSVSettings) (*CSVData, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader, settings)

	allRows, rowLines, err := readAll(csvReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", source, err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file %s is empty", source)
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers from %s: %w", source, err)
	}

	dataRows, rawRows, lines := extractDataRows(allRows, rowLines, headers, settings)

	return &CSVData{
		Headers:     headers,
		Rows:        dataRows,
		RawRows:     rawRows,
		Lines:       lines,
		SourceFile:  source,
		RowCount:    len(dataRows),
		ColumnCount: len(headers),
	}, nil
}

// readAll reads every record along with the source line it started on.
// encoding/csv skips blank lines, so record index and line number differ.
func readAll(reader *csv.Reader) ([][]string, []int, error) {
	var rows [][]string
	var lines []int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return rows, lines, nil
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	// Handle special cases for common delimiters.
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Allow a variable number of fields per row; short rows are padded.
	reader.FieldsPerRecord = -1
}

// extractHeaders extracts and merges headers from the CSV.
//
// MULTI-LINE HEADER HANDLING:
//
//	Non-empty values from each header row are joined with a space.
//
//	Row 1: "Job", "", "Report"
//	Row 2: "Title", "Department", "Date"
//	Result: "Job Title", "Department", "Report Date"
func extractHeaders(allRows [][]string, settings config.CSVSettings) ([]string, error) {
	if settings.HeaderRows <= 0 {
		return nil, fmt.Errorf("header_rows must be at least 1")
	}

	if len(allRows) < settings.HeaderRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if settings.HeaderRows == 1 {
		return cleanHeaders(allRows[0]), nil
	}

	maxCols := 0
	for i := 0; i < settings.HeaderRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < settings.HeaderRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders trims headers, strips a UTF-8 byte order mark from the first
// one, and names empty headers Column_N.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, "\ufeff")
		}
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows converts every non-empty row after the headers into a
// header-keyed map and an ordered slice.
func extractDataRows(allRows [][]string, rowLines []int, headers []string, settings config.CSVSettings) ([]map[string]string, [][]string, []int) {
	// DataStartRow is 1-indexed and counts records, not blank lines.
	startIndex := settings.DataStartRow - 1
	if startIndex < settings.HeaderRows {
		startIndex = settings.HeaderRows
	}

	if startIndex >= len(allRows) {
		return []map[string]string{}, [][]string{}, []int{}
	}

	dataRows := make([]map[string]string, 0, len(allRows)-startIndex)
	rawRows := make([][]string, 0, len(allRows)-startIndex)
	lines := make([]int, 0, len(allRows)-startIndex)

	for rowIndex := startIndex; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]

		if isRowEmpty(row) {
			continue
		}

		rowMap := make(map[string]string, len(headers))
		ordered := make([]string, len(headers))

		for colIndex, header := range headers {
			raw := ""
			if colIndex < len(row) {
				raw = row[colIndex]
			}
			rowMap[header] = strings.TrimSpace(raw)
			ordered[colIndex] = raw
		}

		dataRows = append(dataRows, rowMap)
		rawRows = append(rawRows, ordered)
		lines = append(lines, rowLines[rowIndex])
	}

	return dataRows, rawRows, lines
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
