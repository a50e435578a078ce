// =============================================================================
// CPS Positions - Export Encoder
// =============================================================================
//
// This module serializes a table as CSV and wraps the payload in a
// downloadable data-URI link, or writes it as an XLSX workbook.
//
// CSV FORMAT:
//   - Comma separated, header row first, in table column order
//   - No index column
//   - Fields containing commas, quotes or newlines are quoted and inner
//     quotes doubled
//
// LINK FORMAT:
//   <a href="data:text/csv;base64,<payload>" download="<filename>"><label></a>
//
// =============================================================================

package export

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"html"
	"io"

	"github.com/anthonymoser/cps-positions/internal/types"
)

// WriteCSV writes the table to w.
func WriteCSV(w io.Writer, table types.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, row := range table.Rows {
		if err := writer.Write(padRow(row, len(table.Columns))); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// EncodeCSV returns the table as CSV bytes.
func EncodeCSV(table types.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeDownloadLink returns an anchor element embedding the table as a
// base64 CSV data URI. filename and label are HTML-escaped.
func EncodeDownloadLink(table types.Table, filename, label string) (string, error) {
	payload, err := EncodeCSV(table)
	if err != nil {
		return "", fmt.Errorf("failed to encode download: %w", err)
	}

	return fmt.Sprintf(`<a href="data:text/csv;base64,%s" download="%s">%s</a>`,
		base64.StdEncoding.EncodeToString(payload),
		html.EscapeString(filename),
		html.EscapeString(label),
	), nil
}

// padRow pads or trims a row to exactly width cells so every CSV line has
// the header's column count.
func padRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
