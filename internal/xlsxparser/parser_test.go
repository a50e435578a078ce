package xlsxparser

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into sheet of a fresh workbook. Rows are placed
// starting at A1; a nil row leaves a blank line.
func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	return f
}

func TestParseFirstSheet(t *testing.T) {
	f := buildWorkbook(t, "Metadata", [][]interface{}{
		{"department", "job_title", "date", "status", "positions"},
		{"Lincoln ES", "Teacher", "2023-01", "Filled", 10},
		nil,
		{"Hyde Park HS", "Clerk", "2023-01", "Open"},
	})
	path := filepath.Join(t.TempDir(), "positions.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	data, err := Parse(path, "")
	require.NoError(t, err)

	assert.Equal(t, "Metadata", data.SheetName)
	assert.Equal(t, []string{"department", "job_title", "date", "status", "positions"}, data.Headers)
	assert.Equal(t, 2, data.RowCount)
	assert.Equal(t, []int{2, 4}, data.Lines)
	assert.Equal(t, "10", data.Rows[0]["positions"])
	assert.Equal(t, "", data.Rows[1]["positions"])
	assert.Equal(t, []string{"Hyde Park HS", "Clerk", "2023-01", "Open", ""}, data.RawRows[1])

	table := data.Table()
	assert.Equal(t, data.Headers, table.Columns)
	assert.Equal(t, 2, table.Len())
}

func TestParseReaderNamedSheet(t *testing.T) {
	f := buildWorkbook(t, "Sheet1", [][]interface{}{{"department"}, {"Lincoln ES"}})
	_, err := f.NewSheet("Other")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	data, err := ParseReader(bytes.NewReader(buf.Bytes()), "upload.xlsx", "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lincoln ES"}, data.RawRows[0])

	_, err = ParseReader(bytes.NewReader(buf.Bytes()), "upload.xlsx", "Missing")
	assert.Error(t, err)
}

func TestParseEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ParseReader(&buf, "empty.xlsx", "")
	assert.Error(t, err)
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, IsWorkbook("data/positions.XLSX"))
	assert.True(t, IsWorkbook("macro.xlsm"))
	assert.False(t, IsWorkbook("positions.csv"))
}
