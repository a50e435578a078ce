package dataset

import (
	"fmt"

	"github.com/anthonymoser/cps-positions/internal/config"
	"github.com/anthonymoser/cps-positions/internal/csvparser"
	"github.com/anthonymoser/cps-positions/internal/types"
	"github.com/anthonymoser/cps-positions/internal/xlsxparser"
)

// source is one parsed input file, whichever parser produced it.
type source struct {
	path    string
	headers []string
	rows    []map[string]string
	lines   []int
	table   types.Table
}

// readSource parses path as a workbook or CSV depending on its extension.
func readSource(path, sheet string, settings config.CSVSettings) (*source, error) {
	if xlsxparser.IsWorkbook(path) {
		data, err := xlsxparser.Parse(path, sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return &source{
			path:    path,
			headers: data.Headers,
			rows:    data.Rows,
			lines:   data.Lines,
			table:   data.Table(),
		}, nil
	}

	data, err := csvparser.Parse(path, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &source{
		path:    path,
		headers: data.Headers,
		rows:    data.Rows,
		lines:   data.Lines,
		table:   data.Table(),
	}, nil
}

// column returns every value of the named column.
func (s *source) column(name string) []string {
	values := make([]string, len(s.rows))
	for i, row := range s.rows {
		values[i] = row[name]
	}
	return values
}
