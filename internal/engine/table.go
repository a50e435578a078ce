package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anthonymoser/cps-positions/internal/types"
)

// ErrMissingColumn is returned when a table cannot be filtered because a
// selected dimension has no column.
var ErrMissingColumn = errors.New("missing column")

// FilterTable applies the row inclusion rule to a generic table using its
// job_title and department columns. Cells are compared trimmed but copied
// untouched. Row order is preserved and the input is not modified.
func FilterTable(table types.Table, jobs, depts []string) (types.Table, error) {
	jobCol := table.ColumnIndex(types.ColumnJobTitle)
	deptCol := table.ColumnIndex(types.ColumnDepartment)

	if len(jobs) > 0 && jobCol < 0 {
		return types.Table{}, fmt.Errorf("cannot filter by job: %w %q", ErrMissingColumn, types.ColumnJobTitle)
	}
	if len(depts) > 0 && deptCol < 0 {
		return types.Table{}, fmt.Errorf("cannot filter by department: %w %q", ErrMissingColumn, types.ColumnDepartment)
	}

	cell := func(row []string, col int) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	m := newMatcher(jobs, depts)
	out := types.Table{
		Columns: append([]string(nil), table.Columns...),
		Rows:    make([][]string, 0, len(table.Rows)),
	}
	for _, row := range table.Rows {
		if m.match(cell(row, jobCol), cell(row, deptCol)) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}
