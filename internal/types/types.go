// =============================================================================
// CPS Positions - Shared Types
// =============================================================================
//
// Types shared by the loader, the filter engine, the export encoder and the
// chart adapter. Keeping them here avoids import cycles between those
// packages.
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Column names used by the position metadata table and the aggregated view.
const (
	ColumnDepartment = "department"
	ColumnJobTitle   = "job_title"
	ColumnDate       = "date"
	ColumnStatus     = "status"
	ColumnPositions  = "positions"
)

// Sentinel labels substituted for a collapsed grouping dimension.
const (
	LabelCombinedSelection = "Combined selection"
	LabelDistrictTotals    = "District Totals"
	LabelCombinedJobs      = "Combined jobs"
)

// =============================================================================
// STATUS
// =============================================================================

// Status classifies a position within one reporting period.
type Status string

const (
	StatusFilled        Status = "Filled"
	StatusChangeInStaff Status = "Change in staff"
	StatusOpen          Status = "Open"
	StatusDoesNotExist  Status = "Does not exist"
)

// StatusOrder is the category order used for sorting and for stacking bars.
var StatusOrder = []Status{
	StatusFilled,
	StatusChangeInStaff,
	StatusOpen,
	StatusDoesNotExist,
}

// ErrUnknownStatus is returned by ParseStatus for unrecognized values.
var ErrUnknownStatus = errors.New("unknown status")

// ParseStatus maps the textual forms found in source files onto a Status.
// Matching ignores case, surrounding whitespace, and the separators ' ', '_'
// and '-', so "Change in staff", "ChangeInStaff" and "change_in_staff" are
// all accepted.
func ParseStatus(raw string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)

	switch key {
	case "filled":
		return StatusFilled, nil
	case "changeinstaff":
		return StatusChangeInStaff, nil
	case "open":
		return StatusOpen, nil
	case "doesnotexist":
		return StatusDoesNotExist, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// Rank returns the position of s in StatusOrder, or len(StatusOrder) when s
// is not a known status.
func (s Status) Rank() int {
	for i, known := range StatusOrder {
		if s == known {
			return i
		}
	}
	return len(StatusOrder)
}

// =============================================================================
// RECORDS
// =============================================================================

// PositionRecord is one row of the position metadata table. Records are
// never mutated after load.
type PositionRecord struct {
	Department string `json:"department"`
	JobTitle   string `json:"job_title"`
	Date       string `json:"date"`
	Status     Status `json:"status"`
	Positions  int64  `json:"positions"`
}

// RecordsTable renders records as a Table in the canonical column order.
func RecordsTable(records []PositionRecord) Table {
	table := Table{
		Columns: []string{ColumnDepartment, ColumnJobTitle, ColumnDate, ColumnStatus, ColumnPositions},
		Rows:    make([][]string, 0, len(records)),
	}
	for _, r := range records {
		table.Rows = append(table.Rows, []string{
			r.Department,
			r.JobTitle,
			r.Date,
			string(r.Status),
			fmt.Sprintf("%d", r.Positions),
		})
	}
	return table
}

// =============================================================================
// SELECTION
// =============================================================================

// Selection is the user's filter input for one interaction. An empty Jobs or
// Departments list means "no filter" on that dimension.
type Selection struct {
	Jobs        []string `json:"jobs"`
	Departments []string `json:"departments"`
	GroupJobs   bool     `json:"group_jobs"`
	GroupDepts  bool     `json:"group_depts"`
}

// JobSet returns the distinct selected job titles.
func (s Selection) JobSet() map[string]struct{} {
	return toSet(s.Jobs)
}

// DepartmentSet returns the distinct selected departments.
func (s Selection) DepartmentSet() map[string]struct{} {
	return toSet(s.Departments)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// =============================================================================
// AGGREGATED VIEW
// =============================================================================

// AggregatedRow is one (department, job_title, date, status) bucket.
type AggregatedRow struct {
	Department string `json:"department"`
	JobTitle   string `json:"job_title"`
	Date       string `json:"date"`
	Status     Status `json:"status"`
	Positions  int64  `json:"positions"`
}

// AggregatedView is the grouped and summed result of a Selection.
// Department and JobTitle are always populated; DepartmentKept and
// JobTitleKept record whether the dimension survived grouping or was
// replaced by a sentinel label.
type AggregatedView struct {
	Rows           []AggregatedRow `json:"rows"`
	DepartmentKept bool            `json:"department_kept"`
	JobTitleKept   bool            `json:"job_title_kept"`
}

// Total sums positions over every row.
func (v AggregatedView) Total() int64 {
	var total int64
	for _, r := range v.Rows {
		total += r.Positions
	}
	return total
}

// Departments returns the distinct department values in first-seen order.
func (v AggregatedView) Departments() []string {
	return v.distinct(func(r AggregatedRow) string { return r.Department })
}

// JobTitles returns the distinct job_title values in first-seen order.
func (v AggregatedView) JobTitles() []string {
	return v.distinct(func(r AggregatedRow) string { return r.JobTitle })
}

// Dates returns the distinct date values in first-seen order.
func (v AggregatedView) Dates() []string {
	return v.distinct(func(r AggregatedRow) string { return r.Date })
}

func (v AggregatedView) distinct(field func(AggregatedRow) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range v.Rows {
		value := field(r)
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}
	return out
}

// Table renders the view with columns department, job_title, date, status,
// positions.
func (v AggregatedView) Table() Table {
	table := Table{
		Columns: []string{ColumnDepartment, ColumnJobTitle, ColumnDate, ColumnStatus, ColumnPositions},
		Rows:    make([][]string, 0, len(v.Rows)),
	}
	for _, r := range v.Rows {
		table.Rows = append(table.Rows, []string{
			r.Department,
			r.JobTitle,
			r.Date,
			string(r.Status),
			fmt.Sprintf("%d", r.Positions),
		})
	}
	return table
}

// =============================================================================
// GENERIC TABLE
// =============================================================================

// Table is an ordered, string-valued table. It carries the optional time
// series and every export payload.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the index of the named column, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}
