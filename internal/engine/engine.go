// =============================================================================
// CPS Positions - Filter Engine
// =============================================================================
//
// This module filters position records by job title and department and sums
// positions over a dynamically chosen set of grouping dimensions.
//
// GROUPING RULES:
//   - date and status are always grouping dimensions
//   - department is kept only when departments are not grouped and between
//     1 and MaxFacets departments are selected; otherwise it collapses to
//     "Combined selection" (some selected) or "District Totals" (none)
//   - job_title follows the same rule and collapses to "Combined jobs"
//
// SIZING:
//   width  = FacetWidth  * clamp(distinct job titles in the result)
//   height = FacetHeight * clamp(distinct departments in the result)
//   where clamp bounds the count to [1, MaxFacets].
//
// =============================================================================

package engine

import (
	"sort"

	"github.com/anthonymoser/cps-positions/internal/types"
)

// Layout constants.
const (
	// MaxFacets caps the number of selected values a dimension may have and
	// still be kept as its own facet.
	MaxFacets = 5

	// FacetWidth is the width contributed by each job title facet column.
	FacetWidth = 800

	// FacetHeight is the height contributed by each department facet row.
	FacetHeight = 600
)

// =============================================================================
// ROW FILTER
// =============================================================================

// matcher applies the row inclusion rule: a row passes when each non-empty
// selection contains the row's value.
type matcher struct {
	jobs  map[string]struct{}
	depts map[string]struct{}
}

func newMatcher(jobs, depts []string) matcher {
	sel := types.Selection{Jobs: jobs, Departments: depts}
	return matcher{jobs: sel.JobSet(), depts: sel.DepartmentSet()}
}

func (m matcher) match(job, dept string) bool {
	if len(m.jobs) > 0 {
		if _, ok := m.jobs[job]; !ok {
			return false
		}
	}
	if len(m.depts) > 0 {
		if _, ok := m.depts[dept]; !ok {
			return false
		}
	}
	return true
}

// FilterRows returns the records matching the selection, in their original
// order. Empty jobs or depts means no filter on that dimension.
func FilterRows(records []types.PositionRecord, jobs, depts []string) []types.PositionRecord {
	m := newMatcher(jobs, depts)
	out := make([]types.PositionRecord, 0, len(records))
	for _, r := range records {
		if m.match(r.JobTitle, r.Department) {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// AGGREGATION
// =============================================================================

// groupKey identifies one aggregation bucket.
type groupKey struct {
	department string
	jobTitle   string
	date       string
	status     types.Status
}

// Aggregate filters records by sel and sums positions per group. It returns
// the view together with the chart width and height hints.
//
// PARAMETERS:
//   - records: The full position table.
//   - sel: Selected jobs and departments plus the grouping flags.
//
// RETURNS:
//   - The aggregated view, sorted by date, status, department, job title.
//   - Width and height hints for the chart.
func Aggregate(records []types.PositionRecord, sel types.Selection) (types.AggregatedView, int, int) {
	jobs := sel.JobSet()
	depts := sel.DepartmentSet()

	keepDept := !sel.GroupDepts && len(depts) > 0 && len(depts) <= MaxFacets
	keepJob := !sel.GroupJobs && len(jobs) > 0 && len(jobs) <= MaxFacets

	deptLabel := types.LabelDistrictTotals
	if len(depts) > 0 {
		deptLabel = types.LabelCombinedSelection
	}

	m := matcher{jobs: jobs, depts: depts}
	sums := make(map[groupKey]int64)
	for _, r := range records {
		if !m.match(r.JobTitle, r.Department) {
			continue
		}

		key := groupKey{
			department: deptLabel,
			jobTitle:   types.LabelCombinedJobs,
			date:       r.Date,
			status:     r.Status,
		}
		if keepDept {
			key.department = r.Department
		}
		if keepJob {
			key.jobTitle = r.JobTitle
		}
		sums[key] += r.Positions
	}

	view := types.AggregatedView{
		Rows:           make([]types.AggregatedRow, 0, len(sums)),
		DepartmentKept: keepDept,
		JobTitleKept:   keepJob,
	}
	for key, total := range sums {
		view.Rows = append(view.Rows, types.AggregatedRow{
			Department: key.department,
			JobTitle:   key.jobTitle,
			Date:       key.date,
			Status:     key.status,
			Positions:  total,
		})
	}
	SortRows(view.Rows)

	width := FacetWidth * clampFacets(len(view.JobTitles()))
	height := FacetHeight * clampFacets(len(view.Departments()))

	return view, width, height
}

// clampFacets bounds a distinct-value count to [1, MaxFacets]. An empty
// result still gets a single facet worth of space.
func clampFacets(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxFacets {
		return MaxFacets
	}
	return n
}

// SortRows orders rows by date, status category, department and job title.
func SortRows(rows []types.AggregatedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if c := CompareDates(a.Date, b.Date); c != 0 {
			return c < 0
		}
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() < b.Status.Rank()
		}
		if a.Department != b.Department {
			return a.Department < b.Department
		}
		return a.JobTitle < b.JobTitle
	})
}
