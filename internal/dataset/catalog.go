package dataset

import (
	"sort"
	"strings"

	"github.com/anthonymoser/cps-positions/internal/types"
)

// Catalogs holds the selectable job titles and departments.
type Catalogs struct {
	Jobs        []string `json:"jobs"`
	Departments []string `json:"departments"`
}

// ExtractCatalogs builds sorted, de-duplicated catalogs from raw job and
// department values. Blank values are treated as nulls and dropped.
func ExtractCatalogs(jobs, departments []string) Catalogs {
	return Catalogs{
		Jobs:        distinctSorted(jobs),
		Departments: distinctSorted(departments),
	}
}

// CatalogsFromRecords derives catalogs from the position table itself, for
// datasets shipped without separate list files.
func CatalogsFromRecords(records []types.PositionRecord) Catalogs {
	jobs := make([]string, len(records))
	depts := make([]string, len(records))
	for i, r := range records {
		jobs[i] = r.JobTitle
		depts[i] = r.Department
	}
	return ExtractCatalogs(jobs, depts)
}

func distinctSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
