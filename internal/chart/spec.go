// =============================================================================
// CPS Positions - Chart Adapter
// =============================================================================
//
// This module turns an aggregated view into a faceted stacked bar chart
// description that any front end can draw, and renders single facets to PNG.
//
// ENCODING:
//   - x axis: reporting date, ascending
//   - y axis: summed positions, titled "Positions"
//   - bars stacked by status in the order Filled, Change in staff, Open
//     (Does not exist last, when present)
//   - facet rows are departments, facet columns are job titles
//   - every bar segment is labelled with its positions value
//
// =============================================================================

package chart

import (
	"sort"
	"strconv"

	"github.com/anthonymoser/cps-positions/internal/engine"
	"github.com/anthonymoser/cps-positions/internal/types"
)

// StatusColors maps each status to its bar color.
var StatusColors = map[types.Status]string{
	types.StatusFilled:        "#87CEFA", // lightskyblue
	types.StatusChangeInStaff: "#1E90FF", // dodgerblue
	types.StatusOpen:          "#FF6347", // tomato
	types.StatusDoesNotExist:  "#D3D3D3", // lightgray
}

// YAxisTitle is the value axis title.
const YAxisTitle = "Positions"

// Spec describes a faceted stacked bar chart.
type Spec struct {
	Title        string            `json:"title"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	XAxisTitle   string            `json:"x_axis_title"`
	YAxisTitle   string            `json:"y_axis_title"`
	Dates        []string          `json:"dates"`
	StatusOrder  []types.Status    `json:"status_order"`
	Colors       map[string]string `json:"colors"`
	FacetRows    []string          `json:"facet_rows"`
	FacetColumns []string          `json:"facet_columns"`
	Facets       []Facet           `json:"facets"`
}

// Facet is one department by job title panel.
type Facet struct {
	Row        int      `json:"row"`
	Column     int      `json:"column"`
	Department string   `json:"department"`
	JobTitle   string   `json:"job_title"`
	Series     []Series `json:"series"`
}

// Series is one status layer of a facet.
type Series struct {
	Status types.Status `json:"status"`
	Color  string       `json:"color"`
	Points []Point      `json:"points"`
}

// Point is one bar segment.
type Point struct {
	Date      string `json:"date"`
	Positions int64  `json:"positions"`
	Label     string `json:"label"`
}

// Total sums the facet's positions.
func (f Facet) Total() int64 {
	var total int64
	for _, s := range f.Series {
		for _, p := range s.Points {
			total += p.Positions
		}
	}
	return total
}

// Build lays out view as a faceted chart of the given size.
func Build(view types.AggregatedView, width, height int, title string) Spec {
	spec := Spec{
		Title:        title,
		Width:        width,
		Height:       height,
		XAxisTitle:   types.ColumnDate,
		YAxisTitle:   YAxisTitle,
		Dates:        engine.SortDates(view.Dates()),
		Colors:       make(map[string]string, len(StatusColors)),
		FacetRows:    sortedCopy(view.Departments()),
		FacetColumns: sortedCopy(view.JobTitles()),
	}

	present := make(map[types.Status]bool)
	for _, r := range view.Rows {
		present[r.Status] = true
	}
	for _, status := range types.StatusOrder {
		// Filled, Change in staff and Open are always listed so the legend
		// is stable between selections.
		if status != types.StatusDoesNotExist || present[status] {
			spec.StatusOrder = append(spec.StatusOrder, status)
			spec.Colors[string(status)] = StatusColors[status]
		}
	}

	type cell struct{ dept, job string }
	byCell := make(map[cell][]types.AggregatedRow)
	for _, r := range view.Rows {
		c := cell{r.Department, r.JobTitle}
		byCell[c] = append(byCell[c], r)
	}

	for rowIndex, dept := range spec.FacetRows {
		for colIndex, job := range spec.FacetColumns {
			rows, ok := byCell[cell{dept, job}]
			if !ok {
				continue
			}
			spec.Facets = append(spec.Facets, buildFacet(rowIndex, colIndex, dept, job, rows, spec.StatusOrder))
		}
	}

	return spec
}

// buildFacet groups one panel's rows into status series.
func buildFacet(row, col int, dept, job string, rows []types.AggregatedRow, order []types.Status) Facet {
	rows = append([]types.AggregatedRow(nil), rows...)
	engine.SortRows(rows)

	facet := Facet{Row: row, Column: col, Department: dept, JobTitle: job}
	for _, status := range order {
		series := Series{Status: status, Color: StatusColors[status]}
		for _, r := range rows {
			if r.Status == status {
				series.Points = append(series.Points, Point{
					Date:      r.Date,
					Positions: r.Positions,
					Label:     strconv.FormatInt(r.Positions, 10),
				})
			}
		}
		if len(series.Points) > 0 {
			facet.Series = append(facet.Series, series)
		}
	}
	return facet
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
