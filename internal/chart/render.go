package chart

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/anthonymoser/cps-positions/internal/types"
)

// Rendering errors.
var (
	ErrFacetOutOfRange = errors.New("facet index out of range")
	ErrEmptyFacet      = errors.New("facet has no positions to draw")
)

// minFacetWidth and minFacetHeight keep tiny layouts legible.
const (
	minFacetWidth  = 400
	minFacetHeight = 300
)

// RenderPNG draws facet index of spec as a stacked bar PNG into w. Each
// date is one bar; each status is one stacked segment.
func RenderPNG(w io.Writer, spec Spec, index int) error {
	if index < 0 || index >= len(spec.Facets) {
		return fmt.Errorf("%w: %d of %d", ErrFacetOutOfRange, index, len(spec.Facets))
	}
	facet := spec.Facets[index]
	if facet.Total() == 0 {
		return fmt.Errorf("%w: %s / %s", ErrEmptyFacet, facet.Department, facet.JobTitle)
	}

	byDate := make(map[string]map[types.Status]int64)
	for _, s := range facet.Series {
		for _, p := range s.Points {
			if byDate[p.Date] == nil {
				byDate[p.Date] = make(map[types.Status]int64)
			}
			byDate[p.Date][s.Status] += p.Positions
		}
	}

	var bars []gochart.StackedBar
	for _, date := range spec.Dates {
		values := byDate[date]
		if len(values) == 0 {
			continue
		}

		bar := gochart.StackedBar{Name: date}
		for _, status := range spec.StatusOrder {
			n := values[status]
			if n == 0 {
				continue
			}
			color := hexColor(StatusColors[status])
			bar.Values = append(bar.Values, gochart.Value{
				Label: strconv.FormatInt(n, 10),
				Value: float64(n),
				Style: gochart.Style{
					FillColor:   color,
					StrokeColor: color,
					StrokeWidth: 1,
				},
			})
		}
		bars = append(bars, bar)
	}

	c := gochart.StackedBarChart{
		Title:  facet.Department + " / " + facet.JobTitle,
		Width:  facetSize(spec.Width, len(spec.FacetColumns), minFacetWidth),
		Height: facetSize(spec.Height, len(spec.FacetRows), minFacetHeight),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Bars: bars,
	}

	if err := c.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render facet %d: %w", index, err)
	}
	return nil
}

// facetSize divides the overall dimension between n facets.
func facetSize(total, n, floor int) int {
	if n < 1 {
		n = 1
	}
	size := total / n
	if size < floor {
		return floor
	}
	return size
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
