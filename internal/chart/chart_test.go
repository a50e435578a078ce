package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonymoser/cps-positions/internal/engine"
	"github.com/anthonymoser/cps-positions/internal/types"
)

func sampleView() (types.AggregatedView, int, int) {
	records := []types.PositionRecord{
		{Department: "B", JobTitle: "Teacher", Date: "2023-02", Status: types.StatusOpen, Positions: 2},
		{Department: "B", JobTitle: "Teacher", Date: "2023-01", Status: types.StatusFilled, Positions: 9},
		{Department: "A", JobTitle: "Teacher", Date: "2023-01", Status: types.StatusFilled, Positions: 10},
		{Department: "A", JobTitle: "Clerk", Date: "2023-02", Status: types.StatusChangeInStaff, Positions: 1},
		{Department: "A", JobTitle: "Clerk", Date: "2023-02", Status: types.StatusFilled, Positions: 3},
	}
	return engine.Aggregate(records, types.Selection{
		Jobs:        []string{"Teacher", "Clerk"},
		Departments: []string{"A", "B"},
	})
}

func TestBuildLayout(t *testing.T) {
	view, width, height := sampleView()

	spec := Build(view, width, height, "Staffing")

	assert.Equal(t, "Staffing", spec.Title)
	assert.Equal(t, 1600, spec.Width)
	assert.Equal(t, 1200, spec.Height)
	assert.Equal(t, YAxisTitle, spec.YAxisTitle)
	assert.Equal(t, []string{"2023-01", "2023-02"}, spec.Dates)
	assert.Equal(t, []string{"A", "B"}, spec.FacetRows)
	assert.Equal(t, []string{"Clerk", "Teacher"}, spec.FacetColumns)
	assert.Equal(t, []types.Status{types.StatusFilled, types.StatusChangeInStaff, types.StatusOpen}, spec.StatusOrder)
	assert.Equal(t, "#87CEFA", spec.Colors["Filled"])
	assert.Equal(t, "#1E90FF", spec.Colors["Change in staff"])
	assert.Equal(t, "#FF6347", spec.Colors["Open"])
	assert.NotContains(t, spec.Colors, "Does not exist")

	// B / Clerk has no rows, so three panels remain.
	require.Len(t, spec.Facets, 3)
	assert.Equal(t, Facet{
		Row: 0, Column: 0, Department: "A", JobTitle: "Clerk",
		Series: []Series{
			{Status: types.StatusFilled, Color: "#87CEFA", Points: []Point{{Date: "2023-02", Positions: 3, Label: "3"}}},
			{Status: types.StatusChangeInStaff, Color: "#1E90FF", Points: []Point{{Date: "2023-02", Positions: 1, Label: "1"}}},
		},
	}, spec.Facets[0])
	assert.Equal(t, 1, spec.Facets[2].Row)
	assert.Equal(t, 1, spec.Facets[2].Column)
	assert.Equal(t, int64(11), spec.Facets[2].Total())
}

func TestBuildIncludesDoesNotExistWhenPresent(t *testing.T) {
	view, w, h := engine.Aggregate([]types.PositionRecord{
		{Department: "A", JobTitle: "Teacher", Date: "2023-01", Status: types.StatusDoesNotExist, Positions: 1},
	}, types.Selection{})

	spec := Build(view, w, h, "")

	assert.Equal(t, types.StatusDoesNotExist, spec.StatusOrder[len(spec.StatusOrder)-1])
	assert.Equal(t, "#D3D3D3", spec.Colors["Does not exist"])
	assert.Equal(t, []string{types.LabelDistrictTotals}, spec.FacetRows)
	assert.Equal(t, []string{types.LabelCombinedJobs}, spec.FacetColumns)
}

func TestBuildEmptyView(t *testing.T) {
	view, w, h := engine.Aggregate(nil, types.Selection{})
	spec := Build(view, w, h, "")

	assert.Empty(t, spec.Facets)
	assert.Equal(t, 800, spec.Width)
	assert.Equal(t, 600, spec.Height)
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderPNG(t *testing.T) {
	view, width, height := sampleView()
	spec := Build(view, width, height, "")

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, spec, 2))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestRenderPNGErrors(t *testing.T) {
	view, width, height := sampleView()
	spec := Build(view, width, height, "")

	var buf bytes.Buffer
	assert.ErrorIs(t, RenderPNG(&buf, spec, 7), ErrFacetOutOfRange)
	assert.ErrorIs(t, RenderPNG(&buf, spec, -1), ErrFacetOutOfRange)

	zero, w, h := engine.Aggregate([]types.PositionRecord{
		{Department: "A", JobTitle: "Teacher", Date: "2023-01", Status: types.StatusOpen, Positions: 0},
	}, types.Selection{})
	assert.ErrorIs(t, RenderPNG(&buf, Build(zero, w, h, ""), 0), ErrEmptyFacet)
}

func TestFacetSize(t *testing.T) {
	assert.Equal(t, 800, facetSize(1600, 2, minFacetWidth))
	assert.Equal(t, minFacetWidth, facetSize(800, 5, minFacetWidth))
	assert.Equal(t, 600, facetSize(600, 0, minFacetHeight))
}
