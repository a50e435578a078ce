package report

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonymoser/cps-positions/internal/config"
	"github.com/anthonymoser/cps-positions/internal/dataset"
	"github.com/anthonymoser/cps-positions/internal/pkg/constants"
	"github.com/anthonymoser/cps-positions/internal/types"
)

func testDataset(withSeries bool) *dataset.Dataset {
	ds := &dataset.Dataset{
		Records: []types.PositionRecord{
			{Department: "A", JobTitle: "Teacher", Date: "2023-01", Status: types.StatusFilled, Positions: 10},
			{Department: "B", JobTitle: "Teacher", Date: "2023-01", Status: types.StatusOpen, Positions: 2},
			{Department: "B", JobTitle: "Clerk", Date: "2023-02", Status: types.StatusFilled, Positions: 4},
		},
		Catalogs: dataset.Catalogs{
			Jobs:        []string{"Clerk", "Teacher"},
			Departments: []string{"A", "B"},
		},
	}
	if withSeries {
		ds.TimeSeries = &types.Table{
			Columns: []string{"position_id", types.ColumnDepartment, types.ColumnJobTitle, types.ColumnDate},
			Rows: [][]string{
				{"1", "A", "Teacher", "2023-01"},
				{"2", "B", "Clerk", "2023-02"},
				{"3", "B", "Teacher", "2023-01"},
			},
		}
	}
	return ds
}

func newTestService(withSeries bool) *Service {
	return NewService(dataset.NewStaticCache(testDataset(withSeries)), config.Default().Report, nil)
}

func TestRunDistrictTotals(t *testing.T) {
	result, err := newTestService(false).Run(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, []string{types.LabelDistrictTotals}, result.View.Departments())
	assert.Equal(t, []string{types.LabelCombinedJobs}, result.View.JobTitles())
	assert.Equal(t, int64(16), result.View.Total())
	assert.Equal(t, 800, result.Width)
	assert.Equal(t, 600, result.Height)
	assert.Equal(t, "CPS positions", result.Chart.Title)
	assert.False(t, result.ExportAvailable)
	assert.Nil(t, result.District)
	assert.Nil(t, result.SourceRows)
	assert.Empty(t, result.Warnings)
}

func TestRunSelectionWithExtras(t *testing.T) {
	req := Request{
		Selection:         types.Selection{Jobs: []string{"Teacher"}, Departments: []string{"B"}},
		ShowSourceData:    true,
		CompareToDistrict: true,
		IncludeDownload:   true,
		Title:             "Teachers",
	}

	result, err := newTestService(true).Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, result.View.Departments())
	assert.Equal(t, []string{"Teacher"}, result.View.JobTitles())
	assert.Equal(t, int64(2), result.View.Total())

	require.NotNil(t, result.District)
	assert.Equal(t, []string{types.LabelDistrictTotals}, result.District.View.Departments())
	assert.Equal(t, []string{"Teacher"}, result.District.View.JobTitles())
	assert.Equal(t, int64(12), result.District.View.Total())
	assert.Equal(t, "Teachers (District Totals)", result.District.Chart.Title)

	require.NotNil(t, result.SourceRows)
	assert.Equal(t, [][]string{{"B", "Teacher", "2023-01", "Open", "2"}}, result.SourceRows.Rows)

	assert.True(t, result.ExportAvailable)
	require.True(t, strings.HasPrefix(result.DownloadLink, `<a href="data:text/csv;base64,`))
	payload := strings.TrimPrefix(result.DownloadLink, `<a href="data:text/csv;base64,`)
	payload = payload[:strings.Index(payload, `"`)]
	decoded, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, "position_id,department,job_title,date\n3,B,Teacher,2023-01\n", string(decoded))
	assert.Contains(t, result.DownloadLink, `download="filtered_positions.csv"`)
}

func TestRunDownloadWithoutTimeSeriesWarns(t *testing.T) {
	result, err := newTestService(false).Run(context.Background(), Request{IncludeDownload: true})
	require.NoError(t, err)

	assert.Empty(t, result.DownloadLink)
	assert.False(t, result.ExportAvailable)
	assert.Contains(t, result.Warnings, ErrTimeSeriesUnavailable.Error())
	assert.NotEmpty(t, result.Chart.Facets)
}

func TestRunWarnsOnUnknownNames(t *testing.T) {
	result, err := newTestService(false).Run(context.Background(), Request{
		Selection: types.Selection{Jobs: []string{"Astronaut"}},
	})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Astronaut")
	assert.Empty(t, result.View.Rows)
}

func TestRunStrictSelectionRejectsUnknownNames(t *testing.T) {
	settings := config.Default().Report
	settings.StrictSelection = true
	svc := NewService(dataset.NewStaticCache(testDataset(false)), settings, nil)

	_, err := svc.Run(context.Background(), Request{
		Selection: types.Selection{Jobs: []string{"Astronaut"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Astronaut")

	var coded *constants.CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, http.StatusBadRequest, coded.Code())
}

func TestRunStrictSelectionAcceptsKnownNames(t *testing.T) {
	settings := config.Default().Report
	settings.StrictSelection = true
	svc := NewService(dataset.NewStaticCache(testDataset(false)), settings, nil)

	result, err := svc.Run(context.Background(), Request{
		Selection: types.Selection{Jobs: []string{"Teacher"}},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(false).Run(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunUninitializedCache(t *testing.T) {
	svc := NewService(dataset.NewCache(nil), config.Default().Report, nil)

	_, err := svc.Run(context.Background(), Request{})
	assert.ErrorIs(t, err, constants.ErrDatasetUnavailable)
	assert.ErrorIs(t, err, dataset.ErrNotInitialized)

	var coded *constants.CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, http.StatusServiceUnavailable, coded.Code())
}

func TestExportSourceRows(t *testing.T) {
	table, err := newTestService(true).ExportSourceRows(types.Selection{Departments: []string{"B"}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2", "B", "Clerk", "2023-02"}, {"3", "B", "Teacher", "2023-01"}}, table.Rows)

	_, err = newTestService(false).ExportSourceRows(types.Selection{})
	assert.ErrorIs(t, err, ErrTimeSeriesUnavailable)
}

func TestCatalog(t *testing.T) {
	catalogs, err := newTestService(false).Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"Clerk", "Teacher"}, catalogs.Jobs)
}
