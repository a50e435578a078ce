package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/anthonymoser/cps-positions/internal/config"
	"github.com/anthonymoser/cps-positions/internal/types"
	"github.com/anthonymoser/cps-positions/internal/validation"
)

const positionsCSV = `department,job_title,date,status,positions
Lincoln ES,Teacher,2023-01,Filled,10
Hyde Park HS,Teacher,2023-01,Open,2
Hyde Park HS,Clerk,2023-02,Change in staff,1
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testOptions(dir string) Options {
	return Options{
		PositionsPath:  filepath.Join(dir, "position_metadata.csv"),
		JobsPath:       filepath.Join(dir, "jobs.csv"),
		DeptsPath:      filepath.Join(dir, "depts.csv"),
		TimeSeriesPath: filepath.Join(dir, "time_series.csv"),
		CSVSettings:    config.CSVSettings{Delimiter: ",", HeaderRows: 1, DataStartRow: 2},
	}
}

func TestLoadAllInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "position_metadata.csv", positionsCSV)
	writeFile(t, dir, "jobs.csv", "job_title\nTeacher\nClerk\nTeacher\n")
	writeFile(t, dir, "depts.csv", "department\nLincoln ES\n\nHyde Park HS\n\"\"\n")
	writeFile(t, dir, "time_series.csv", "position_id,department,job_title,date\n1,Lincoln ES,Teacher,2023-01\n")

	ds, err := NewLoader(testOptions(dir), nil).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Records, 3)
	assert.Equal(t, types.PositionRecord{
		Department: "Hyde Park HS", JobTitle: "Clerk", Date: "2023-02",
		Status: types.StatusChangeInStaff, Positions: 1,
	}, ds.Records[2])
	assert.Equal(t, []string{"Clerk", "Teacher"}, ds.Catalogs.Jobs)
	assert.Equal(t, []string{"Hyde Park HS", "Lincoln ES"}, ds.Catalogs.Departments)
	require.True(t, ds.HasTimeSeries())
	assert.Equal(t, []string{"position_id", "department", "job_title", "date"}, ds.TimeSeries.Columns)
	assert.False(t, ds.LoadedAt.IsZero())
}

func TestLoadWithoutOptionalInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "position_metadata.csv", positionsCSV)

	ds, err := NewLoader(testOptions(dir), nil).Load(context.Background())
	require.NoError(t, err)

	assert.False(t, ds.HasTimeSeries())
	assert.Empty(t, ds.Catalogs.Jobs)
	assert.Empty(t, ds.Catalogs.Departments)
	assert.Len(t, ds.Records, 3)
}

func TestLoadDerivesCatalogs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "position_metadata.csv", positionsCSV)
	writeFile(t, dir, "jobs.csv", "job_title\nNurse\n")
	opts := testOptions(dir)
	opts.DeriveCatalogs = true

	ds, err := NewLoader(opts, nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Nurse"}, ds.Catalogs.Jobs)
	assert.Equal(t, []string{"Hyde Park HS", "Lincoln ES"}, ds.Catalogs.Departments)
}

func TestLoadRejectsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "position_metadata.csv", `department,job_title,date,status,positions
A,Teacher,2023-01,Filled,ten
A,Teacher,2023-01,Vacant,1
A,Teacher,2023-01,Open,1
`)

	_, err := NewLoader(testOptions(dir), nil).Load(context.Background())

	var loadErr *validation.LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Len(t, loadErr.Errors, 2)
	assert.Equal(t, 2, loadErr.Errors[0].RowNumber)
	assert.Equal(t, 3, loadErr.Errors[1].RowNumber)
}

func TestLoadStopsOnFirstError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "position_metadata.csv", `department,job_title,date,status,positions
A,Teacher,2023-01,Filled,ten
A,Teacher,2023-01,Vacant,1
`)
	opts := testOptions(dir)
	opts.StopOnFirstError = true

	_, err := NewLoader(opts, nil).Load(context.Background())

	var loadErr *validation.LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Len(t, loadErr.Errors, 1)
	assert.Equal(t, 2, loadErr.Errors[0].RowNumber)
}

func TestLoadRejectsOversizedPositions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "position_metadata.csv", `department,job_title,date,status,positions
A,Teacher,2023-01,Filled,9223372036854775808
A,Teacher,2023-01,Open,18446744073709551626
`)

	_, err := NewLoader(testOptions(dir), nil).Load(context.Background())

	var loadErr *validation.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Len(t, loadErr.Errors, 2)
}

func TestLoadKeepsTimeSeriesCellsVerbatim(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "position_metadata.csv", positionsCSV)
	writeFile(t, dir, "time_series.csv", "department,job_title,note\nLincoln ES,Teacher,  padded \n")

	ds, err := NewLoader(testOptions(dir), nil).Load(context.Background())
	require.NoError(t, err)
	require.True(t, ds.HasTimeSeries())
	assert.Equal(t, [][]string{{"Lincoln ES", "Teacher", "  padded "}}, ds.TimeSeries.Rows)
}

func TestLoadRequiresPositionColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "position_metadata.csv", "department,job_title\nA,Teacher\n")

	_, err := NewLoader(testOptions(dir), nil).Load(context.Background())
	assert.Error(t, err)
}

func TestLoadRequiresListColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "position_metadata.csv", positionsCSV)
	writeFile(t, dir, "jobs.csv", "title\nTeacher\n")

	_, err := NewLoader(testOptions(dir), nil).Load(context.Background())
	assert.Error(t, err)
}

func TestLoadMissingPositions(t *testing.T) {
	_, err := NewLoader(testOptions(t.TempDir()), nil).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "position_metadata.csv", positionsCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(testOptions(dir), nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadWorkbookPositions(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"department", "job_title", "date", "status", "positions"},
		{"Lincoln ES", "Teacher", "2023-01", "Open", 4},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(dir, "positions.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	opts := testOptions(dir)
	opts.PositionsPath = path

	ds, err := NewLoader(opts, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, int64(4), ds.Records[0].Positions)
	assert.Equal(t, types.StatusOpen, ds.Records[0].Status)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "/srv/data"
	cfg.TimeSeriesFile = "/elsewhere/series.csv"
	cfg.Validation.StopOnFirstError = true

	opts := OptionsFromConfig(cfg)

	assert.Equal(t, filepath.Join("/srv/data", "position_metadata.csv"), opts.PositionsPath)
	assert.Equal(t, "/elsewhere/series.csv", opts.TimeSeriesPath)
	assert.Equal(t, cfg.CSVSettings, opts.CSVSettings)
	assert.True(t, opts.StopOnFirstError)
}

func TestExtractCatalogs(t *testing.T) {
	catalogs := ExtractCatalogs(
		[]string{"Teacher", "Clerk", "Teacher", ""},
		[]string{"Lincoln ES", " ", "Austin HS", "Lincoln ES"},
	)

	assert.Equal(t, []string{"Clerk", "Teacher"}, catalogs.Jobs)
	assert.Equal(t, []string{"Austin HS", "Lincoln ES"}, catalogs.Departments)

	empty := ExtractCatalogs(nil, nil)
	assert.Empty(t, empty.Jobs)
	assert.Empty(t, empty.Departments)
}

func TestCatalogsFromRecords(t *testing.T) {
	catalogs := CatalogsFromRecords([]types.PositionRecord{
		{Department: "B", JobTitle: "Teacher"},
		{Department: "", JobTitle: "Clerk"},
		{Department: "A", JobTitle: "Teacher"},
	})

	assert.Equal(t, []string{"Clerk", "Teacher"}, catalogs.Jobs)
	assert.Equal(t, []string{"A", "B"}, catalogs.Departments)
}

// countingSource counts loads.
type countingSource struct {
	loads atomic.Int32
	ds    *Dataset
	err   error
}

func (s *countingSource) Load(context.Context) (*Dataset, error) {
	s.loads.Add(1)
	return s.ds, s.err
}

func TestCacheLoadsOnce(t *testing.T) {
	src := &countingSource{ds: &Dataset{Records: []types.PositionRecord{{Date: "2023-01"}}}}
	cache := NewCache(src)

	_, err := cache.Get()
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, cache.Init(context.Background()))
	require.NoError(t, cache.Init(context.Background()))

	ds, err := cache.Get()
	require.NoError(t, err)
	assert.Same(t, src.ds, ds)
	assert.Equal(t, int32(1), src.loads.Load())
}

func TestCacheKeepsFirstError(t *testing.T) {
	boom := errors.New("boom")
	src := &countingSource{err: boom}
	cache := NewCache(src)

	assert.ErrorIs(t, cache.Init(context.Background()), boom)
	assert.ErrorIs(t, cache.Init(context.Background()), boom)

	_, err := cache.Get()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), src.loads.Load())
}

func TestStaticCache(t *testing.T) {
	ds := &Dataset{}
	cache := NewStaticCache(ds)

	got, err := cache.Get()
	require.NoError(t, err)
	assert.Same(t, ds, got)
	assert.NoError(t, cache.Init(context.Background()))
}
