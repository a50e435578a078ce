// =============================================================================
// CPS Positions - Dataset Loader
// =============================================================================
//
// This module reads the flat inputs into memory once at startup:
//   1. position metadata (required)
//   2. job list (catalog of selectable job titles)
//   3. department list (catalog of selectable departments)
//   4. row-level time series (optional, used only for source row exports)
//
// The files are parsed concurrently; the first failure cancels the rest.
// Position rows are validated strictly: a non-numeric or fractional count, a
// negative count or an unknown status fails the whole load and every bad row
// is reported.
//
// =============================================================================

package dataset

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anthonymoser/cps-positions/internal/config"
	"github.com/anthonymoser/cps-positions/internal/logger"
	"github.com/anthonymoser/cps-positions/internal/types"
	"github.com/anthonymoser/cps-positions/internal/validation"
	"github.com/anthonymoser/cps-positions/pkg/utils"
)

// Dataset is the read-only, in-memory copy of every input.
type Dataset struct {
	// Records is the position metadata table in file order.
	Records []types.PositionRecord

	// Catalogs lists the selectable job titles and departments.
	Catalogs Catalogs

	// TimeSeries is the optional row-level table. Nil when not loaded.
	TimeSeries *types.Table

	// LoadedAt is when the load finished.
	LoadedAt time.Time
}

// HasTimeSeries reports whether source row exports are available.
func (d *Dataset) HasTimeSeries() bool {
	return d.TimeSeries != nil
}

// =============================================================================
// LOADER
// =============================================================================

// Options tells the Loader where each input lives.
type Options struct {
	PositionsPath  string
	JobsPath       string
	DeptsPath      string
	TimeSeriesPath string

	// Sheets selects worksheets for .xlsx inputs.
	Sheets config.SheetNames

	// CSVSettings applies to every .csv input.
	CSVSettings config.CSVSettings

	// DeriveCatalogs fills a catalog from the position table when its list
	// file is missing.
	DeriveCatalogs bool

	// StopOnFirstError reports only the first bad position row.
	StopOnFirstError bool
}

// OptionsFromConfig resolves every input path against the data directory.
func OptionsFromConfig(cfg *config.MainConfig) Options {
	return Options{
		PositionsPath:    cfg.ResolvePath(cfg.PositionsFile),
		JobsPath:         cfg.ResolvePath(cfg.JobsFile),
		DeptsPath:        cfg.ResolvePath(cfg.DeptsFile),
		TimeSeriesPath:   cfg.ResolvePath(cfg.TimeSeriesFile),
		Sheets:           cfg.Sheets,
		CSVSettings:      cfg.CSVSettings,
		DeriveCatalogs:   cfg.DeriveCatalogs,
		StopOnFirstError: cfg.Validation.StopOnFirstError,
	}
}

// Loader reads a Dataset from disk.
type Loader struct {
	opts      Options
	validator *validation.Validator
	log       logger.Logger
}

// NewLoader creates a Loader. A nil log discards messages.
func NewLoader(opts Options, log logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		opts: opts,
		validator: validation.NewValidatorWithOptions(validation.ValidationOptions{
			StopOnFirstError: opts.StopOnFirstError,
		}),
		log: log,
	}
}

// Load reads and validates every input.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	start := time.Now()

	// =========================================================================
	// STEP 1: PARSE FILES CONCURRENTLY
	// =========================================================================

	var positions, jobs, depts, series *source

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		positions, err = l.read(ctx, l.opts.PositionsPath, l.opts.Sheets.Positions)
		return err
	})
	g.Go(func() (err error) {
		jobs, err = l.readOptional(ctx, "job list", l.opts.JobsPath, l.opts.Sheets.Jobs)
		return err
	})
	g.Go(func() (err error) {
		depts, err = l.readOptional(ctx, "department list", l.opts.DeptsPath, l.opts.Sheets.Depts)
		return err
	})
	g.Go(func() (err error) {
		series, err = l.readOptional(ctx, "time series", l.opts.TimeSeriesPath, l.opts.Sheets.TimeSeries)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 2: VALIDATE POSITION ROWS
	// =========================================================================

	if err := l.validator.RequireColumns(positions.path, positions.headers, validation.PositionColumns...); err != nil {
		return nil, err
	}

	records, result := l.validator.PositionRecords(positions.path, positions.rows, positions.lines)
	if err := result.Err(positions.path); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 3: BUILD CATALOGS
	// =========================================================================

	catalogs, err := l.catalogs(jobs, depts, records)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Records:  records,
		Catalogs: catalogs,
		LoadedAt: time.Now(),
	}
	if series != nil {
		table := series.table
		ds.TimeSeries = &table
	}

	l.log.Info("loaded %d position rows, %d jobs, %d departments, time series: %t (%s)",
		len(records), len(catalogs.Jobs), len(catalogs.Departments), ds.HasTimeSeries(), time.Since(start))

	return ds, nil
}

// catalogs extracts job and department catalogs from the list files.
func (l *Loader) catalogs(jobs, depts *source, records []types.PositionRecord) (Catalogs, error) {
	var jobValues, deptValues []string

	if jobs != nil {
		if err := l.validator.RequireColumns(jobs.path, jobs.headers, types.ColumnJobTitle); err != nil {
			return Catalogs{}, err
		}
		jobValues = jobs.column(types.ColumnJobTitle)
	}
	if depts != nil {
		if err := l.validator.RequireColumns(depts.path, depts.headers, types.ColumnDepartment); err != nil {
			return Catalogs{}, err
		}
		deptValues = depts.column(types.ColumnDepartment)
	}

	catalogs := ExtractCatalogs(jobValues, deptValues)
	if l.opts.DeriveCatalogs {
		derived := CatalogsFromRecords(records)
		if jobs == nil {
			catalogs.Jobs = derived.Jobs
		}
		if depts == nil {
			catalogs.Departments = derived.Departments
		}
	}
	return catalogs, nil
}

// read parses a required input.
func (l *Loader) read(ctx context.Context, path, sheet string) (*source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("no path configured for required input")
	}

	l.log.Debug("reading %s", path)
	return readSource(path, sheet, l.opts.CSVSettings)
}

// readOptional parses an input that may be absent. A missing file yields
// (nil, nil); a present but unreadable file is still an error.
func (l *Loader) readOptional(ctx context.Context, name, path, sheet string) (*source, error) {
	if path == "" {
		l.log.Info("%s not configured", name)
		return nil, nil
	}
	if !utils.FileExists(path) {
		l.log.Warn("%s %s not found, continuing without it", name, path)
		return nil, nil
	}
	return l.read(ctx, path, sheet)
}
