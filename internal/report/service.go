// =============================================================================
// CPS Positions - Report Service
// =============================================================================
//
// This module answers one user interaction: given a selection of job titles
// and departments it produces the aggregated view, its chart layout and the
// optional extras (district comparison, source rows, download link).
//
// PROCESSING FLOW:
//   1. Fetch the cached dataset
//   2. Check the selection against the catalogs (unknown names warn, or
//      fail in strict mode)
//   3. Aggregate and size the view, then lay out the chart
//   4. Attach the extras the request asked for
//
// Nothing here mutates the dataset, so a Service is safe for concurrent use.
//
// =============================================================================

package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthonymoser/cps-positions/internal/chart"
	"github.com/anthonymoser/cps-positions/internal/config"
	"github.com/anthonymoser/cps-positions/internal/dataset"
	"github.com/anthonymoser/cps-positions/internal/engine"
	"github.com/anthonymoser/cps-positions/internal/export"
	"github.com/anthonymoser/cps-positions/internal/logger"
	"github.com/anthonymoser/cps-positions/internal/pkg/constants"
	"github.com/anthonymoser/cps-positions/internal/types"
	"github.com/anthonymoser/cps-positions/internal/validation"
)

// ErrTimeSeriesUnavailable is returned by ExportSourceRows when no time
// series was loaded.
var ErrTimeSeriesUnavailable = constants.ErrTimeSeriesUnavailable

// =============================================================================
// REQUEST AND RESULT
// =============================================================================

// Request is one "render" trigger from the UI or CLI.
type Request struct {
	Selection types.Selection

	// ShowSourceData attaches the filtered position rows.
	ShowSourceData bool

	// CompareToDistrict attaches the same job selection summed across every
	// department.
	CompareToDistrict bool

	// IncludeDownload attaches a CSV download link of the filtered time
	// series rows, when a time series is loaded.
	IncludeDownload bool

	// Title overrides the configured chart title.
	Title string
}

// Comparison is an additional view rendered next to the main one.
type Comparison struct {
	View   types.AggregatedView `json:"view"`
	Width  int                  `json:"width"`
	Height int                  `json:"height"`
	Chart  chart.Spec           `json:"chart"`
}

// Result is everything produced for one Request.
type Result struct {
	View   types.AggregatedView `json:"view"`
	Width  int                  `json:"width"`
	Height int                  `json:"height"`
	Chart  chart.Spec           `json:"chart"`

	District     *Comparison  `json:"district,omitempty"`
	SourceRows   *types.Table `json:"source_rows,omitempty"`
	DownloadLink string       `json:"download_link,omitempty"`

	// ExportAvailable reports whether source row exports can be produced.
	ExportAvailable bool `json:"export_available"`

	// Warnings lists non-fatal problems, such as unknown selected names.
	Warnings []string `json:"warnings,omitempty"`
}

// =============================================================================
// SERVICE
// =============================================================================

// Service builds reports from a dataset cache.
type Service struct {
	cache     *dataset.Cache
	settings  config.ReportSettings
	validator *validation.Validator
	log       logger.Logger
}

// NewService creates a Service. A nil log discards output.
func NewService(cache *dataset.Cache, settings config.ReportSettings, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	validator := validation.NewValidatorWithOptions(validation.ValidationOptions{
		TreatWarningsAsErrors: settings.StrictSelection,
	})
	return &Service{
		cache:     cache,
		settings:  settings,
		validator: validator,
		log:       log,
	}
}

// Catalog returns the selectable job titles and departments.
func (s *Service) Catalog() (dataset.Catalogs, error) {
	ds, err := s.dataset()
	if err != nil {
		return dataset.Catalogs{}, err
	}
	return ds.Catalogs, nil
}

// Run builds the report for req.
//
// PARAMETERS:
//   - ctx: Cancels the request before any work starts.
//   - req: The selection and the extras to attach.
//
// RETURNS:
//   - The aggregated view, its chart and the requested extras.
//   - An error if the dataset is unavailable or an export step fails, or a
//     400 coded error for unknown names when StrictSelection is set.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := s.dataset()
	if err != nil {
		return nil, err
	}

	warnings, err := s.checkSelection(req.Selection, ds.Catalogs)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = s.settings.Title
	}

	view, width, height := engine.Aggregate(ds.Records, req.Selection)
	result := &Result{
		View:            view,
		Width:           width,
		Height:          height,
		Chart:           chart.Build(view, width, height, title),
		ExportAvailable: ds.HasTimeSeries(),
		Warnings:        warnings,
	}

	s.log.Debug("Aggregated %d rows into %d buckets (%dx%d)", len(ds.Records), len(view.Rows), width, height)

	if req.CompareToDistrict {
		result.District = s.districtComparison(ds, req.Selection, title)
	}

	if req.ShowSourceData {
		rows := types.RecordsTable(engine.FilterRows(ds.Records, req.Selection.Jobs, req.Selection.Departments))
		result.SourceRows = &rows
	}

	if req.IncludeDownload {
		if !ds.HasTimeSeries() {
			result.Warnings = append(result.Warnings, ErrTimeSeriesUnavailable.Error())
		} else {
			link, err := s.downloadLink(ds, req.Selection)
			if err != nil {
				return nil, err
			}
			result.DownloadLink = link
		}
	}

	return result, nil
}

// ExportSourceRows returns the time series rows matching sel, in file order.
func (s *Service) ExportSourceRows(sel types.Selection) (types.Table, error) {
	ds, err := s.dataset()
	if err != nil {
		return types.Table{}, err
	}
	return filterTimeSeries(ds, sel)
}

// dataset fetches the cached dataset, mapping an uninitialized cache to a
// coded error.
func (s *Service) dataset() (*dataset.Dataset, error) {
	ds, err := s.cache.Get()
	if errors.Is(err, dataset.ErrNotInitialized) {
		return nil, fmt.Errorf("%w: %w", constants.ErrDatasetUnavailable, err)
	}
	if err != nil {
		return nil, constants.WithCode(constants.ErrDatasetUnavailable.Code(), err)
	}
	return ds, nil
}

// districtComparison sums the job selection across every department.
func (s *Service) districtComparison(ds *dataset.Dataset, sel types.Selection, title string) *Comparison {
	districtSel := types.Selection{
		Jobs:       sel.Jobs,
		GroupJobs:  sel.GroupJobs,
		GroupDepts: true,
	}
	view, width, height := engine.Aggregate(ds.Records, districtSel)
	if title != "" {
		title += " (" + types.LabelDistrictTotals + ")"
	}
	return &Comparison{
		View:   view,
		Width:  width,
		Height: height,
		Chart:  chart.Build(view, width, height, title),
	}
}

func (s *Service) downloadLink(ds *dataset.Dataset, sel types.Selection) (string, error) {
	table, err := filterTimeSeries(ds, sel)
	if err != nil {
		return "", err
	}
	link, err := export.EncodeDownloadLink(table, s.settings.DownloadFilename, s.settings.DownloadLabel)
	if err != nil {
		return "", fmt.Errorf("failed to encode download link: %w", err)
	}
	return link, nil
}

// checkSelection turns unknown selected names into warnings, or into a 400
// error when the validator treats warnings as errors.
func (s *Service) checkSelection(sel types.Selection, catalogs dataset.Catalogs) ([]string, error) {
	result := s.validator.ValidateSelection(sel, catalogs.Jobs, catalogs.Departments)
	if err := result.Err("selection"); err != nil {
		return nil, constants.WithCode(http.StatusBadRequest, err)
	}

	var warnings []string
	for _, e := range result.Errors {
		warnings = append(warnings, fmt.Sprintf("%s %q %s", e.Field, e.Value, e.Message))
	}
	if len(warnings) > 0 {
		s.log.Warn("Selection has %d unknown name(s)", len(warnings))
	}
	return warnings, nil
}

func filterTimeSeries(ds *dataset.Dataset, sel types.Selection) (types.Table, error) {
	if !ds.HasTimeSeries() {
		return types.Table{}, ErrTimeSeriesUnavailable
	}
	table, err := engine.FilterTable(*ds.TimeSeries, sel.Jobs, sel.Departments)
	if err != nil {
		return types.Table{}, fmt.Errorf("failed to filter time series: %w", err)
	}
	return table, nil
}

// Settings returns the presentation defaults the service was built with.
func (s *Service) Settings() config.ReportSettings {
	return s.settings
}
