package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anthonymoser/cps-positions/internal/chart"
	"github.com/anthonymoser/cps-positions/internal/domain"
	"github.com/anthonymoser/cps-positions/internal/export"
	"github.com/anthonymoser/cps-positions/internal/pkg/constants"
	"github.com/anthonymoser/cps-positions/internal/report"
)

func bindReportRequest(ctx echo.Context) (report.Request, error) {
	var body domain.ReportRequest
	if err := ctx.Bind(&body); err != nil {
		return report.Request{}, constants.WithCode(http.StatusBadRequest, err)
	}
	if err := ctx.Validate(&body); err != nil {
		return report.Request{}, err
	}

	return report.Request{
		Selection:         body.Selection(),
		ShowSourceData:    body.ShowSourceData,
		CompareToDistrict: body.CompareToDistrict,
		IncludeDownload:   body.IncludeDownload,
		Title:             body.Title,
	}, nil
}

func (c *Controller) PostReport(ctx echo.Context) error {
	req, err := bindReportRequest(ctx)
	if err != nil {
		return err
	}

	result, err := c.reports.Run(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, result)
}

// PostReportChart renders one facet of the report chart as a PNG. The facet
// is chosen by the "facet" query parameter and defaults to the first.
func (c *Controller) PostReportChart(ctx echo.Context) error {
	facet := 0
	if raw := ctx.QueryParam("facet"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %q", constants.ErrInvalidFacet, raw)
		}
		facet = n
	}

	req, err := bindReportRequest(ctx)
	if err != nil {
		return err
	}

	result, err := c.reports.Run(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, result.Chart, facet); err != nil {
		if errors.Is(err, chart.ErrFacetOutOfRange) || errors.Is(err, chart.ErrEmptyFacet) {
			return constants.WithCode(constants.ErrInvalidFacet.Code(), err)
		}
		return err
	}

	return ctx.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (c *Controller) ExportSourceRows(ctx echo.Context) error {
	var body domain.ExportRequest
	if err := ctx.Bind(&body); err != nil {
		return constants.WithCode(http.StatusBadRequest, err)
	}
	if err := ctx.Validate(&body); err != nil {
		return err
	}

	table, err := c.reports.ExportSourceRows(body.Selection())
	if err != nil {
		return err
	}

	payload, err := export.EncodeCSV(table)
	if err != nil {
		return err
	}

	filename := c.reports.Settings().DownloadFilename
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", payload)
}
