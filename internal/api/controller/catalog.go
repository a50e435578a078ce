package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anthonymoser/cps-positions/internal/domain"
)

func (c *Controller) GetCatalog(ctx echo.Context) error {
	catalogs, err := c.reports.Catalog()
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, catalogs)
}

func (c *Controller) Healthz(ctx echo.Context) error {
	catalogs, err := c.reports.Catalog()
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, domain.HealthResponse{
		Status:      "ok",
		Jobs:        len(catalogs.Jobs),
		Departments: len(catalogs.Departments),
	})
}
