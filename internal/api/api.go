package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/anthonymoser/cps-positions/internal/api/controller"
	"github.com/anthonymoser/cps-positions/internal/report"
)

type Options struct {
	AllowOrigins []string
}

type APIService struct {
	router *echo.Echo
	log    *zap.Logger
}

func (svc *APIService) Serve(addr string) error {
	svc.log.Info("http server listening", zap.String("addr", addr))
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

// Handler exposes the router for httptest.
func (svc *APIService) Handler() http.Handler {
	return svc.router
}

func NewAPIService(reports *report.Service, opts Options, log *zap.Logger) *APIService {
	if log == nil {
		log = zap.NewNop()
	}
	svc := &APIService{router: echo.New(), log: log}

	svc.router.HideBanner = true
	svc.router.HidePort = true
	svc.router.Validator = NewValidator()
	svc.router.HTTPErrorHandler = newHTTPErrorHandler(log)
	svc.router.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	svc.router.Use(requestLogger(log))
	svc.router.Use(middleware.Recover())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	cntrl := controller.NewController(reports)

	svc.router.GET("/healthz", cntrl.Healthz)

	api := svc.router.Group("/api/v1")
	api.GET("/catalog", cntrl.GetCatalog)
	api.POST("/export", cntrl.ExportSourceRows)

	reportGroup := api.Group("/report")
	reportGroup.POST("", cntrl.PostReport)
	reportGroup.POST("/chart.png", cntrl.PostReportChart)

	return svc
}
