package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anthonymoser/cps-positions/internal/domain"
	"github.com/anthonymoser/cps-positions/internal/pkg/constants"
)

func newHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		msg := err.Error()
		code := http.StatusInternalServerError

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}
		var ce *constants.CodedError
		if errors.As(err, &ce) {
			code = ce.Code()
		}

		if code >= http.StatusInternalServerError {
			log.Error("request error", zap.Error(err), zap.Int("code", code))
		}

		_ = c.JSON(code, domain.ErrorResponse{
			Message: msg,
			Code:    code,
		})
	}
}
