package api

import (
	"net/http"

	"github.com/anthonymoser/cps-positions/internal/pkg/constants"
)

// RequestValidator adapts the shared struct validator to echo.Validator.
type RequestValidator struct{}

func NewValidator() *RequestValidator {
	return &RequestValidator{}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := constants.Validate.Struct(i); err != nil {
		return constants.WithCode(http.StatusBadRequest, err)
	}
	return nil
}
