package constants

import (
	"errors"
	"net/http"
)

// CodedError pairs an error with the HTTP status it maps to.
type CodedError struct {
	code int
	err  error
}

// NewCodedError returns a CodedError with the given status and message.
func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, err: errors.New(msg)}
}

// WithCode wraps err so that handlers report it with code.
func WithCode(code int, err error) *CodedError {
	return &CodedError{code: code, err: err}
}

func (e *CodedError) Error() string { return e.err.Error() }

func (e *CodedError) Unwrap() error { return e.err }

// Code returns the HTTP status.
func (e *CodedError) Code() int { return e.code }

var (
	ErrTimeSeriesUnavailable = NewCodedError(http.StatusNotFound, "time series data is not available for export")
	ErrDatasetUnavailable    = NewCodedError(http.StatusServiceUnavailable, "dataset is not loaded")
	ErrInvalidFacet          = NewCodedError(http.StatusBadRequest, "invalid facet index")
	ErrBadRequest            = NewCodedError(http.StatusBadRequest, "bad request")
)
