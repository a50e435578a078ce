package controller

import (
	"github.com/anthonymoser/cps-positions/internal/report"
)

type Controller struct {
	reports *report.Service
}

func NewController(reports *report.Service) *Controller {
	return &Controller{reports: reports}
}
