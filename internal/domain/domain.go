package domain

import "github.com/anthonymoser/cps-positions/internal/types"

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Jobs        int    `json:"jobs"`
	Departments int    `json:"departments"`
}

// SelectionRequest is the filter part of every report request body.
type SelectionRequest struct {
	Jobs        []string `json:"jobs" validate:"omitempty,dive,required"`
	Departments []string `json:"departments" validate:"omitempty,dive,required"`
	GroupJobs   bool     `json:"group_jobs"`
	GroupDepts  bool     `json:"group_depts"`
}

func (r SelectionRequest) Selection() types.Selection {
	return types.Selection{
		Jobs:        r.Jobs,
		Departments: r.Departments,
		GroupJobs:   r.GroupJobs,
		GroupDepts:  r.GroupDepts,
	}
}

type ReportRequest struct {
	SelectionRequest
	ShowSourceData    bool   `json:"show_source_data"`
	CompareToDistrict bool   `json:"compare_to_district"`
	IncludeDownload   bool   `json:"include_download"`
	Title             string `json:"title" validate:"max=200"`
}

type ExportRequest struct {
	Jobs        []string `json:"jobs" validate:"omitempty,dive,required"`
	Departments []string `json:"departments" validate:"omitempty,dive,required"`
}

func (r ExportRequest) Selection() types.Selection {
	return types.Selection{Jobs: r.Jobs, Departments: r.Departments}
}
