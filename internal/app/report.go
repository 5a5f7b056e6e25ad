package app

import (
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/report"
)

// ReportRequest selects the sessions to aggregate. From and To are
// inclusive YYYY-MM-DD dates; either may be empty.
type ReportRequest struct {
	From      string
	To        string
	Billed    domain.BilledFilter
	ProjectID string
	Now       *time.Time
}

func NewReportRequest() ReportRequest {
	return ReportRequest{Billed: domain.BilledAll}
}

type ReportResponse struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	From        string        `json:"from,omitempty"`
	To          string        `json:"to,omitempty"`
	Billed      string        `json:"billed"`
	Report      report.Report `json:"report"`
}

type ReportErrorCode string

const (
	ReportErrInvalidRange  ReportErrorCode = "INVALID_RANGE"
	ReportErrInvalidFilter ReportErrorCode = "INVALID_FILTER"
)

type ReportError struct {
	Code    ReportErrorCode
	Message string
}

func (e *ReportError) Error() string {
	return string(e.Code) + ": " + e.Message
}
