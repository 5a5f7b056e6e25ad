package report

import (
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// Report is the full aggregation of one filtered session set.
type Report struct {
	Days         []domain.ReportDay     `json:"days"`
	Month        MonthStats             `json:"month"`
	Monthly      map[string]MonthTotals `json:"monthly"`
	TotalSeconds int64                  `json:"totalSeconds"`
	TotalAmount  float64                `json:"totalAmount"`
}

// Build filters, enriches and aggregates sessions. now anchors the
// month-to-date statistics.
func Build(sessions []*domain.Session, projects []*domain.Project, f Filter, now time.Time) Report {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	days := GroupByDate(Enrich(f.Apply(sessions), projects, loc))
	secs, amt := Totals(days)
	return Report{
		Days:         days,
		Month:        CurrentMonthStats(days, now, loc),
		Monthly:      MonthlySummary(days),
		TotalSeconds: secs,
		TotalAmount:  amt,
	}
}
