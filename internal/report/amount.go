// Package report turns already-fetched sessions and projects into per-day
// buckets, month-to-date statistics and per-month summaries. Nothing here
// performs I/O or returns an error; malformed input contributes zero.
package report

import (
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

const secondsPerHour = 3600.0

// ComputeSessionAmount prices a session against its project's billing terms.
// A nil project prices as hourly at zero.
func ComputeSessionAmount(s *domain.Session, p *domain.Project) float64 {
	if s == nil || p == nil {
		return 0
	}
	return amount(s.Duration, p.BillingType, p.BillingAmount, p.EstimatedSeconds())
}

// SessionAmount prices an enriched session.
func SessionAmount(rs domain.ReportSession) float64 {
	if rs.Session == nil {
		return 0
	}
	return amount(rs.Duration, rs.BillingType, rs.BillingAmount, rs.EstimatedDuration)
}

// amount is the hourly rate times hours for hourly projects. Fixed fees are
// prorated by actual over estimated hours, and are 0 without an estimate.
func amount(duration int64, bt domain.BillingType, billing, estimated int64) float64 {
	if duration <= 0 || billing <= 0 {
		return 0
	}
	hours := float64(duration) / secondsPerHour
	switch bt {
	case domain.BillingFixed:
		estimatedHours := float64(estimated) / secondsPerHour
		if estimatedHours <= 0 {
			return 0
		}
		return float64(billing) / estimatedHours * hours
	default:
		return hours * float64(billing)
	}
}

// Enrich joins each session with its project's billing fields and assigns
// its date bucket in loc. Sessions whose project is gone are kept with an
// empty title and hourly billing at zero.
func Enrich(sessions []*domain.Session, projects []*domain.Project, loc *time.Location) []domain.ReportSession {
	byID := make(map[string]*domain.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	out := make([]domain.ReportSession, 0, len(sessions))
	for _, s := range sessions {
		if s == nil {
			continue
		}
		rs := domain.ReportSession{
			Session:     s,
			DateKey:     s.DateKey(loc),
			BillingType: domain.BillingHourly,
		}
		if p, ok := byID[s.ProjectID]; ok {
			rs.ProjectTitle = p.Title
			rs.BillingType = p.BillingType
			rs.BillingAmount = p.BillingAmount
			rs.EstimatedDuration = p.EstimatedSeconds()
		}
		out = append(out, rs)
	}
	return out
}
