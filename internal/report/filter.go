package report

import (
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses YYYY-MM-DD bounds in loc. Either may be empty; both
// empty yields nil.
func ParseDateRange(from, to string, loc *time.Location) (*DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	var r DateRange
	if from != "" {
		t, err := time.ParseInLocation(domain.DateLayout, from, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q: want YYYY-MM-DD", from)
		}
		r.Start = t
	}
	if to != "" {
		t, err := time.ParseInLocation(domain.DateLayout, to, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: want YYYY-MM-DD", to)
		}
		r.End = t
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return nil, fmt.Errorf("end date %s precedes start date %s", to, from)
	}
	return &r, nil
}

// Filter restricts sessions before aggregation.
type Filter struct {
	Range    *DateRange
	Billed   domain.BilledFilter
	Location *time.Location
}

// Bounds returns the instants covered by the range: 00:00:00 of the start
// day through 23:59:59.999 of the end day. A zero side is unbounded.
func (f Filter) Bounds() (from, to *time.Time) {
	if f.Range == nil {
		return nil, nil
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	if !f.Range.Start.IsZero() {
		s := startOfDay(f.Range.Start, loc)
		from = &s
	}
	if !f.Range.End.IsZero() {
		e := startOfDay(f.Range.End, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
		to = &e
	}
	return from, to
}

// Apply returns the sessions that pass the filter, in input order.
func (f Filter) Apply(sessions []*domain.Session) []*domain.Session {
	from, to := f.Bounds()
	out := make([]*domain.Session, 0, len(sessions))
	for _, s := range sessions {
		if s == nil || !f.Billed.Matches(s.IsBilled) {
			continue
		}
		if from != nil && s.Date.Before(*from) {
			continue
		}
		if to != nil && s.Date.After(*to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
