package report

import (
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// GroupByDate buckets sessions by date key, most recent date first. Sessions
// keep their input order inside a bucket.
func GroupByDate(sessions []domain.ReportSession) []domain.ReportDay {
	index := make(map[string]int)
	var days []domain.ReportDay

	for _, rs := range sessions {
		if rs.Session == nil {
			continue
		}
		i, ok := index[rs.DateKey]
		if !ok {
			i = len(days)
			index[rs.DateKey] = i
			days = append(days, domain.ReportDay{Date: rs.DateKey})
		}
		d := &days[i]
		d.TotalSeconds += max(rs.Duration, 0)
		d.TotalAmount += SessionAmount(rs)
		d.Sessions = append(d.Sessions, rs)
	}

	sort.SliceStable(days, func(a, b int) bool {
		return days[a].Date > days[b].Date
	})
	return days
}

// MonthStats summarizes the buckets of one calendar month.
type MonthStats struct {
	TotalSeconds int64   `json:"totalSeconds"`
	Estimated    float64 `json:"estimated"`
	Billed       float64 `json:"billed"`
	Pending      float64 `json:"pending"`
}

// CurrentMonthStats totals the buckets that fall in now's month in loc.
// Callers pass the current time on every call; nothing is cached.
func CurrentMonthStats(days []domain.ReportDay, now time.Time, loc *time.Location) MonthStats {
	if loc == nil {
		loc = time.Local
	}
	prefix := now.In(loc).Format("2006-01")

	var st MonthStats
	for _, d := range days {
		if !strings.HasPrefix(d.Date, prefix) {
			continue
		}
		st.TotalSeconds += d.TotalSeconds
		st.Estimated += d.TotalAmount
		for _, rs := range d.Sessions {
			if rs.IsBilled {
				st.Billed += SessionAmount(rs)
			} else {
				st.Pending += SessionAmount(rs)
			}
		}
	}
	return st
}

type MonthTotals struct {
	TotalTime     int64   `json:"totalTime"`
	TotalEarnings float64 `json:"totalEarnings"`
}

// MonthlySummary sums bucket totals per YYYY-MM key.
func MonthlySummary(days []domain.ReportDay) map[string]MonthTotals {
	out := make(map[string]MonthTotals)
	for _, d := range days {
		if len(d.Date) < 7 {
			continue
		}
		key := d.Date[:7]
		m := out[key]
		m.TotalTime += d.TotalSeconds
		m.TotalEarnings += d.TotalAmount
		out[key] = m
	}
	return out
}

// SortedMonths returns the summary keys, most recent first.
func SortedMonths(summary map[string]MonthTotals) []string {
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// Totals sums seconds and amount across all buckets.
func Totals(days []domain.ReportDay) (seconds int64, amount float64) {
	for _, d := range days {
		seconds += d.TotalSeconds
		amount += d.TotalAmount
	}
	return seconds, amount
}
