package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/auth"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_AggregatesByDay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	hourly := h.addProject(t, "Hourly", testutil.WithHourlyRate(10000))
	fixed := h.addProject(t, "Fixed", testutil.WithFixedFee(100000, 10*3600))

	h.addSession(t, hourly.ID, 2*3600, testutil.WithDate(testutil.Day(2024, time.May, 2)), testutil.WithBilled(true))
	h.addSession(t, fixed.ID, 3600, testutil.WithDate(testutil.Day(2024, time.May, 2)))
	h.addSession(t, hourly.ID, 1800, testutil.WithDate(testutil.Day(2024, time.May, 3)))
	h.addSession(t, hourly.ID, 3600, testutil.WithDate(testutil.Day(2024, time.April, 30)))

	svc := NewReportService(h.projects, h.sessions, h.resolver, time.UTC)
	now := testutil.Day(2024, time.May, 20)
	req := app.NewReportRequest()
	req.Now = &now

	resp, err := svc.Report(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, now, resp.GeneratedAt)
	assert.Equal(t, "all", resp.Billed)

	rep := resp.Report
	require.Len(t, rep.Days, 3)
	assert.Equal(t, "2024-05-03", rep.Days[0].Date)
	assert.Equal(t, "2024-05-02", rep.Days[1].Date)
	assert.Equal(t, "2024-04-30", rep.Days[2].Date)

	may2 := rep.Days[1]
	assert.Equal(t, int64(3*3600), may2.TotalSeconds)
	// 2h at 100.00/h plus 1h of a 1000.00 fee estimated at 10h.
	assert.InDelta(t, 30000, may2.TotalAmount, 0.001)

	assert.Equal(t, int64(2*3600+3600+1800), rep.Month.TotalSeconds)
	assert.Equal(t, int64(2*3600+3600+1800+3600), rep.TotalSeconds)
	assert.Len(t, rep.Monthly, 2)
}

func TestReportService_FiltersRangeBilledAndProject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.addProject(t, "A")
	b := h.addProject(t, "B")
	h.addSession(t, a.ID, 3600, testutil.WithDate(testutil.Day(2024, time.June, 1)), testutil.WithBilled(true))
	h.addSession(t, a.ID, 1200, testutil.WithDate(testutil.Day(2024, time.June, 2)))
	h.addSession(t, b.ID, 600, testutil.WithDate(testutil.Day(2024, time.June, 2)))
	h.addSession(t, a.ID, 60, testutil.WithDate(testutil.Day(2024, time.July, 1)))

	svc := NewReportService(h.projects, h.sessions, h.resolver, time.UTC)

	tests := []struct {
		name  string
		req   app.ReportRequest
		total int64
	}{
		{"range", app.ReportRequest{From: "2024-06-01", To: "2024-06-30"}, 3600 + 1200 + 600},
		{"open end", app.ReportRequest{From: "2024-06-02"}, 1200 + 600 + 60},
		{"billed", app.ReportRequest{Billed: domain.BilledOnly}, 3600},
		{"unbilled in June", app.ReportRequest{From: "2024-06-01", To: "2024-06-30", Billed: domain.BilledUnbilled}, 1800},
		{"project", app.ReportRequest{ProjectID: b.ID}, 600},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.Report(ctx, tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.total, resp.Report.TotalSeconds)
		})
	}
}

func TestReportService_DeletedProjectStillReported(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.addProject(t, "Gone")
	h.addSession(t, p.ID, 3600)
	require.NoError(t, h.projects.Delete(ctx, h.user.ID, p.ID))

	svc := NewReportService(h.projects, h.sessions, h.resolver, time.UTC)
	resp, err := svc.Report(ctx, app.NewReportRequest())
	require.NoError(t, err)
	require.Len(t, resp.Report.Days, 1)
	s := resp.Report.Days[0].Sessions[0]
	assert.Empty(t, s.ProjectTitle)
	assert.Zero(t, resp.Report.TotalAmount)
}

func TestReportService_InvalidInput(t *testing.T) {
	h := newHarness(t)
	svc := NewReportService(h.projects, h.sessions, h.resolver, time.UTC)

	tests := []struct {
		name string
		req  app.ReportRequest
		code app.ReportErrorCode
	}{
		{"reversed", app.ReportRequest{From: "2024-06-30", To: "2024-06-01"}, app.ReportErrInvalidRange},
		{"bad date", app.ReportRequest{From: "30/06/2024"}, app.ReportErrInvalidRange},
		{"bad billed", app.ReportRequest{Billed: "sometimes"}, app.ReportErrInvalidFilter},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Report(context.Background(), tc.req)
			var rerr *app.ReportError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tc.code, rerr.Code)
		})
	}
}

func TestReportService_RequiresSignIn(t *testing.T) {
	h := newHarness(t)
	h.resolver.set("")
	svc := NewReportService(h.projects, h.sessions, h.resolver, time.UTC)

	_, err := svc.Report(context.Background(), app.NewReportRequest())
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}
