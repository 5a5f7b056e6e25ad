package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/live"
	"github.com/alexanderramin/tempo/internal/report"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService(h *harness, observers ...UseCaseObserver) SessionService {
	return NewSessionService(h.sessions, h.uow, h.resolver, h.hub, observers...)
}

func TestSessionService_CreateManual_DefaultsDate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.addProject(t, "Consulting")
	svc := newSessionService(h)

	before := time.Now().UTC().Add(-time.Second)
	s := &domain.Session{ProjectID: p.ID, Duration: 5400, IsManual: true}
	require.NoError(t, svc.Create(ctx, s))
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, h.user.ID, s.UserID)
	assert.True(t, s.Date.After(before), "date should default to now")

	got, err := svc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(5400), got.Duration)
	assert.True(t, got.IsManual)
	assert.Nil(t, got.StartTime)
}

func TestSessionService_Create_DateFromEndTime(t *testing.T) {
	h := newHarness(t)
	p := h.addProject(t, "Consulting")
	svc := newSessionService(h)

	end := testutil.Day(2024, time.March, 4)
	start := end.Add(-time.Hour)
	s := &domain.Session{ProjectID: p.ID, Duration: 3600, StartTime: &start, EndTime: &end}
	require.NoError(t, svc.Create(context.Background(), s))
	assert.True(t, s.Date.Equal(end))
}

func TestSessionService_Create_Invalid(t *testing.T) {
	h := newHarness(t)
	p := h.addProject(t, "Consulting")
	svc := newSessionService(h)
	now := time.Now()
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name string
		s    domain.Session
	}{
		{"missing project", domain.Session{Duration: 10}},
		{"negative duration", domain.Session{ProjectID: p.ID, Duration: -1}},
		{"end before start", domain.Session{ProjectID: p.ID, StartTime: &now, EndTime: &earlier}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.s
			assert.ErrorIs(t, svc.Create(context.Background(), &s), domain.ErrInvalidSession)
		})
	}
}

func TestSessionService_List_Filters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.addProject(t, "A")
	b := h.addProject(t, "B")

	jan := h.addSession(t, a.ID, 3600, testutil.WithDate(testutil.Day(2024, time.January, 10)), testutil.WithBilled(true))
	feb := h.addSession(t, a.ID, 1800, testutil.WithDate(testutil.Day(2024, time.February, 10)))
	febB := h.addSession(t, b.ID, 600, testutil.WithDate(testutil.Day(2024, time.February, 20)), testutil.WithManual())

	svc := newSessionService(h)
	febRange, err := report.ParseDateRange("2024-02-01", "2024-02-29", time.UTC)
	require.NoError(t, err)

	tests := []struct {
		name      string
		projectID string
		filter    report.Filter
		want      []string
	}{
		{"everything newest first", "", report.Filter{Location: time.UTC}, []string{febB.ID, feb.ID, jan.ID}},
		{"project", a.ID, report.Filter{Location: time.UTC}, []string{feb.ID, jan.ID}},
		{"range", "", report.Filter{Range: febRange, Location: time.UTC}, []string{febB.ID, feb.ID}},
		{"billed", "", report.Filter{Billed: domain.BilledOnly, Location: time.UTC}, []string{jan.ID}},
		{"unbilled in project", a.ID, report.Filter{Billed: domain.BilledUnbilled, Location: time.UTC}, []string{feb.ID}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.List(ctx, tc.projectID, tc.filter)
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, s := range got {
				ids[i] = s.ID
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestSessionService_SetBilled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.addProject(t, "A")
	s := h.addSession(t, p.ID, 60)
	svc := newSessionService(h)

	require.NoError(t, svc.SetBilled(ctx, s.ID, true))
	got, err := svc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBilled)

	require.NoError(t, svc.SetBilled(ctx, s.ID, true), "no-op when unchanged")
	assert.ErrorIs(t, svc.SetBilled(ctx, "missing", true), repository.ErrNotFound)
}

func TestSessionService_UpdateAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.addProject(t, "A")
	s := h.addSession(t, p.ID, 60, testutil.WithManual())
	svc := newSessionService(h)

	s.Duration = 7200
	require.NoError(t, svc.Update(ctx, s))
	got, err := svc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7200), got.Duration)

	require.NoError(t, svc.Delete(ctx, s.ID))
	got, err = svc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, svc.Delete(ctx, s.ID), repository.ErrNotFound)
}

func TestSessionService_Create_RollbackOnFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.addProject(t, "A")
	failing := &testutil.FailOnNthExecUoW{DB: h.db, FailOn: 1}
	svc := NewSessionService(h.sessions, failing, h.resolver, h.hub)

	err := svc.Create(ctx, &domain.Session{ProjectID: p.ID, Duration: 60})
	require.ErrorIs(t, err, testutil.ErrInjected)
	assert.Equal(t, int32(1), failing.Calls.Load())

	all, err := h.sessions.List(ctx, repository.SessionQuery{UserID: h.user.ID})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSessionService_Listen_ScopedToProject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.addProject(t, "A")
	b := h.addProject(t, "B")
	svc := newSessionService(h)
	defer svc.StopListening()

	updates := make(chan live.Snapshot[*domain.Session], 8)
	require.NoError(t, svc.Listen(ctx, a.ID, func(s live.Snapshot[*domain.Session]) { updates <- s }))
	first := <-updates
	assert.Empty(t, first.Items)

	require.NoError(t, svc.Create(ctx, &domain.Session{ProjectID: b.ID, Duration: 60}))
	require.NoError(t, svc.Create(ctx, &domain.Session{ProjectID: a.ID, Duration: 120}))

	require.Eventually(t, func() bool {
		items := svc.Cached()
		return len(items) == 1 && items[0].ProjectID == a.ID
	}, 2*time.Second, 10*time.Millisecond)
}
