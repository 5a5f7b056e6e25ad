package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/report"
	"github.com/alexanderramin/tempo/internal/repository"
)

type reportService struct {
	projects repository.ProjectRepo
	sessions repository.SessionRepo
	users    UserResolver
	loc      *time.Location
	observer UseCaseObserver
}

// NewReportService aggregates in loc; nil means time.Local.
func NewReportService(
	projects repository.ProjectRepo,
	sessions repository.SessionRepo,
	users UserResolver,
	loc *time.Location,
	observers ...UseCaseObserver,
) app.ReportUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{
		projects: projects,
		sessions: sessions,
		users:    users,
		loc:      loc,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Report fetches a filtered snapshot of the user's sessions and aggregates
// it. The store narrows the rows; the same filter is re-applied in memory
// before aggregation.
func (s *reportService) Report(ctx context.Context, req app.ReportRequest) (resp *app.ReportResponse, err error) {
	fields := map[string]any{"from": req.From, "to": req.To, "billed": string(req.Billed)}
	defer observe(ctx, s.observer, "report", time.Now(), fields, &err)

	uid, err := s.users.UserID()
	if err != nil {
		return nil, err
	}

	billed, perr := domain.ParseBilledFilter(string(req.Billed))
	if perr != nil {
		return nil, &app.ReportError{Code: app.ReportErrInvalidFilter, Message: perr.Error()}
	}
	rng, perr := report.ParseDateRange(req.From, req.To, s.loc)
	if perr != nil {
		return nil, &app.ReportError{Code: app.ReportErrInvalidRange, Message: perr.Error()}
	}
	filter := report.Filter{Range: rng, Billed: billed, Location: s.loc}

	sessions, err := s.sessions.List(ctx, sessionQuery(uid, req.ProjectID, filter))
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.List(ctx, uid, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if req.Now != nil {
		now = *req.Now
	}
	rep := report.Build(sessions, projects, filter, now)
	fields["sessions"] = len(sessions)
	fields["days"] = len(rep.Days)

	return &app.ReportResponse{
		GeneratedAt: now,
		From:        req.From,
		To:          req.To,
		Billed:      string(billed),
		Report:      rep,
	}, nil
}
