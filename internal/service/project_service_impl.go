package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/live"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	sessions repository.SessionRepo
	uow      db.UnitOfWork
	users    UserResolver
	hub      *live.Hub
	feed     *live.Feed[*domain.Project]
	observer UseCaseObserver
}

func NewProjectService(
	projects repository.ProjectRepo,
	sessions repository.SessionRepo,
	uow db.UnitOfWork,
	users UserResolver,
	hub *live.Hub,
	observers ...UseCaseObserver,
) ProjectService {
	return &projectService{
		projects: projects,
		sessions: sessions,
		uow:      uow,
		users:    users,
		hub:      hub,
		feed:     live.NewFeed[*domain.Project](hub),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	fields := map[string]any{"title": p.Title, "billing_type": string(p.BillingType)}
	defer observe(ctx, s.observer, "create-project", time.Now(), fields, &err)

	uid, err := s.users.UserID()
	if err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.BillingType == "" {
		p.BillingType = domain.BillingHourly
	}
	p.UserID = uid
	p.Active = true
	now := nowUTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err = p.Validate(); err != nil {
		return err
	}
	fields["project_id"] = p.ID

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteProjectRepo(tx).Create(ctx, p); err != nil {
			return err
		}
		s.publishAfterCommit(ctx, uid)
		return nil
	})
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	uid, err := s.users.UserID()
	if err != nil {
		return nil, err
	}
	return absentOnNotFound(s.projects.GetByID(ctx, uid, id))
}

func (s *projectService) List(ctx context.Context, includeInactive bool) ([]*domain.Project, error) {
	uid, err := s.users.UserID()
	if err != nil {
		return nil, err
	}
	return s.projects.List(ctx, uid, includeInactive)
}

func (s *projectService) Update(ctx context.Context, p *domain.Project) (err error) {
	fields := map[string]any{"project_id": p.ID}
	defer observe(ctx, s.observer, "update-project", time.Now(), fields, &err)

	uid, err := s.users.UserID()
	if err != nil {
		return err
	}
	p.UserID = uid
	p.UpdatedAt = nowUTC()
	if err = p.Validate(); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteProjectRepo(tx).Update(ctx, p); err != nil {
			return err
		}
		s.publishAfterCommit(ctx, uid)
		return nil
	})
}

func (s *projectService) SetActive(ctx context.Context, id string, active bool) (err error) {
	fields := map[string]any{"project_id": id, "active": active}
	defer observe(ctx, s.observer, "set-project-active", time.Now(), fields, &err)

	uid, err := s.users.UserID()
	if err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteProjectRepo(tx)
		p, err := repo.GetByID(ctx, uid, id)
		if err != nil {
			return err
		}
		if p.Active == active {
			return nil
		}
		p.Active = active
		p.UpdatedAt = nowUTC()
		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		s.publishAfterCommit(ctx, uid)
		return nil
	})
}

// Delete removes a project. Sessions are kept and report under an empty
// title, so a project with sessions is only removed when forced.
func (s *projectService) Delete(ctx context.Context, id string, force bool) (err error) {
	fields := map[string]any{"project_id": id, "force": force}
	defer observe(ctx, s.observer, "delete-project", time.Now(), fields, &err)

	uid, err := s.users.UserID()
	if err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if !force {
			n, err := repository.NewSQLiteSessionRepo(tx).CountByProject(ctx, uid, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w (%d); use --force to delete anyway", ErrProjectHasSessions, n)
			}
		}
		if err := repository.NewSQLiteProjectRepo(tx).Delete(ctx, uid, id); err != nil {
			return err
		}
		s.publishAfterCommit(ctx, uid)
		return nil
	})
}

func (s *projectService) Listen(ctx context.Context, onUpdate func(live.Snapshot[*domain.Project])) error {
	uid, err := s.users.UserID()
	if err != nil {
		return err
	}
	fetch := func(ctx context.Context) ([]*domain.Project, error) {
		return s.projects.List(ctx, uid, true)
	}
	s.feed.Listen(ctx, live.ProjectsTopic(uid), fetch, onUpdate)
	return nil
}

func (s *projectService) StopListening() { s.feed.Stop() }

func (s *projectService) Cached() []*domain.Project { return s.feed.Items() }

func (s *projectService) publishAfterCommit(ctx context.Context, uid string) {
	db.AfterCommit(ctx, func() { s.hub.Publish(live.ProjectsTopic(uid)) })
}
