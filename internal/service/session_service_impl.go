package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/live"
	"github.com/alexanderramin/tempo/internal/report"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/google/uuid"
)

type sessionService struct {
	sessions repository.SessionRepo
	uow      db.UnitOfWork
	users    UserResolver
	hub      *live.Hub
	feed     *live.Feed[*domain.Session]
	observer UseCaseObserver
}

func NewSessionService(
	sessions repository.SessionRepo,
	uow db.UnitOfWork,
	users UserResolver,
	hub *live.Hub,
	observers ...UseCaseObserver,
) SessionService {
	return &sessionService{
		sessions: sessions,
		uow:      uow,
		users:    users,
		hub:      hub,
		feed:     live.NewFeed[*domain.Session](hub),
		observer: useCaseObserverOrNoop(observers),
	}
}

// Create records a session, typically a manual entry. A zero Date defaults
// to the end time, or now.
func (s *sessionService) Create(ctx context.Context, sess *domain.Session) (err error) {
	fields := map[string]any{"project_id": sess.ProjectID, "duration": sess.Duration, "manual": sess.IsManual}
	defer observe(ctx, s.observer, "create-session", time.Now(), fields, &err)

	uid, err := s.users.UserID()
	if err != nil {
		return err
	}
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	now := nowUTC()
	if sess.Date.IsZero() {
		if sess.EndTime != nil {
			sess.Date = *sess.EndTime
		} else {
			sess.Date = now
		}
	}
	sess.UserID = uid
	sess.CreatedAt = now
	sess.UpdatedAt = now
	if err = sess.Validate(); err != nil {
		return err
	}
	fields["session_id"] = sess.ID

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSessionRepo(tx).Create(ctx, sess); err != nil {
			return err
		}
		s.publishAfterCommit(ctx, uid)
		return nil
	})
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	uid, err := s.users.UserID()
	if err != nil {
		return nil, err
	}
	return absentOnNotFound(s.sessions.GetByID(ctx, uid, id))
}

// List returns the user's sessions matching f, newest first. The date range
// and billed filter run in SQL.
func (s *sessionService) List(ctx context.Context, projectID string, f report.Filter) ([]*domain.Session, error) {
	uid, err := s.users.UserID()
	if err != nil {
		return nil, err
	}
	return s.sessions.List(ctx, sessionQuery(uid, projectID, f))
}

func (s *sessionService) Update(ctx context.Context, sess *domain.Session) (err error) {
	fields := map[string]any{"session_id": sess.ID}
	defer observe(ctx, s.observer, "update-session", time.Now(), fields, &err)

	uid, err := s.users.UserID()
	if err != nil {
		return err
	}
	sess.UserID = uid
	sess.UpdatedAt = nowUTC()
	if err = sess.Validate(); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSessionRepo(tx).Update(ctx, sess); err != nil {
			return err
		}
		s.publishAfterCommit(ctx, uid)
		return nil
	})
}

func (s *sessionService) SetBilled(ctx context.Context, id string, billed bool) (err error) {
	fields := map[string]any{"session_id": id, "billed": billed}
	defer observe(ctx, s.observer, "set-session-billed", time.Now(), fields, &err)

	uid, err := s.users.UserID()
	if err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteSessionRepo(tx)
		sess, err := repo.GetByID(ctx, uid, id)
		if err != nil {
			return err
		}
		if sess.IsBilled == billed {
			return nil
		}
		sess.IsBilled = billed
		sess.UpdatedAt = nowUTC()
		if err := repo.Update(ctx, sess); err != nil {
			return err
		}
		s.publishAfterCommit(ctx, uid)
		return nil
	})
}

func (s *sessionService) Delete(ctx context.Context, id string) (err error) {
	fields := map[string]any{"session_id": id}
	defer observe(ctx, s.observer, "delete-session", time.Now(), fields, &err)

	uid, err := s.users.UserID()
	if err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSessionRepo(tx).Delete(ctx, uid, id); err != nil {
			return err
		}
		s.publishAfterCommit(ctx, uid)
		return nil
	})
}

func (s *sessionService) Listen(ctx context.Context, projectID string, onUpdate func(live.Snapshot[*domain.Session])) error {
	uid, err := s.users.UserID()
	if err != nil {
		return err
	}
	q := repository.SessionQuery{UserID: uid, ProjectID: projectID}
	fetch := func(ctx context.Context) ([]*domain.Session, error) {
		return s.sessions.List(ctx, q)
	}
	s.feed.Listen(ctx, live.SessionsTopic(uid), fetch, onUpdate)
	return nil
}

func (s *sessionService) StopListening() { s.feed.Stop() }

func (s *sessionService) Cached() []*domain.Session { return s.feed.Items() }

func (s *sessionService) publishAfterCommit(ctx context.Context, uid string) {
	db.AfterCommit(ctx, func() { s.hub.Publish(live.SessionsTopic(uid)) })
}

func sessionQuery(uid, projectID string, f report.Filter) repository.SessionQuery {
	from, to := f.Bounds()
	return repository.SessionQuery{
		UserID:    uid,
		ProjectID: projectID,
		From:      from,
		To:        to,
		Billed:    f.Billed,
	}
}
