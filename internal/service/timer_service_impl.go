package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/live"
	"github.com/alexanderramin/tempo/internal/localstate"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/timer"
	"github.com/google/uuid"
)

// StateStore persists snapshots between invocations.
type StateStore interface {
	Save(key string, v any) error
	Load(key string, v any) (bool, error)
	Delete(key string) error
}

type TimerOption func(*timerService)

func WithTimerClock(c timer.Clock) TimerOption {
	return func(s *timerService) { s.clock = c }
}

func WithTickInterval(d time.Duration) TimerOption {
	return func(s *timerService) { s.interval = d }
}

func WithTimerObserver(o UseCaseObserver) TimerOption {
	return func(s *timerService) {
		if o != nil {
			s.observer = o
		}
	}
}

// timerService owns the active session. The persisted sessionStore snapshot
// is the source of truth: every call reloads it, so several invocations
// can drive the same timer one after another.
type timerService struct {
	projects repository.ProjectRepo
	uow      db.UnitOfWork
	users    UserResolver
	store    StateStore
	hub      *live.Hub
	observer UseCaseObserver
	clock    timer.Clock
	interval time.Duration

	mu     sync.Mutex
	timer  *timer.Timer
	active *domain.ActiveSession
}

// NewTimerService creates the service. Call Close to stop the timer's
// refresh goroutine.
func NewTimerService(
	projects repository.ProjectRepo,
	uow db.UnitOfWork,
	users UserResolver,
	store StateStore,
	hub *live.Hub,
	opts ...TimerOption,
) TimerService {
	s := &timerService{
		projects: projects,
		uow:      uow,
		users:    users,
		store:    store,
		hub:      hub,
		observer: NoopUseCaseObserver{},
		clock:    systemClock{},
		interval: timer.DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.timer = timer.New(timer.WithClock(s.clock), timer.WithInterval(s.interval))
	return s
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (s *timerService) Close() { s.timer.Close() }

func (s *timerService) OnTick(fn func(seconds int64)) (cancel func()) {
	return s.timer.OnTick(fn)
}

func (s *timerService) Start(ctx context.Context, projectID string) (st *app.TimerStatus, err error) {
	fields := map[string]any{"project_id": projectID}
	defer observe(ctx, s.observer, "start-timer", time.Now(), fields, &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.load()
	if err != nil {
		return nil, err
	}
	if s.active != nil {
		return nil, ErrTimerAlreadyActive
	}
	p, err := s.projects.GetByID(ctx, uid, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, fmt.Errorf("%w: %s", ErrProjectInactive, p.Title)
	}

	s.active = domain.NewActiveSession(p.ID, s.clock.Now())
	s.timer.Reset()
	s.timer.Start()
	if err = s.save(uid); err != nil {
		return nil, err
	}
	return s.statusLocked(p.Title), nil
}

func (s *timerService) Pause(ctx context.Context) (st *app.TimerStatus, err error) {
	defer observe(ctx, s.observer, "pause-timer", time.Now(), nil, &err)
	return s.transition(ctx, s.timer.Pause)
}

func (s *timerService) Resume(ctx context.Context) (st *app.TimerStatus, err error) {
	defer observe(ctx, s.observer, "resume-timer", time.Now(), nil, &err)
	return s.transition(ctx, s.timer.Start)
}

func (s *timerService) transition(ctx context.Context, apply func()) (*app.TimerStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.load()
	if err != nil {
		return nil, err
	}
	if s.active == nil {
		return nil, ErrNoActiveSession
	}
	apply()
	if err := s.save(uid); err != nil {
		return nil, err
	}
	return s.statusLocked(s.projectTitle(ctx, uid)), nil
}

// Status reports the active session, or a status with nil Active.
func (s *timerService) Status(ctx context.Context) (*app.TimerStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.load()
	if err != nil {
		return nil, err
	}
	if s.active == nil {
		return &app.TimerStatus{}, nil
	}
	return s.statusLocked(s.projectTitle(ctx, uid)), nil
}

// Finish stops the timer and commits the active session. On failure the
// active session is kept, paused, so it can be retried.
func (s *timerService) Finish(ctx context.Context) (sess *domain.Session, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "finish-timer", time.Now(), fields, &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.load()
	if err != nil {
		return nil, err
	}
	if s.active == nil {
		return nil, ErrNoActiveSession
	}

	s.timer.Pause()
	if err = s.save(uid); err != nil {
		return nil, err
	}

	s.active.Duration = s.timer.Duration()
	sess = s.active.Commit(uid, s.active.Duration, s.clock.Now().UTC())
	sess.ID = uuid.New().String()
	now := nowUTC()
	sess.CreatedAt = now
	sess.UpdatedAt = now
	fields["project_id"] = sess.ProjectID
	fields["duration"] = sess.Duration
	if err = sess.Validate(); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSessionRepo(tx).Create(ctx, sess); err != nil {
			return err
		}
		db.AfterCommit(ctx, func() { s.hub.Publish(live.SessionsTopic(uid)) })
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.active = nil
	s.timer.Reset()
	if err = s.store.Delete(localstate.SessionStoreKey); err != nil {
		return nil, err
	}
	fields["session_id"] = sess.ID
	return sess, nil
}

// Reset discards the active session without recording it.
func (s *timerService) Reset(ctx context.Context) (err error) {
	defer observe(ctx, s.observer, "reset-timer", time.Now(), nil, &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err = s.load(); err != nil {
		return err
	}
	s.active = nil
	s.timer.Reset()
	return s.store.Delete(localstate.SessionStoreKey)
}

// load restores the persisted active session of the signed-in user. A
// snapshot left by another user is ignored.
func (s *timerService) load() (string, error) {
	uid, err := s.users.UserID()
	if err != nil {
		return "", err
	}
	var st localstate.ActiveSessionState
	found, err := s.store.Load(localstate.SessionStoreKey, &st)
	if err != nil {
		return "", err
	}
	if !found || st.UserID != uid || st.ProjectID == "" {
		s.active = nil
		s.timer.Reset()
		return uid, nil
	}
	s.active = &domain.ActiveSession{
		ProjectID: st.ProjectID,
		StartTime: st.StartTime,
		IsManual:  st.IsManual,
		IsBilled:  st.IsBilled,
	}
	s.timer.Restore(st.Timer)
	s.active.Duration = s.timer.Duration()
	return uid, nil
}

func (s *timerService) save(uid string) error {
	snap := s.timer.Snapshot()
	s.active.Duration = snap.Duration
	return s.store.Save(localstate.SessionStoreKey, localstate.ActiveSessionState{
		UserID:    uid,
		ProjectID: s.active.ProjectID,
		StartTime: s.active.StartTime,
		IsManual:  s.active.IsManual,
		IsBilled:  s.active.IsBilled,
		Timer:     snap,
	})
}

func (s *timerService) statusLocked(title string) *app.TimerStatus {
	active := *s.active
	active.Duration = s.timer.Duration()
	return &app.TimerStatus{
		Active:       &active,
		ProjectTitle: title,
		Running:      s.timer.Running(),
		Seconds:      active.Duration,
	}
}

// projectTitle is best effort; a deleted project shows an empty title.
func (s *timerService) projectTitle(ctx context.Context, uid string) string {
	p, err := s.projects.GetByID(ctx, uid, s.active.ProjectID)
	if err != nil {
		return ""
	}
	return p.Title
}
