package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/tempo/internal/auth"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/live"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/require"
)

// signedIn resolves a fixed user; an empty id behaves as signed out.
type signedIn struct {
	mu sync.Mutex
	id string
}

func (u *signedIn) UserID() (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.id == "" {
		return "", auth.ErrNotAuthenticated
	}
	return u.id, nil
}

func (u *signedIn) set(id string) {
	u.mu.Lock()
	u.id = id
	u.mu.Unlock()
}

type harness struct {
	db       *sql.DB
	projects repository.ProjectRepo
	sessions repository.SessionRepo
	users    repository.UserRepo
	uow      db.UnitOfWork
	hub      *live.Hub
	user     *domain.User
	resolver *signedIn
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	h := &harness{
		db:       database,
		projects: repository.NewSQLiteProjectRepo(database),
		sessions: repository.NewSQLiteSessionRepo(database),
		users:    repository.NewSQLiteUserRepo(database),
		uow:      testutil.NewTestUoW(database),
		hub:      live.NewHub(nil),
	}
	h.user = h.addUser(t)
	h.resolver = &signedIn{id: h.user.ID}
	return h
}

func (h *harness) addUser(t *testing.T, opts ...testutil.UserOption) *domain.User {
	t.Helper()
	u := testutil.NewTestUser(opts...)
	require.NoError(t, h.users.Create(context.Background(), u, repository.Credentials{}))
	return u
}

func (h *harness) addProject(t *testing.T, title string, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(h.user.ID, title, opts...)
	require.NoError(t, h.projects.Create(context.Background(), p))
	return p
}

func (h *harness) addSession(t *testing.T, projectID string, seconds int64, opts ...testutil.SessionOption) *domain.Session {
	t.Helper()
	s := testutil.NewTestSession(h.user.ID, projectID, seconds, opts...)
	require.NoError(t, h.sessions.Create(context.Background(), s))
	return s
}

// recordingObserver keeps every use-case event it sees.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	o.events = append(o.events, e)
	o.mu.Unlock()
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}
