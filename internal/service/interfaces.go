package service

import (
	"context"
	"errors"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/auth"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/live"
	"github.com/alexanderramin/tempo/internal/report"
)

var (
	ErrNoActiveSession    = errors.New("no active session")
	ErrTimerAlreadyActive = errors.New("a session is already being tracked")
	ErrProjectHasSessions = errors.New("project has recorded sessions")
	ErrProjectInactive    = errors.New("project is inactive")
	ErrProjectNotFound    = errors.New("project not found")
	ErrReauthRequired     = errors.New("current password required")
)

// UserResolver yields the signed-in user's id or auth.ErrNotAuthenticated.
type UserResolver interface {
	UserID() (string, error)
}

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	// GetByID returns nil, nil when the project does not exist.
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string, force bool) error
	// Listen replaces any previous listener with a live feed of the user's
	// projects.
	Listen(ctx context.Context, onUpdate func(live.Snapshot[*domain.Project])) error
	StopListening()
	Cached() []*domain.Project
}

type SessionService interface {
	Create(ctx context.Context, s *domain.Session) error
	// GetByID returns nil, nil when the session does not exist.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	List(ctx context.Context, projectID string, f report.Filter) ([]*domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error
	SetBilled(ctx context.Context, id string, billed bool) error
	Delete(ctx context.Context, id string) error
	// Listen replaces any previous listener with a live feed of the user's
	// sessions, restricted to projectID when it is not empty.
	Listen(ctx context.Context, projectID string, onUpdate func(live.Snapshot[*domain.Session])) error
	StopListening()
	Cached() []*domain.Session
}

// TimerService tracks the active session. Close stops its refresh goroutine.
type TimerService interface {
	app.TrackTimeUseCase
	Close()
}

type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*auth.Principal, error)
	SignIn(ctx context.Context, email, password string) (*auth.Principal, error)
	SignInWithGoogle(ctx context.Context) (*auth.Principal, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	SendPasswordReset(ctx context.Context, email string) (string, error)
	ConfirmPasswordReset(ctx context.Context, token, password string) error
	UpdateProfile(ctx context.Context, req ProfileUpdate) (*domain.User, error)
}

// ProfileUpdate changes the signed-in user's profile. Empty fields are left
// unchanged. Changing the e-mail of a password account requires
// CurrentPassword.
type ProfileUpdate struct {
	Name            string
	Email           string
	Image           string
	CurrentPassword string
}
