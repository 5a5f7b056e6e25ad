package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// ErrNotFound is wrapped by point lookups, updates and deletes that match no
// record owned by the caller.
var ErrNotFound = errors.New("not found")

// SessionQuery selects a user's sessions. From and To are inclusive bounds on
// the session date; callers widen To to the end of its day.
type SessionQuery struct {
	UserID    string
	ProjectID string
	From      *time.Time
	To        *time.Time
	Billed    domain.BilledFilter
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, userID, id string) (*domain.Project, error)
	List(ctx context.Context, userID string, includeInactive bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, userID, id string) error
}

type SessionRepo interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, userID, id string) (*domain.Session, error)
	List(ctx context.Context, q SessionQuery) ([]*domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, userID, id string) error
	CountByProject(ctx context.Context, userID, projectID string) (int, error)
}

// Credentials are the password-provider secrets stored beside a user.
type Credentials struct {
	PasswordHash   string
	ResetTokenHash string
	ResetExpiresAt *time.Time
	FailedAttempts int
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User, creds Credentials) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	GetCredentials(ctx context.Context, id string) (*Credentials, error)
	UpdateCredentials(ctx context.Context, id string, creds Credentials) error
	Delete(ctx context.Context, id string) error
}
