package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/auth"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
)

type authService struct {
	password *auth.PasswordProvider
	google   auth.Provider
	session  *auth.Session
	users    repository.UserRepo
	observer UseCaseObserver
}

// NewAuthService wires the providers to the persisted session. google may be
// nil when no OAuth client is configured.
func NewAuthService(
	password *auth.PasswordProvider,
	google auth.Provider,
	session *auth.Session,
	users repository.UserRepo,
	observers ...UseCaseObserver,
) AuthService {
	return &authService{
		password: password,
		google:   google,
		session:  session,
		users:    users,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *authService) SignUp(ctx context.Context, name, email, password string) (p *auth.Principal, err error) {
	defer observe(ctx, s.observer, "sign-up", time.Now(), nil, &err)

	p, err = s.password.SignUp(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	if err = s.session.SignIn(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (p *auth.Principal, err error) {
	defer observe(ctx, s.observer, "sign-in", time.Now(), map[string]any{"provider": "password"}, &err)
	return s.signIn(ctx, s.password, auth.Credentials{Email: email, Password: password})
}

func (s *authService) SignInWithGoogle(ctx context.Context) (p *auth.Principal, err error) {
	defer observe(ctx, s.observer, "sign-in", time.Now(), map[string]any{"provider": "google"}, &err)
	if s.google == nil {
		return nil, &auth.Error{Code: auth.CodeConfigurationNotFound}
	}
	return s.signIn(ctx, s.google, auth.Credentials{})
}

func (s *authService) signIn(ctx context.Context, provider auth.Provider, creds auth.Credentials) (*auth.Principal, error) {
	p, err := provider.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := s.session.SignIn(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *authService) SignOut(ctx context.Context) (err error) {
	defer observe(ctx, s.observer, "sign-out", time.Now(), nil, &err)

	if p := s.session.Principal(); p != nil && p.Provider == domain.ProviderGoogle && s.google != nil {
		if err = s.google.SignOut(ctx); err != nil {
			return err
		}
	} else if err = s.password.SignOut(ctx); err != nil {
		return err
	}
	return s.session.SignOut()
}

// CurrentUser returns the signed-in user's record. A session whose user no
// longer exists, or was disabled, is signed out.
func (s *authService) CurrentUser(ctx context.Context) (*domain.User, error) {
	uid, err := s.session.UserID()
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && u.Disabled) {
		if serr := s.session.SignOut(); serr != nil {
			return nil, serr
		}
		return nil, auth.ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *authService) SendPasswordReset(ctx context.Context, email string) (token string, err error) {
	defer observe(ctx, s.observer, "send-password-reset", time.Now(), nil, &err)
	return s.password.SendPasswordReset(ctx, email)
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, password string) (err error) {
	defer observe(ctx, s.observer, "confirm-password-reset", time.Now(), nil, &err)
	return s.password.ConfirmPasswordReset(ctx, token, password)
}

func (s *authService) UpdateProfile(ctx context.Context, req ProfileUpdate) (u *domain.User, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "update-profile", time.Now(), fields, &err)

	u, err = s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		u.Name = name
		fields["name"] = true
	}
	if img := strings.TrimSpace(req.Image); img != "" {
		u.Image = img
		fields["image"] = true
	}
	if strings.TrimSpace(req.Email) != "" {
		email, nerr := auth.NormalizeEmail(req.Email)
		if nerr != nil {
			return nil, nerr
		}
		if err = s.changeEmail(ctx, u, email, req.CurrentPassword); err != nil {
			return nil, err
		}
		fields["email"] = true
	}

	u.UpdatedAt = nowUTC()
	if err = s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	if err = s.session.SignIn(auth.PrincipalFromUser(u)); err != nil {
		return nil, err
	}
	return u, nil
}

// changeEmail requires the current password on password accounts.
func (s *authService) changeEmail(ctx context.Context, u *domain.User, email, currentPassword string) error {
	if email == u.Email {
		return nil
	}
	if u.Provider == domain.ProviderPassword {
		if currentPassword == "" {
			return ErrReauthRequired
		}
		if err := s.password.Reauthenticate(ctx, u.ID, currentPassword); err != nil {
			return err
		}
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil && existing.ID != u.ID {
		return &auth.Error{Code: auth.CodeEmailAlreadyInUse}
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	u.Email = email
	return nil
}
