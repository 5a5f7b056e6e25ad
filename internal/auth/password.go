package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
)

const (
	// MaxFailedAttempts locks an account until its password is reset.
	MaxFailedAttempts = 5
	// ResetTokenTTL is how long a password reset token stays valid.
	ResetTokenTTL = time.Hour
)

// PasswordProvider authenticates e-mail/password users stored in the users
// table. Passwords are kept as bcrypt hashes; reset tokens as SHA-256 hashes.
type PasswordProvider struct {
	users repository.UserRepo
	cost  int
	now   func() time.Time
}

type PasswordOption func(*PasswordProvider)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) PasswordOption {
	return func(p *PasswordProvider) { p.cost = cost }
}

func WithNow(now func() time.Time) PasswordOption {
	return func(p *PasswordProvider) { p.now = now }
}

func NewPasswordProvider(users repository.UserRepo, opts ...PasswordOption) *PasswordProvider {
	p := &PasswordProvider{users: users, cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PasswordProvider) SignUp(ctx context.Context, name, email, password string) (*Principal, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := checkPasswordStrength(password); err != nil {
		return nil, err
	}
	if _, err := p.users.GetByEmail(ctx, email); err == nil {
		return nil, newError(CodeEmailAlreadyInUse, nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodeInternalError, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, newError(CodeInternalError, err)
	}
	now := p.now().UTC()
	u := &domain.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Provider:  domain.ProviderPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.users.Create(ctx, u, repository.Credentials{PasswordHash: string(hash)}); err != nil {
		return nil, newError(CodeInternalError, err)
	}
	return PrincipalFromUser(u), nil
}

func (p *PasswordProvider) SignIn(ctx context.Context, creds Credentials) (*Principal, error) {
	email, err := NormalizeEmail(creds.Email)
	if err != nil {
		return nil, err
	}
	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeUserNotFound, nil)
		}
		return nil, newError(CodeInternalError, err)
	}
	if u.Disabled {
		return nil, newError(CodeUserDisabled, nil)
	}
	if err := p.checkPassword(ctx, u.ID, creds.Password); err != nil {
		return nil, err
	}
	return PrincipalFromUser(u), nil
}

// SignOut has no server-side state to clear.
func (p *PasswordProvider) SignOut(context.Context) error { return nil }

// Reauthenticate confirms the password of an already signed-in user before a
// sensitive change.
func (p *PasswordProvider) Reauthenticate(ctx context.Context, userID, password string) error {
	return p.checkPassword(ctx, userID, password)
}

// checkPassword counts failures and locks the account after
// MaxFailedAttempts. A success resets the counter.
func (p *PasswordProvider) checkPassword(ctx context.Context, userID, password string) error {
	creds, err := p.users.GetCredentials(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(CodeUserNotFound, nil)
		}
		return newError(CodeInternalError, err)
	}
	if creds.PasswordHash == "" {
		// Signed up through another provider.
		return newError(CodeInvalidCredential, nil)
	}
	if creds.FailedAttempts >= MaxFailedAttempts {
		return newError(CodeTooManyRequests, nil)
	}

	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)) != nil {
		creds.FailedAttempts++
		if err := p.users.UpdateCredentials(ctx, userID, *creds); err != nil {
			return newError(CodeInternalError, err)
		}
		if creds.FailedAttempts >= MaxFailedAttempts {
			return newError(CodeTooManyRequests, nil)
		}
		return newError(CodeWrongPassword, nil)
	}

	if creds.FailedAttempts != 0 {
		creds.FailedAttempts = 0
		if err := p.users.UpdateCredentials(ctx, userID, *creds); err != nil {
			return newError(CodeInternalError, err)
		}
	}
	return nil
}

// SendPasswordReset issues a reset token for email. There is no mail
// delivery, so the token is returned for the caller to show the user.
func (p *PasswordProvider) SendPasswordReset(ctx context.Context, email string) (string, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", newError(CodeUserNotFound, nil)
		}
		return "", newError(CodeInternalError, err)
	}
	creds, err := p.users.GetCredentials(ctx, u.ID)
	if err != nil {
		return "", newError(CodeInternalError, err)
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", newError(CodeInternalError, err)
	}
	token := hex.EncodeToString(raw)
	expires := p.now().UTC().Add(ResetTokenTTL)
	creds.ResetTokenHash = hashToken(token)
	creds.ResetExpiresAt = &expires
	if err := p.users.UpdateCredentials(ctx, u.ID, *creds); err != nil {
		return "", newError(CodeInternalError, err)
	}
	return token, nil
}

// ConfirmPasswordReset sets a new password using a token from
// SendPasswordReset. It also unlocks the account.
func (p *PasswordProvider) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if err := checkPasswordStrength(password); err != nil {
		return err
	}
	u, err := p.users.GetByResetToken(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(CodeInvalidCredential, nil)
		}
		return newError(CodeInternalError, err)
	}
	creds, err := p.users.GetCredentials(ctx, u.ID)
	if err != nil {
		return newError(CodeInternalError, err)
	}
	if creds.ResetExpiresAt == nil || p.now().After(*creds.ResetExpiresAt) {
		return newError(CodeInvalidCredential, fmt.Errorf("reset token expired"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return newError(CodeInternalError, err)
	}
	err = p.users.UpdateCredentials(ctx, u.ID, repository.Credentials{PasswordHash: string(hash)})
	if err != nil {
		return newError(CodeInternalError, err)
	}
	return nil
}

func hashToken(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
