package auth

import (
	"context"
	"net/mail"
	"strings"
)

// Credentials are what the user types to sign in. Providers that do not take
// a password ignore them.
type Credentials struct {
	Email    string
	Password string
}

// Provider is an identity provider.
type Provider interface {
	SignIn(ctx context.Context, creds Credentials) (*Principal, error)
	SignOut(ctx context.Context) error
}

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
)

// checkPasswordStrength rejects passwords bcrypt cannot hash or that are
// too short.
func checkPasswordStrength(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordBytes {
		return newError(CodeWeakPassword, nil)
	}
	return nil
}

// NormalizeEmail lower-cases and validates a bare address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", newError(CodeInvalidEmail, nil)
	}
	return email, nil
}
