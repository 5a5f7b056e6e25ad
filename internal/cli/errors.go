package cli

import (
	"errors"

	"github.com/alexanderramin/tempo/internal/auth"
)

// ErrorMessage renders err for the terminal. Auth failures use the localized
// message table; everything else prints as is.
func ErrorMessage(err error, locale string) string {
	if errors.Is(err, auth.ErrNotAuthenticated) || auth.CodeOf(err) != "" {
		return auth.Message(err, locale)
	}
	return err.Error()
}
