package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_MapsCodes(t *testing.T) {
	err := fmt.Errorf("signing in: %w", newError(CodeWrongPassword, nil))
	assert.Equal(t, "Senha incorreta.", Message(err, "pt-BR"))
	assert.Equal(t, "Wrong password.", Message(err, "en"))
	assert.Equal(t, CodeWrongPassword, CodeOf(err))
}

func TestMessage_EveryCodeHasBothLocales(t *testing.T) {
	for code := range messages["pt-BR"] {
		_, ok := messages["en"][code]
		assert.True(t, ok, "missing en message for %s", code)
	}
	assert.Len(t, messages["en"], len(messages["pt-BR"]))
}

func TestMessage_Fallbacks(t *testing.T) {
	assert.Equal(t, "Ocorreu um erro inesperado. Tente novamente.", Message(errors.New("boom"), "pt-BR"))
	assert.Equal(t, "Ocorreu um erro inesperado. Tente novamente.", Message(&Error{Code: "quota-exceeded"}, "pt-BR"))
	assert.Equal(t, "Conta desativada.", Message(newError(CodeUserDisabled, nil), "fr"))
	assert.Equal(t, "You are not signed in.", Message(fmt.Errorf("x: %w", ErrNotAuthenticated), "en"))
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := newError(CodeNetworkRequestFailed, inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "auth/network-request-failed")
}
