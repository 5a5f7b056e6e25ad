package auth

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned by per-user operations when nobody is
// signed in.
var ErrNotAuthenticated = errors.New("not authenticated")

// Code identifies an identity provider failure.
type Code string

const (
	CodeUserDisabled          Code = "user-disabled"
	CodeUserNotFound          Code = "user-not-found"
	CodeInvalidCredential     Code = "invalid-credential"
	CodeInvalidEmail          Code = "invalid-email"
	CodeEmailAlreadyInUse     Code = "email-already-in-use"
	CodeWrongPassword         Code = "wrong-password"
	CodeWeakPassword          Code = "weak-password"
	CodeTooManyRequests       Code = "too-many-requests"
	CodePopupClosedByUser     Code = "popup-closed-by-user"
	CodeNetworkRequestFailed  Code = "network-request-failed"
	CodeInternalError         Code = "internal-error"
	CodeConfigurationNotFound Code = "configuration-not-found"
)

// Error is a provider failure carrying a stable code.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth/%s: %v", e.Code, e.Err)
	}
	return "auth/" + string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

var messages = map[string]map[Code]string{
	"pt-BR": {
		CodeUserDisabled:          "Conta desativada.",
		CodeUserNotFound:          "Conta não encontrada.",
		CodeInvalidCredential:     "Credenciais inválidas.",
		CodeInvalidEmail:          "E-mail inválido.",
		CodeEmailAlreadyInUse:     "E-mail já em uso por outro usuário.",
		CodeWrongPassword:         "Senha incorreta.",
		CodeWeakPassword:          "Sua senha deve possuir entre 6 e 72 caracteres.",
		CodeTooManyRequests:       "Conta bloqueada por excesso de tentativas.",
		CodePopupClosedByUser:     "Pop-up fechado antes do login.",
		CodeNetworkRequestFailed:  "Falha na conexão. Verifique sua internet.",
		CodeInternalError:         "Erro interno. Contate o suporte.",
		CodeConfigurationNotFound: "Erro na configuração da autenticação.",
	},
	"en": {
		CodeUserDisabled:          "Account disabled.",
		CodeUserNotFound:          "Account not found.",
		CodeInvalidCredential:     "Invalid credentials.",
		CodeInvalidEmail:          "Invalid e-mail.",
		CodeEmailAlreadyInUse:     "E-mail already in use by another user.",
		CodeWrongPassword:         "Wrong password.",
		CodeWeakPassword:          "Your password must have between 6 and 72 characters.",
		CodeTooManyRequests:       "Account locked after too many attempts.",
		CodePopupClosedByUser:     "Sign-in window closed before completing.",
		CodeNetworkRequestFailed:  "Connection failed. Check your internet.",
		CodeInternalError:         "Internal error. Contact support.",
		CodeConfigurationNotFound: "Authentication is not configured.",
	},
}

var notAuthenticated = map[string]string{
	"pt-BR": "Usuário não autenticado.",
	"en":    "You are not signed in.",
}

var fallback = map[string]string{
	"pt-BR": "Ocorreu um erro inesperado. Tente novamente.",
	"en":    "An unexpected error occurred. Please try again.",
}

// Message maps err to a short user-facing message in locale. Unknown
// locales use pt-BR; unmapped codes get a generic fallback.
func Message(err error, locale string) string {
	if _, ok := messages[locale]; !ok {
		locale = "pt-BR"
	}
	if errors.Is(err, ErrNotAuthenticated) {
		return notAuthenticated[locale]
	}
	if msg, ok := messages[locale][CodeOf(err)]; ok {
		return msg
	}
	return fallback[locale]
}
