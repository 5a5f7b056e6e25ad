package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/tempo/internal/auth"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/localstate"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stubGoogle signs in a fixed principal without a browser.
type stubGoogle struct {
	principal *auth.Principal
	err       error
	signedOut bool
}

func (g *stubGoogle) SignIn(context.Context, auth.Credentials) (*auth.Principal, error) {
	return g.principal, g.err
}

func (g *stubGoogle) SignOut(context.Context) error {
	g.signedOut = true
	return nil
}

type authEnv struct {
	*harness
	session *auth.Session
	store   *localstate.Store
	svc     AuthService
}

func newAuthEnv(t *testing.T, google auth.Provider) *authEnv {
	t.Helper()
	h := newHarness(t)
	store, err := localstate.New(t.TempDir())
	require.NoError(t, err)
	session := auth.NewSession(store)
	password := auth.NewPasswordProvider(h.users, auth.WithBcryptCost(bcrypt.MinCost))
	return &authEnv{
		harness: h,
		session: session,
		store:   store,
		svc:     NewAuthService(password, google, session, h.users),
	}
}

func TestAuthService_SignUpSignsIn(t *testing.T) {
	e := newAuthEnv(t, nil)
	ctx := context.Background()

	p, err := e.svc.SignUp(ctx, "Ana", "Ana@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.True(t, e.session.IsAuthenticated())

	u, err := e.svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, domain.ProviderPassword, u.Provider)

	// A later invocation restores the persisted principal.
	restored := auth.NewSession(e.store)
	require.NoError(t, restored.Restore())
	uid, err := restored.UserID()
	require.NoError(t, err)
	assert.Equal(t, p.UserID, uid)
}

func TestAuthService_SignInAndOut(t *testing.T) {
	e := newAuthEnv(t, nil)
	ctx := context.Background()
	_, err := e.svc.SignUp(ctx, "Bia", "bia@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, e.svc.SignOut(ctx))
	assert.False(t, e.session.IsAuthenticated())

	_, err = e.svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)

	_, err = e.svc.SignIn(ctx, "bia@example.com", "wrong-pw")
	assert.Equal(t, auth.CodeWrongPassword, auth.CodeOf(err))
	assert.False(t, e.session.IsAuthenticated())

	p, err := e.svc.SignIn(ctx, "BIA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Bia", p.Name)
	assert.True(t, e.session.IsAuthenticated())
}

func TestAuthService_GoogleSignIn(t *testing.T) {
	google := &stubGoogle{}
	e := newAuthEnv(t, google)
	ctx := context.Background()
	u := e.addUser(t, testutil.WithEmail("gabi@example.com"))
	u.Provider = domain.ProviderGoogle
	google.principal = auth.PrincipalFromUser(u)

	p, err := e.svc.SignInWithGoogle(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)

	require.NoError(t, e.svc.SignOut(ctx))
	assert.True(t, google.signedOut)
	assert.False(t, e.session.IsAuthenticated())
}

func TestAuthService_GoogleNotConfigured(t *testing.T) {
	e := newAuthEnv(t, nil)
	_, err := e.svc.SignInWithGoogle(context.Background())
	assert.Equal(t, auth.CodeConfigurationNotFound, auth.CodeOf(err))
}

func TestAuthService_CurrentUser_SignsOutDisabled(t *testing.T) {
	e := newAuthEnv(t, nil)
	ctx := context.Background()
	_, err := e.svc.SignUp(ctx, "Caio", "caio@example.com", "secret1")
	require.NoError(t, err)

	u, err := e.svc.CurrentUser(ctx)
	require.NoError(t, err)
	u.Disabled = true
	require.NoError(t, e.users.Update(ctx, u))

	_, err = e.svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	assert.False(t, e.session.IsAuthenticated())
}

func TestAuthService_PasswordReset(t *testing.T) {
	e := newAuthEnv(t, nil)
	ctx := context.Background()
	_, err := e.svc.SignUp(ctx, "Duda", "duda@example.com", "secret1")
	require.NoError(t, err)

	token, err := e.svc.SendPasswordReset(ctx, "duda@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, e.svc.ConfirmPasswordReset(ctx, token, "brand-new"))

	_, err = e.svc.SignIn(ctx, "duda@example.com", "secret1")
	assert.Equal(t, auth.CodeWrongPassword, auth.CodeOf(err))
	_, err = e.svc.SignIn(ctx, "duda@example.com", "brand-new")
	require.NoError(t, err)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	e := newAuthEnv(t, nil)
	ctx := context.Background()
	_, err := e.svc.SignUp(ctx, "Edu", "edu@example.com", "secret1")
	require.NoError(t, err)
	e.addUser(t, testutil.WithEmail("taken@example.com"))

	u, err := e.svc.UpdateProfile(ctx, ProfileUpdate{Name: "Eduardo", Image: "https://example.com/e.png"})
	require.NoError(t, err)
	assert.Equal(t, "Eduardo", u.Name)
	assert.Equal(t, "Eduardo", e.session.Principal().Name)

	t.Run("email change needs password", func(t *testing.T) {
		_, err := e.svc.UpdateProfile(ctx, ProfileUpdate{Email: "new@example.com"})
		assert.ErrorIs(t, err, ErrReauthRequired)
	})
	t.Run("wrong password", func(t *testing.T) {
		_, err := e.svc.UpdateProfile(ctx, ProfileUpdate{Email: "new@example.com", CurrentPassword: "nope"})
		assert.Equal(t, auth.CodeWrongPassword, auth.CodeOf(err))
	})
	t.Run("invalid email", func(t *testing.T) {
		_, err := e.svc.UpdateProfile(ctx, ProfileUpdate{Email: "not-an-email", CurrentPassword: "secret1"})
		assert.Equal(t, auth.CodeInvalidEmail, auth.CodeOf(err))
	})
	t.Run("email in use", func(t *testing.T) {
		_, err := e.svc.UpdateProfile(ctx, ProfileUpdate{Email: "taken@example.com", CurrentPassword: "secret1"})
		assert.Equal(t, auth.CodeEmailAlreadyInUse, auth.CodeOf(err))
	})
	t.Run("changed", func(t *testing.T) {
		u, err := e.svc.UpdateProfile(ctx, ProfileUpdate{Email: "New@Example.com", CurrentPassword: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", u.Email)
		assert.Equal(t, "new@example.com", e.session.Principal().Email)
	})
}
