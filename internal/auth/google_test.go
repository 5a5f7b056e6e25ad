package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	googleoauth2 "google.golang.org/api/oauth2/v2"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackRouter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  Code
		status   int
	}{
		{"ok", "state=s1&code=abc", "abc", "", http.StatusOK},
		{"state mismatch", "state=other&code=abc", "", CodeInvalidCredential, http.StatusBadRequest},
		{"denied", "state=s1&error=access_denied", "", CodePopupClosedByUser, http.StatusForbidden},
		{"missing code", "state=s1", "", CodeInvalidCredential, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callbackResult, 1)
			router := callbackRouter("s1", results)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, callbackPath+"?"+tt.query, nil))
			assert.Equal(t, tt.status, rec.Code)

			res := <-results
			assert.Equal(t, tt.wantCode, res.code)
			assert.Equal(t, tt.wantErr, CodeOf(res.err))
		})
	}
}

func TestCallbackRouter_RejectsPost(t *testing.T) {
	router := callbackRouter("s1", make(chan callbackResult, 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, callbackPath+"?state=s1&code=x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// fakeGoogle serves the token and userinfo endpoints.
func fakeGoogle(t *testing.T, email string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/token":
			fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
		case strings.HasSuffix(r.URL.Path, "/userinfo"):
			if r.Header.Get("Authorization") != "Bearer tok" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			fmt.Fprintf(w, `{"id":"g-1","email":%q,"verified_email":true,"name":"Gabi","picture":"https://img/g.png"}`, email)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// followRedirect plays the browser: it sends the consent redirect back to
// the loopback listener named in authURL.
func followRedirect(t *testing.T, authURL string) {
	u, err := url.Parse(authURL)
	if err != nil {
		t.Error(err)
		return
	}
	q := u.Query()
	resp, err := http.Get(q.Get("redirect_uri") + "?code=the-code&state=" + url.QueryEscape(q.Get("state")))
	if err != nil {
		t.Error(err)
		return
	}
	resp.Body.Close()
}

func TestGoogleProvider_SignInCreatesUser(t *testing.T) {
	ts := fakeGoogle(t, "gabi@example.com")
	users := repository.NewSQLiteUserRepo(testutil.NewTestDB(t))
	cfg := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{AuthURL: ts.URL + "/auth", TokenURL: ts.URL + "/token"},
	}
	p := NewGoogleProvider(cfg, users, 0,
		WithAnnounce(func(authURL string) { go followRedirect(t, authURL) }),
		WithUserinfoEndpoint(ts.URL+"/"))

	principal, err := p.SignIn(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "gabi@example.com", principal.Email)
	assert.Equal(t, domain.ProviderGoogle, principal.Provider)

	stored, err := users.GetByEmail(context.Background(), "gabi@example.com")
	require.NoError(t, err)
	assert.Equal(t, principal.UserID, stored.ID)
	assert.Equal(t, "https://img/g.png", stored.Image)

	// A second sign-in reuses the account.
	again, err := p.SignIn(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, principal.UserID, again.UserID)
}

func TestGoogleProvider_UpsertLinksOnlyVerifiedUnlockedAccounts(t *testing.T) {
	verified, unverified := true, false
	tests := []struct {
		name     string
		verified *bool
		locked   bool
		wantErr  Code
	}{
		{"verified links existing account", &verified, false, ""},
		{"unverified e-mail", &unverified, false, CodeInvalidCredential},
		{"verification unknown", nil, false, CodeInvalidCredential},
		{"locked password account", &verified, true, CodeTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			users := repository.NewSQLiteUserRepo(testutil.NewTestDB(t))
			passwords := NewPasswordProvider(users, WithBcryptCost(bcrypt.MinCost))
			owner, err := passwords.SignUp(ctx, "Ana", "ana@example.com", "secret1")
			require.NoError(t, err)
			if tt.locked {
				for i := 0; i < MaxFailedAttempts; i++ {
					_, _ = passwords.SignIn(ctx, Credentials{Email: "ana@example.com", Password: "nope"})
				}
			}

			p := NewGoogleProvider(&oauth2.Config{}, users, 0)
			got, err := p.upsert(ctx, &googleoauth2.Userinfo{Email: "ana@example.com", VerifiedEmail: tt.verified})
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, CodeOf(err))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, owner.UserID, got.UserID)
		})
	}
}

func TestGoogleProvider_UnverifiedNewUserIsNotCreated(t *testing.T) {
	ctx := context.Background()
	users := repository.NewSQLiteUserRepo(testutil.NewTestDB(t))
	p := NewGoogleProvider(&oauth2.Config{}, users, 0)

	_, err := p.upsert(ctx, &googleoauth2.Userinfo{Email: "new@example.com"})
	assert.Equal(t, CodeInvalidCredential, CodeOf(err))

	_, err = users.GetByEmail(ctx, "new@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGoogleProvider_ContextCancelled(t *testing.T) {
	users := repository.NewSQLiteUserRepo(testutil.NewTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	p := NewGoogleProvider(&oauth2.Config{}, users, 0, WithAnnounce(func(string) { cancel() }))

	_, err := p.SignIn(ctx, Credentials{})
	assert.Equal(t, CodePopupClosedByUser, CodeOf(err))
}

func TestGoogleProvider_NotConfigured(t *testing.T) {
	p := NewGoogleProvider(nil, nil, 0)
	_, err := p.SignIn(context.Background(), Credentials{})
	assert.Equal(t, CodeConfigurationNotFound, CodeOf(err))

	_, err = LoadGoogleConfig("")
	assert.Equal(t, CodeConfigurationNotFound, CodeOf(err))
}

func TestLoadGoogleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	secrets := `{"installed":{"client_id":"cid","client_secret":"cs",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":"https://oauth2.googleapis.com/token",
		"redirect_uris":["http://localhost"]}}`
	require.NoError(t, os.WriteFile(path, []byte(secrets), 0o600))

	cfg, err := LoadGoogleConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "cid", cfg.ClientID)
	assert.Contains(t, cfg.Scopes, "openid")
}
