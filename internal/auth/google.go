package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
)

const (
	callbackPath = "/oauth2callback"
	// authTimeout bounds how long SignIn waits for the browser round trip.
	authTimeout = 5 * time.Minute
)

// LoadGoogleConfig reads a client secrets file downloaded from the Google
// Cloud console.
func LoadGoogleConfig(path string) (*oauth2.Config, error) {
	if path == "" {
		return nil, newError(CodeConfigurationNotFound, errors.New("no client credentials configured"))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(CodeConfigurationNotFound, fmt.Errorf("reading client secrets %s: %w", path, err))
	}
	cfg, err := google.ConfigFromJSON(b, "openid",
		googleoauth2.UserinfoEmailScope, googleoauth2.UserinfoProfileScope)
	if err != nil {
		return nil, newError(CodeConfigurationNotFound, fmt.Errorf("parsing client secrets: %w", err))
	}
	return cfg, nil
}

// GoogleProvider signs in through the OAuth2 authorization code flow. It
// listens on a loopback port for the redirect, then fetches the user's
// profile and mirrors it into the users table.
type GoogleProvider struct {
	config   *oauth2.Config
	users    repository.UserRepo
	port     int
	announce func(authURL string)
	endpoint string
	now      func() time.Time
}

type GoogleOption func(*GoogleProvider)

// WithAnnounce sets how the authorization URL is shown to the user.
func WithAnnounce(fn func(authURL string)) GoogleOption {
	return func(p *GoogleProvider) { p.announce = fn }
}

// WithUserinfoEndpoint points the userinfo client at another base URL.
func WithUserinfoEndpoint(url string) GoogleOption {
	return func(p *GoogleProvider) { p.endpoint = url }
}

// NewGoogleProvider creates a provider listening on port for the redirect.
// Port 0 picks a free port.
func NewGoogleProvider(cfg *oauth2.Config, users repository.UserRepo, port int, opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		config:   cfg,
		users:    users,
		port:     port,
		announce: func(string) {},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type callbackResult struct {
	code string
	err  error
}

// callbackRouter accepts exactly one redirect carrying the expected state.
func callbackRouter(state string, results chan<- callbackResult) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			res.err = newError(CodeInvalidCredential, errors.New("oauth state mismatch"))
		case q.Get("error") != "":
			http.Error(w, "sign-in cancelled", http.StatusForbidden)
			res.err = newError(CodePopupClosedByUser, errors.New(q.Get("error")))
		case q.Get("code") == "":
			http.Error(w, "authorization code missing", http.StatusBadRequest)
			res.err = newError(CodeInvalidCredential, errors.New("authorization code missing"))
		default:
			fmt.Fprintln(w, "Signed in. You can close this window.")
			res.code = q.Get("code")
		}
		select {
		case results <- res:
		default:
		}
	}).Methods(http.MethodGet)
	return r
}

// SignIn runs the browser flow. The credentials are ignored.
func (p *GoogleProvider) SignIn(ctx context.Context, _ Credentials) (*Principal, error) {
	if p.config == nil {
		return nil, newError(CodeConfigurationNotFound, nil)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p.port))
	if err != nil {
		return nil, newError(CodeInternalError, fmt.Errorf("listening for oauth redirect: %w", err))
	}
	cfg := *p.config
	cfg.RedirectURL = fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath)

	state, err := randomState()
	if err != nil {
		ln.Close()
		return nil, newError(CodeInternalError, err)
	}
	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:      callbackRouter(state, results),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go srv.Serve(ln)
	defer srv.Close()

	p.announce(cfg.AuthCodeURL(state))

	var code string
	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		code = res.code
	case <-time.After(authTimeout):
		return nil, newError(CodePopupClosedByUser, errors.New("timed out waiting for browser sign-in"))
	case <-ctx.Done():
		return nil, newError(CodePopupClosedByUser, ctx.Err())
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, newError(CodeNetworkRequestFailed, fmt.Errorf("exchanging authorization code: %w", err))
	}

	opts := []option.ClientOption{option.WithHTTPClient(cfg.Client(ctx, tok))}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}
	svc, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, newError(CodeInternalError, err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, newError(CodeNetworkRequestFailed, fmt.Errorf("fetching user info: %w", err))
	}
	return p.upsert(ctx, info)
}

// upsert mirrors the Google profile into users. An existing account with the
// same e-mail is reused, keeping its id. Only verified Google addresses are
// accepted, and an account locked by failed passwords stays locked.
func (p *GoogleProvider) upsert(ctx context.Context, info *googleoauth2.Userinfo) (*Principal, error) {
	if info.Email == "" {
		return nil, newError(CodeInvalidEmail, nil)
	}
	if info.VerifiedEmail == nil || !*info.VerifiedEmail {
		return nil, newError(CodeInvalidCredential, errors.New("google e-mail not verified"))
	}
	now := p.now().UTC()

	u, err := p.users.GetByEmail(ctx, info.Email)
	switch {
	case err == nil:
		if u.Disabled {
			return nil, newError(CodeUserDisabled, nil)
		}
		creds, err := p.users.GetCredentials(ctx, u.ID)
		if err != nil {
			return nil, newError(CodeInternalError, err)
		}
		if creds.FailedAttempts >= MaxFailedAttempts {
			return nil, newError(CodeTooManyRequests, nil)
		}
		if u.Image == "" && info.Picture != "" {
			u.Image = info.Picture
			u.UpdatedAt = now
			if err := p.users.Update(ctx, u); err != nil {
				return nil, newError(CodeInternalError, err)
			}
		}
		return PrincipalFromUser(u), nil
	case errors.Is(err, repository.ErrNotFound):
		u = &domain.User{
			ID:        uuid.New().String(),
			Name:      info.Name,
			Email:     info.Email,
			Image:     info.Picture,
			Provider:  domain.ProviderGoogle,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := p.users.Create(ctx, u, repository.Credentials{}); err != nil {
			return nil, newError(CodeInternalError, err)
		}
		return PrincipalFromUser(u), nil
	default:
		return nil, newError(CodeInternalError, err)
	}
}

func (p *GoogleProvider) SignOut(context.Context) error { return nil }

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
