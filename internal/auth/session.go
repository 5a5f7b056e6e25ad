// Package auth signs users in with a password or Google and keeps the
// current principal across CLI invocations.
package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/localstate"
)

// Principal is the authenticated identity.
type Principal struct {
	UserID   string
	Name     string
	Email    string
	Image    string
	Provider domain.AuthProvider
}

// PrincipalFromUser builds a principal from a stored user.
func PrincipalFromUser(u *domain.User) *Principal {
	return &Principal{UserID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image, Provider: u.Provider}
}

// Session tracks who is signed in. The principal is persisted under the
// auth key so later invocations stay signed in.
type Session struct {
	store *localstate.Store
	now   func() time.Time

	mu        sync.Mutex
	principal *Principal
	listeners map[int]func(bool)
	next      int
}

func NewSession(store *localstate.Store) *Session {
	return &Session{store: store, now: time.Now, listeners: make(map[int]func(bool))}
}

// Restore loads the persisted principal, if any.
func (s *Session) Restore() error {
	var st localstate.AuthState
	found, err := s.store.Load(localstate.AuthKey, &st)
	if err != nil {
		return fmt.Errorf("restoring auth session: %w", err)
	}
	if !found || st.UserID == "" {
		return nil
	}
	s.set(&Principal{
		UserID:   st.UserID,
		Name:     st.Name,
		Email:    st.Email,
		Image:    st.Image,
		Provider: domain.AuthProvider(st.Provider),
	})
	return nil
}

// SignIn makes p the current principal and persists it.
func (s *Session) SignIn(p *Principal) error {
	st := localstate.AuthState{
		UserID:     p.UserID,
		Name:       p.Name,
		Email:      p.Email,
		Image:      p.Image,
		Provider:   string(p.Provider),
		SignedInAt: s.now().UTC(),
	}
	if err := s.store.Save(localstate.AuthKey, st); err != nil {
		return fmt.Errorf("saving auth session: %w", err)
	}
	cp := *p
	s.set(&cp)
	return nil
}

// SignOut forgets the principal.
func (s *Session) SignOut() error {
	if err := s.store.Delete(localstate.AuthKey); err != nil {
		return fmt.Errorf("clearing auth session: %w", err)
	}
	s.set(nil)
	return nil
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal != nil
}

// UserID returns the signed-in user's id or ErrNotAuthenticated.
func (s *Session) UserID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return "", ErrNotAuthenticated
	}
	return s.principal.UserID, nil
}

// Principal returns a copy of the current principal, or nil.
func (s *Session) Principal() *Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return nil
	}
	cp := *s.principal
	return &cp
}

// Subscribe calls fn with the authenticated flag whenever it changes.
func (s *Session) Subscribe(fn func(authenticated bool)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) set(p *Principal) {
	s.mu.Lock()
	was := s.principal != nil
	s.principal = p
	is := p != nil
	var fns []func(bool)
	if was != is {
		for _, fn := range s.listeners {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(is)
	}
}
