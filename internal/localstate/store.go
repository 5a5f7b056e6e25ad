// Package localstate persists small snapshots between CLI invocations. Each
// key is one JSON file in the state directory.
package localstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/alexanderramin/tempo/internal/timer"
)

// Fixed storage keys.
const (
	SessionStoreKey = "sessionStore"
	AuthKey         = "auth"
)

// ActiveSessionState is the persisted in-progress session: what is needed
// to rebuild the active session and its timer, nothing more.
type ActiveSessionState struct {
	UserID    string      `json:"userId"`
	ProjectID string      `json:"projectId"`
	StartTime time.Time   `json:"startTime"`
	IsManual  bool        `json:"isManual"`
	IsBilled  bool        `json:"isBilled"`
	Timer     timer.State `json:"timer"`
}

// AuthState is the signed-in principal.
type AuthState struct {
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Image      string    `json:"image,omitempty"`
	Provider   string    `json:"provider"`
	SignedInAt time.Time `json:"signedInAt"`
}

type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Save writes v under key atomically.
func (s *Store) Save(key string, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", key, err)
	}
	return nil
}

// Load decodes key into v. It reports false, with no error, when nothing is
// stored. A corrupt file is an error.
func (s *Store) Load(key string, v any) (bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}
