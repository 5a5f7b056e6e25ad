package localstate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadActiveSession(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)

	start := time.Date(2026, time.January, 2, 8, 0, 0, 0, time.UTC)
	in := ActiveSessionState{
		UserID:    "u1",
		ProjectID: "p1",
		StartTime: start,
		IsBilled:  true,
		Timer:     timer.State{Anchor: start, Duration: 90, Running: true},
	}
	require.NoError(t, store.Save(SessionStoreKey, in))

	var out ActiveSessionState
	found, err := store.Load(SessionStoreKey, &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in.ProjectID, out.ProjectID)
	assert.True(t, in.StartTime.Equal(out.StartTime))
	assert.True(t, in.Timer.Anchor.Equal(out.Timer.Anchor))
	assert.Equal(t, int64(90), out.Timer.Duration)
	assert.True(t, out.Timer.Running)
	assert.True(t, out.IsBilled)
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	var out AuthState
	found, err := store.Load(AuthKey, &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, AuthKey+".json"), []byte("{not json"), 0o600))

	var out AuthState
	_, err = store.Load(AuthKey, &out)
	assert.Error(t, err)
}

func TestStore_Delete(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(AuthKey, AuthState{UserID: "u"}))
	require.NoError(t, store.Delete(AuthKey))
	require.NoError(t, store.Delete(AuthKey))

	var out AuthState
	found, err := store.Load(AuthKey, &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(AuthKey, AuthState{UserID: "a"}))
	require.NoError(t, store.Save(AuthKey, AuthState{UserID: "b"}))

	var out AuthState
	_, err = store.Load(AuthKey, &out)
	require.NoError(t, err)
	assert.Equal(t, "b", out.UserID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
