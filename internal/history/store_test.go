package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)

	run := &Run{
		Playlist:   "/tmp/list.m3u8",
		MediaRoot:  "/media",
		OutputDir:  "/out",
		Targets:    10,
		Matched:    8,
		Copied:     7,
		Skipped:    1,
		Errors:     0,
		Bytes:      123456,
		DurationMS: 250,
	}
	require.NoError(t, store.Record(run))
	assert.NotZero(t, run.ID)
	assert.False(t, run.StartedAt.IsZero())

	runs, err := store.List(Filter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "/tmp/list.m3u8", got.Playlist)
	assert.Equal(t, 7, got.Copied)
	assert.Equal(t, int64(123456), got.Bytes)
}

func TestListMostRecentFirst(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(&Run{
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Playlist:  "/p.m3u8",
			MediaRoot: "/m",
			OutputDir: "/o",
		}))
	}

	runs, err := store.List(Filter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
	assert.True(t, runs[1].StartedAt.After(runs[2].StartedAt))
}

func TestListLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(&Run{Playlist: "/p.m3u8", MediaRoot: "/m", OutputDir: "/o"}))
	}

	runs, err := store.List(Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Record(&Run{Playlist: "/p", MediaRoot: "/m", OutputDir: "/o"}))
}
