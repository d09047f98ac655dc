package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("reports/a.csv", []byte("x,y\n"))
	require.NoError(t, err)
	require.Equal(t, "reports/a.csv", name)

	file, size, err := store.Open(name)
	require.NoError(t, err)
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	require.Equal(t, int64(4), size)
	require.Equal(t, "x,y\n", string(body))

	require.NoError(t, store.Delete(name))
	_, _, err = store.Open(name)
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", "/etc/passwd", "a/../../b"} {
		_, err := store.Save(name, []byte("x"))
		require.ErrorIs(t, err, ErrInvalidPath, name)
	}
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("old.csv", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("new.csv", []byte("new"))
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), now.Add(-2*time.Hour), now.Add(-2*time.Hour)))

	deleted, err := store.CleanupOlderThan(now, time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old.csv"}, deleted)

	file, _, err := store.Open("new.csv")
	require.NoError(t, err)
	require.NoError(t, file.Close())
}
