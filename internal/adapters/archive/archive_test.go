package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgefs/bridgefs/internal/vfs"
)

func newTestArchive(t *testing.T) *Adapter {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "inbox"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "inbox", "001.eml"), []byte("From: a@example.com\n\nhi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "inbox", "002.eml"), []byte("From: b@example.com\n\nyo"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "inbox", "notes.txt"), []byte("not mail"), 0o644))

	a := New("Mail Archive", "archived mail under test", root)
	require.NoError(t, a.Initialize(context.Background()))
	return a
}

func TestReadAndList(t *testing.T) {
	a := newTestArchive(t)

	data, err := a.Read("inbox/001.eml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "a@example.com")

	// Empty pattern defaults to message files only.
	files, err := a.ListFiles("inbox", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"001.eml", "002.eml"}, files)

	all, err := a.ListFiles("inbox", "*")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	dirs, err := a.ListDirectories("", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox"}, dirs)
}

func TestMutatorsUnsupported(t *testing.T) {
	a := newTestArchive(t)

	assert.ErrorIs(t, a.Write("inbox/003.eml", []byte("x"), true), vfs.ErrUnsupported)
	assert.ErrorIs(t, a.Append("inbox/001.eml", []byte("x")), vfs.ErrUnsupported)
	assert.ErrorIs(t, a.Delete("inbox/001.eml"), vfs.ErrUnsupported)

	// The archive is untouched.
	assert.True(t, a.Exists("inbox/001.eml"))
}

func TestContainment(t *testing.T) {
	a := newTestArchive(t)

	_, err := a.Read("../outside.eml")
	assert.ErrorIs(t, err, vfs.ErrPathEscapesRoot)
}

func TestInitializeMissingRoot(t *testing.T) {
	a := New("Mail Archive", "", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, a.Initialize(context.Background()))
}

func TestSize(t *testing.T) {
	a := newTestArchive(t)

	size, err := a.Size("inbox/001.eml")
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))

	_, err = a.Size("inbox/404.eml")
	assert.ErrorIs(t, err, vfs.ErrNotFound)
}
