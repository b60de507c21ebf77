package safepath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgefs/bridgefs/internal/vfs"
)

func TestResolveContained(t *testing.T) {
	root := t.TempDir()

	cases := []struct {
		relative string
		want     string
	}{
		{"notes/a.md", filepath.Join(root, "notes", "a.md")},
		{"a/./b", filepath.Join(root, "a", "b")},
		{"a/b/../c", filepath.Join(root, "a", "c")},
		{"", root},            // root itself resolves
		{"/", root},           // virtual root alias
		{".", root},
		{"deep/../deep/x", filepath.Join(root, "deep", "x")},
	}

	for _, tc := range cases {
		got, err := Resolve(root, tc.relative, false)
		require.NoError(t, err, "relative %q", tc.relative)
		assert.Equal(t, tc.want, got, "relative %q", tc.relative)
	}
}

func TestResolveEscapes(t *testing.T) {
	root := t.TempDir()

	escapes := []string{
		"..",
		"../escape.md",
		"a/../../escape.md",
		"../../..",
		"a/b/../../../x",
		"..\\escape.md",
	}

	for _, rel := range escapes {
		_, err := Resolve(root, rel, false)
		assert.ErrorIs(t, err, vfs.ErrPathEscapesRoot, "relative %q", rel)
	}
}

func TestResolveRejectsAbsolute(t *testing.T) {
	root := t.TempDir()

	for _, rel := range []string{"/etc/passwd", "\\\\share\\x", "C:\\Windows", "c:/x", "C:"} {
		_, err := Resolve(root, rel, false)
		assert.ErrorIs(t, err, vfs.ErrPathEscapesRoot, "relative %q", rel)
	}
}

func TestResolveAllowsColonFilenames(t *testing.T) {
	root := t.TempDir()

	// A colon in an ordinary POSIX name is not a drive prefix.
	for _, rel := range []string{"a:b.txt", "notes/12:30.md", "9:fifteen"} {
		got, err := Resolve(root, rel, false)
		require.NoError(t, err, "relative %q", rel)
		assert.True(t, Contains(root, got), "relative %q resolved to %q", rel, got)
	}
}

func TestResolveNeverOutsideRoot(t *testing.T) {
	root := t.TempDir()

	// Any mix of .. segments either resolves under root or errors;
	// it never produces an outside location.
	inputs := []string{
		"a/../b/../c/../../d",
		"x/../..",
		"../a/b",
		"a/..",
		"a/b/c/../../../../", //nolint
	}
	for _, rel := range inputs {
		got, err := Resolve(root, rel, false)
		if err != nil {
			assert.ErrorIs(t, err, vfs.ErrPathEscapesRoot, "relative %q", rel)
			continue
		}
		assert.True(t, Contains(root, got), "relative %q resolved to %q", rel, got)
	}
}

func TestResolveCreateParents(t *testing.T) {
	root := t.TempDir()

	resolved, err := Resolve(root, "nested/dirs/file.txt", true)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Dir(resolved))
}

func TestContainsBoundary(t *testing.T) {
	assert.True(t, Contains("/vault", "/vault"))
	assert.True(t, Contains("/vault", "/vault/a"))
	// Sibling directory sharing the root's name prefix is not contained.
	assert.False(t, Contains("/vault", "/vault-other/a"))
	assert.False(t, Contains("/vault", "/va"))
}
