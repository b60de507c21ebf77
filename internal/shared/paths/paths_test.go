package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageRootHonorsOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvStorageRoot, dir)

	assert.Equal(t, filepath.Clean(dir), StorageRoot())
}

func TestSandboxRootScopesByAppID(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvStorageRoot, dir)

	root, err := SandboxRoot("calculator")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, Sandbox, "calculator"), root)
}

func TestSandboxRootRejectsUnsafeIDs(t *testing.T) {
	for _, appID := range []string{"", "..", "../other", "a/../../b", "/etc", `..\win`} {
		_, err := SandboxRoot(appID)
		assert.Error(t, err, "app ID %q", appID)
	}
}

func TestCacheDirHonorsOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvCacheRoot, dir)

	assert.Equal(t, filepath.Join(dir, "bridgefs", "docs"), CacheDir("docs"))
}
