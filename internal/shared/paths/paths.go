// Package paths provides standardized filesystem locations for consistent
// access across the hub: the storage vault, per-app sandboxes, and the
// platform cache directory used by the content cache.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment overrides.
const (
	// EnvStorageRoot overrides the default vault location.
	EnvStorageRoot = "BRIDGEFS_STORAGE_ROOT"

	// EnvCacheRoot overrides the platform cache location.
	EnvCacheRoot = "BRIDGEFS_CACHE_ROOT"
)

// Vault layout subdirectories, relative to the storage root.
const (
	Notes   = "notes"
	Sandbox = "sandbox"
	Archive = "archive"
)

// StorageRoot returns the vault location: the override variable if set,
// otherwise a "bridgefs" directory under the user's home.
func StorageRoot() string {
	if root := os.Getenv(EnvStorageRoot); root != "" {
		return filepath.Clean(root)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "bridgefs")
	}
	return filepath.Join(home, "bridgefs")
}

// SandboxRoot returns the app-scoped sandbox directory for one app id.
func SandboxRoot(appID string) (string, error) {
	if err := ValidateAppID(appID); err != nil {
		return "", err
	}
	return filepath.Join(StorageRoot(), Sandbox, appID), nil
}

// CacheDir returns the dedicated cache subdirectory under the platform
// cache location (os.UserCacheDir, overridable for tests and containers).
func CacheDir(name string) string {
	base := os.Getenv(EnvCacheRoot)
	if base == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			base = dir
		} else {
			base = os.TempDir()
		}
	}
	return filepath.Join(base, "bridgefs", name)
}

// ValidateAppID checks that an app id is safe for path construction.
// IDs are single path components: no separators, no traversal.
func ValidateAppID(appID string) error {
	if appID == "" {
		return fmt.Errorf("app ID cannot be empty")
	}
	if appID == "." || appID == ".." {
		return fmt.Errorf("app ID cannot be a traversal component")
	}
	if strings.ContainsAny(appID, `/\`) {
		return fmt.Errorf("app ID cannot contain path separators")
	}
	return nil
}
