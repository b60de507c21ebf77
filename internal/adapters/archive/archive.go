// Package archive adapts an immutable mail archive on disk to the
// virtual filesystem contract. It implements the full capability set;
// the mutating half answers ErrUnsupported so the surface stays uniform
// with writable backends.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bridgefs/bridgefs/internal/vfs"
	"github.com/bridgefs/bridgefs/internal/vfs/safepath"
)

// DefaultPattern matches the message files an archive holds.
const DefaultPattern = "*.eml"

// Adapter is a read-only vfs.Adapter over a directory of archived
// messages.
type Adapter struct {
	info vfs.Info
	root string
}

// New creates an archive adapter rooted at root.
func New(name, description, root string) *Adapter {
	return &Adapter{
		info: vfs.Info{Name: name, Description: description, ReadOnly: true},
		root: filepath.Clean(root),
	}
}

// Definition implements vfs.Adapter.
func (a *Adapter) Definition() vfs.Info { return a.info }

// Initialize verifies the archive exists; a read-only backend never
// creates its own root.
func (a *Adapter) Initialize(ctx context.Context) error {
	info, err := os.Stat(a.root)
	if err != nil {
		return fmt.Errorf("archive root %q: %w", a.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive root %q is not a directory", a.root)
	}
	return nil
}

// Dispose implements vfs.Adapter.
func (a *Adapter) Dispose() error { return nil }

// IsAuthorized always holds for a local archive.
func (a *Adapter) IsAuthorized() bool { return true }

// TestConnection reports whether the root is readable.
func (a *Adapter) TestConnection(ctx context.Context) (bool, string) {
	if _, err := os.Stat(a.root); err != nil {
		return false, err.Error()
	}
	return true, "archive accessible"
}

// Exists implements vfs.Adapter.
func (a *Adapter) Exists(path string) bool {
	resolved, err := safepath.Resolve(a.root, path, false)
	if err != nil {
		return false
	}
	_, err = os.Stat(resolved)
	return err == nil
}

// Read implements vfs.Adapter.
func (a *Adapter) Read(path string) ([]byte, error) {
	resolved, err := safepath.Resolve(a.root, path, false)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
	return data, err
}

// Write is unsupported on an archive.
func (a *Adapter) Write(path string, data []byte, overwrite bool) error {
	return fmt.Errorf("%s is read-only: %w", a.info.Name, vfs.ErrUnsupported)
}

// Append is unsupported on an archive.
func (a *Adapter) Append(path string, data []byte) error {
	return fmt.Errorf("%s is read-only: %w", a.info.Name, vfs.ErrUnsupported)
}

// Delete is unsupported on an archive.
func (a *Adapter) Delete(path string) error {
	return fmt.Errorf("%s is read-only: %w", a.info.Name, vfs.ErrUnsupported)
}

// ListFiles returns archived message names; an empty pattern defaults
// to the archive's message extension.
func (a *Adapter) ListFiles(path, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return a.list(path, pattern, false)
}

// ListDirectories returns mailbox subdirectories.
func (a *Adapter) ListDirectories(path, pattern string) ([]string, error) {
	return a.list(path, pattern, true)
}

// Size implements vfs.Adapter.
func (a *Adapter) Size(path string) (int64, error) {
	resolved, err := safepath.Resolve(a.root, path, false)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return 0, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (a *Adapter) list(path, pattern string, dirs bool) ([]string, error) {
	resolved, err := safepath.Resolve(a.root, path, false)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(resolved)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() != dirs {
			continue
		}
		if pattern != "" {
			if ok, matchErr := doublestar.Match(pattern, entry.Name()); matchErr != nil || !ok {
				continue
			}
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
