// Package local adapts a directory tree on disk to the virtual
// filesystem contract. Every operation resolves its path through the
// safepath containment check before touching the disk.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bridgefs/bridgefs/internal/vfs"
	"github.com/bridgefs/bridgefs/internal/vfs/safepath"
)

// Adapter exposes files under a fixed root. The root is established at
// construction and immutable afterwards.
type Adapter struct {
	info vfs.Info
	root string
}

// New creates a local adapter rooted at root.
func New(name, description, root string) *Adapter {
	return &Adapter{
		info: vfs.Info{Name: name, Description: description},
		root: filepath.Clean(root),
	}
}

// Definition implements vfs.Adapter.
func (a *Adapter) Definition() vfs.Info { return a.info }

// Root returns the configured root directory.
func (a *Adapter) Root() string { return a.root }

// Initialize materializes the root directory. Idempotent.
func (a *Adapter) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(a.root, 0o755); err != nil {
		return fmt.Errorf("create root %q: %w", a.root, err)
	}
	return nil
}

// Dispose implements vfs.Adapter.
func (a *Adapter) Dispose() error { return nil }

// IsAuthorized always holds for local storage.
func (a *Adapter) IsAuthorized() bool { return true }

// TestConnection verifies the root is reachable.
func (a *Adapter) TestConnection(ctx context.Context) (bool, string) {
	if info, err := os.Stat(a.root); err == nil && info.IsDir() {
		return true, "root accessible"
	}
	return false, fmt.Sprintf("root %q not accessible", a.root)
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

// Write stores data at path, materializing parent directories. An
// existing file without overwrite yields ErrAlreadyExists.
func (a *Adapter) Write(path string, data []byte, overwrite bool) error {
	resolved, err := safepath.Resolve(a.root, path, true)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, statErr := os.Stat(resolved); statErr == nil {
			return fmt.Errorf("%q: %w", path, vfs.ErrAlreadyExists)
		}
	}
	return os.WriteFile(resolved, data, 0o644)
}

// Append implements vfs.Adapter, creating the file when absent.
func (a *Adapter) Append(path string, data []byte) error {
	resolved, err := safepath.Resolve(a.root, path, true)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(resolved, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Delete removes a file or directory tree.
func (a *Adapter) Delete(path string) error {
	resolved, err := safepath.Resolve(a.root, path, false)
	if err != nil {
		return err
	}
	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		return fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
	return os.RemoveAll(resolved)
}

// ListFiles returns file names directly under path, pattern-filtered.
func (a *Adapter) ListFiles(path, pattern string) ([]string, error) {
	return a.list(path, pattern, false)
}

// ListDirectories returns directory names directly under path.
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
