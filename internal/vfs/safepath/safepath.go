// Package safepath resolves caller-supplied relative paths against a
// backend's configured root. It is the single choke point through which
// every local-style adapter addresses the disk, and the primary defense
// against directory traversal.
package safepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bridgefs/bridgefs/internal/vfs"
)

// Resolve canonicalizes relative against root and returns the absolute
// location, or vfs.ErrPathEscapesRoot if the result would land outside
// root. The root itself ("" or "/") is a valid resolution target.
//
// Absolute-looking inputs are rejected outright rather than re-rooted,
// so a caller can never smuggle a host path through the virtual layer.
// With createParents, intermediate directories up to the result's parent
// are materialized before returning.
func Resolve(root, relative string, createParents bool) (string, error) {
	if relative == "" || relative == "/" {
		relative = "."
	}
	if isAbsoluteLike(relative) {
		return "", fmt.Errorf("%q: %w", relative, vfs.ErrPathEscapesRoot)
	}

	cleanRoot := filepath.Clean(root)
	resolved := filepath.Clean(filepath.Join(cleanRoot, filepath.FromSlash(vfs.NormalizePath(relative))))

	if !Contains(cleanRoot, resolved) {
		return "", fmt.Errorf("%q: %w", relative, vfs.ErrPathEscapesRoot)
	}

	if createParents {
		if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
			return "", fmt.Errorf("create parents for %q: %w", relative, err)
		}
	}

	return resolved, nil
}

// Contains reports whether candidate lies at or under root. The comparison
// is on separator boundaries, so a sibling directory whose name merely
// starts with the root's name does not count as contained.
func Contains(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)
	if candidate == root {
		return true
	}
	return strings.HasPrefix(candidate, root+string(filepath.Separator))
}

// isAbsoluteLike catches both native absolute paths and Windows-style
// drive or UNC prefixes that filepath.IsAbs would miss off-platform.
func isAbsoluteLike(path string) bool {
	if filepath.IsAbs(path) {
		return true
	}
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return true
	}
	// Drive letter, e.g. "C:", "C:\" or "c:/". A colon after a
	// non-letter, or one followed by more name characters, is an
	// ordinary POSIX file name such as "a:b.txt".
	if len(path) >= 2 && path[1] == ':' && isASCIILetter(path[0]) {
		if len(path) == 2 || path[2] == '/' || path[2] == '\\' {
			return true
		}
	}
	return false
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
