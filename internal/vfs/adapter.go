package vfs

import "context"

// Info describes an adapter to the registry and to administrative tooling.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ReadOnly    bool   `json:"read_only"`
}

// Adapter is the uniform capability set every backend implements.
//
// Paths are virtual: forward-slash delimited, relative to the adapter's
// root. "" and "/" address the root itself. Read-only backends implement
// the mutating operations by returning ErrUnsupported rather than omitting
// them, so the surface stays uniform across all adapters. Backends with no
// native directory concept still answer ListDirectories with the fixed
// top-level names their schema recognizes.
type Adapter interface {
	// Definition returns adapter metadata.
	Definition() Info

	// Exists reports whether a file or directory exists at path.
	Exists(path string) bool

	// Read returns the contents of the file at path.
	Read(path string) ([]byte, error)

	// Write stores data at path. Without overwrite, an existing file
	// yields ErrAlreadyExists.
	Write(path string, data []byte, overwrite bool) error

	// Append adds data to the end of the file at path, creating it if
	// absent.
	Append(path string, data []byte) error

	// Delete removes the file or directory at path.
	Delete(path string) error

	// ListFiles returns the files directly under path matching pattern.
	// An empty pattern matches everything.
	ListFiles(path, pattern string) ([]string, error)

	// ListDirectories returns the directories directly under path
	// matching pattern.
	ListDirectories(path, pattern string) ([]string, error)

	// Size returns the size in bytes of the file at path.
	Size(path string) (int64, error)

	// IsAuthorized reports credential presence. It never touches the
	// network.
	IsAuthorized() bool

	// TestConnection probes the backend. Adapters without a meaningful
	// probe delegate to IsAuthorized.
	TestConnection(ctx context.Context) (bool, string)

	// Initialize performs one-time setup. It is idempotent and may reach
	// the network.
	Initialize(ctx context.Context) error

	// Dispose releases resources held by the adapter.
	Dispose() error
}
