package vfs

import "errors"

// Sentinel errors returned by adapter operations. Callers match with
// errors.Is; adapters add context with fmt.Errorf("...: %w", err).
var (
	// ErrNotFound indicates the addressed file or directory does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a write without overwrite permission hit
	// an existing file.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnsupported indicates a mutating operation on a read-only backend.
	ErrUnsupported = errors.New("operation not supported")

	// ErrPathEscapesRoot indicates a path that would resolve outside the
	// backend's configured root.
	ErrPathEscapesRoot = errors.New("path escapes backend root")

	// ErrUnauthorized indicates a remote operation attempted without valid
	// credentials.
	ErrUnauthorized = errors.New("backend not authorized")
)
