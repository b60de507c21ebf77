// Package vfs defines the virtual filesystem contract shared by every
// backend adapter.
//
// An Adapter presents one content source (a disk directory, a remote
// document API, an AI chat endpoint) as a slash-delimited hierarchy of
// directories and files. The hub never talks to a backend except through
// this interface, so unrelated storage models stay browsable, readable,
// and writable with identical semantics.
//
// Error Taxonomy:
//   - ErrNotFound: read/size/delete of a nonexistent leaf
//   - ErrAlreadyExists: write without overwrite permission
//   - ErrUnsupported: mutating call on a read-only backend
//   - ErrPathEscapesRoot: containment violation
//   - ErrUnauthorized: remote call without valid credentials
//
// Errors are checked with errors.Is; adapters wrap them with context.
package vfs
