// Package creds resolves credentials for remote adapters. The chain is
// consulted once at construction time: explicit value, then the external
// key-value store, then the process environment. First non-empty wins.
package creds

import "os"

// Store is the external key-value credential store. The hub only reads
// from it; persistence is the collaborator's concern.
type Store interface {
	Get(key string) string
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(key string) string

func (f StoreFunc) Get(key string) string { return f(key) }

// Resolve walks the resolution chain. store may be nil.
func Resolve(explicit string, store Store, key, envVar string) string {
	if explicit != "" {
		return explicit
	}
	if store != nil && key != "" {
		if v := store.Get(key); v != "" {
			return v
		}
	}
	if envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}
