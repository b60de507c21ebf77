// Package paths provides the standard on-disk layout for the hub.
//
// Every local backend root, sandbox directory, and cache directory is
// derived here so the layout stays consistent across adapters:
//
//	$BRIDGEFS_STORAGE_ROOT/   (default ~/.bridgefs/storage)
//	  sandbox/<app-id>/       (per-app sandboxed roots)
//	$BRIDGEFS_CACHE_ROOT/     (default ~/.bridgefs/cache)
//	  <name>/                 (per-consumer cache directories)
//
// Sandbox app IDs are validated before use so a crafted ID cannot
// address a directory outside the sandbox tree.
package paths
