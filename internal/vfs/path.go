package vfs

import "strings"

// NormalizePath canonicalizes a virtual path: backslashes become forward
// slashes, leading and trailing separators are trimmed, and empty segments
// collapse. The root is the empty string. Normalization is recomputed per
// call; virtual paths are never persisted.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, "/")
}

// SplitPath normalizes path and returns its segments. The root yields an
// empty slice.
func SplitPath(path string) []string {
	normalized := NormalizePath(path)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, "/")
}
