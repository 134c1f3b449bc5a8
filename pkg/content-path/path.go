package contentpath

import "strings"

// Canonical joins raw path segments into the canonical content path.
// An empty or absent segment list canonicalizes to "/".
func Canonical(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

// Segments splits a raw URL path into its segments, dropping empties.
// It is the inverse of Canonical for canonical inputs.
func Segments(rawPath string) []string {
	var segments []string
	for _, s := range strings.Split(rawPath, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// LastSegment returns the final segment of a path, or "" for the root.
func LastSegment(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// Extension returns the file extension of the path's last segment,
// without the dot. A trailing dot or a leading-dot-only name
// (".profile") yields no extension.
func Extension(path string) string {
	last := LastSegment(path)
	idx := strings.LastIndex(last, ".")
	if idx <= 0 || idx == len(last)-1 {
		return ""
	}
	return last[idx+1:]
}

// HasExtension reports whether the path's last segment names a file,
// i.e. has a dot with a non-empty suffix.
func HasExtension(path string) bool {
	return Extension(path) != ""
}
