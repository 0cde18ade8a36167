package analysis

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"go.lsp.dev/uri"
)

// AbsoluteURL is a normalized absolute URI used as the identity key for all
// document and program lookups. Two AbsoluteURLs built from equivalent paths
// (relative vs. absolute, native separators vs. URI-encoded) compare equal.
// The zero value is invalid.
type AbsoluteURL struct {
	value uri.URI
}

// ParseURL normalizes a URI string into an AbsoluteURL. The string must
// parse as an absolute URI with a scheme; file URIs are normalized through
// their cleaned filesystem path.
func ParseURL(raw string) (AbsoluteURL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return AbsoluteURL{}, fmt.Errorf("%w: %q: %v", ErrInvalidURI, raw, err)
	}
	if parsed.Scheme == "" {
		return AbsoluteURL{}, fmt.Errorf("%w: %q has no scheme", ErrInvalidURI, raw)
	}
	if parsed.Scheme == "file" {
		return URLFromPath(pathFromFileURL(parsed)), nil
	}
	return AbsoluteURL{value: uri.URI(parsed.String())}, nil
}

// URLFromPath builds the AbsoluteURL identifying a filesystem path. Relative
// paths are resolved against the working directory.
func URLFromPath(path string) AbsoluteURL {
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return AbsoluteURL{value: uri.File(filepath.Clean(path))}
}

// String returns the normalized URI string.
func (u AbsoluteURL) String() string { return string(u.value) }

// IsZero reports whether the URL is the invalid zero value.
func (u AbsoluteURL) IsZero() bool { return u.value == "" }

// IsFile reports whether the URL uses the file scheme.
func (u AbsoluteURL) IsFile() bool {
	return strings.HasPrefix(string(u.value), "file://")
}

// Filename returns the filesystem path of a file URL.
func (u AbsoluteURL) Filename() (string, error) {
	if !u.IsFile() {
		return "", fmt.Errorf("%w: %q is not a file uri", ErrInvalidURI, u.value)
	}
	parsed, err := url.Parse(string(u.value))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURI, u.value, err)
	}
	return pathFromFileURL(parsed), nil
}

// pathFromFileURL extracts the native path from a parsed file URL.
// On Windows, file URIs look like file:///C:/path, so Path is /C:/path.
func pathFromFileURL(parsed *url.URL) string {
	path := parsed.Path
	if runtime.GOOS == "windows" && len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}
