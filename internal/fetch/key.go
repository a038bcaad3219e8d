package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Cache key errors.
var (
	ErrUnkeyableURL = errors.New("cannot derive cache key from url")
	ErrKeyCollision = errors.New("cache key already claimed by a different url")
)

// keyExtension is appended to every cache key so entries are recognizable
// on disk.
const keyExtension = ".html"

// CacheKey derives the on-disk cache key for a URL. The key is the last
// non-empty path segment, sanitized to filesystem-safe characters, with a
// fixed ".html" extension. Query strings and fragments never contribute, so
// the same page reached with different tracking parameters shares one entry.
func CacheKey(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnkeyableURL, err)
	}

	segment := lastSegment(u.Path)
	if segment == "" {
		// Root URLs key on the host.
		segment = u.Host
	}

	segment = strings.TrimSuffix(segment, ".html")
	segment = strings.TrimSuffix(segment, ".htm")

	sanitized := sanitizeSegment(segment)
	if sanitized == "" {
		return "", fmt.Errorf("%w: %q", ErrUnkeyableURL, rawURL)
	}

	return sanitized + keyExtension, nil
}

// lastSegment returns the last non-empty path segment, tolerating trailing
// slashes.
func lastSegment(path string) string {
	segments := strings.Split(path, "/")

	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}

	return ""
}

// sanitizeSegment replaces every character outside [A-Za-z0-9._-] with an
// underscore and trims leading dots so a key can never escape the cache
// directory or hide as a dotfile.
func sanitizeSegment(segment string) string {
	var b strings.Builder

	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return strings.Trim(b.String(), ".")
}
