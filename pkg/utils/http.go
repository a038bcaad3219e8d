// Package utils provides common utility functions.
package utils

import (
	"errors"
	"fmt"
	"net/url"
)

// URL validation errors.
var (
	ErrEmptyURL          = errors.New("url must not be empty")
	ErrUnsupportedScheme = errors.New("url scheme must be http or https")
	ErrMissingHost       = errors.New("url host is missing")
)

// ValidateURL checks that a string is an absolute http(s) URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return ErrEmptyURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("unparseable url %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, raw)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: %q", ErrMissingHost, raw)
	}

	return nil
}

// IsValidURL reports whether a string is an absolute http(s) URL.
func IsValidURL(raw string) bool {
	return ValidateURL(raw) == nil
}
