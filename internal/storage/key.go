package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxKeyLength is the longest object key S3-compatible backends accept, in bytes.
const MaxKeyLength = 1024

// ErrInvalidKey is returned for keys no backend would accept.
var ErrInvalidKey = errors.New("invalid object key")

// ValidateKey rejects keys that are empty, not UTF-8 or too long.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	case !utf8.ValidString(key):
		return fmt.Errorf("%w: key is not valid UTF-8", ErrInvalidKey)
	case len(key) > MaxKeyLength:
		return fmt.Errorf("%w: key exceeds %d bytes", ErrInvalidKey, MaxKeyLength)
	}
	return nil
}

// escapeKey escapes each path segment of key for use in a URL path
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
