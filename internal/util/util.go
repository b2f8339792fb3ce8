package util

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// DefaultCodeLength is the width of generated short codes unless overridden
// by configuration.
const DefaultCodeLength = 7

const maxCustomCodeLength = 32

// ShortCode derives a deterministic alias for original: the lowercase hex
// SHA-256 digest of its bytes, truncated to length. Same input always yields
// the same code. Truncation means two distinct URLs can collide; the service
// layer resolves that against the store's unique constraint.
func ShortCode(original string, length int) string {
	if length <= 0 {
		length = DefaultCodeLength
	}
	sum := sha256.Sum256([]byte(original))
	code := hex.EncodeToString(sum[:])
	if length > len(code) {
		length = len(code)
	}
	return code[:length]
}

func ValidateURL(raw string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ValidateCustomCode restricts caller-supplied codes to URL-safe characters
// so they can sit in a path segment untouched.
func ValidateCustomCode(code string) bool {
	if code == "" || len(code) > maxCustomCodeLength {
		return false
	}
	for _, c := range code {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
