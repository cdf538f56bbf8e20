package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// Depth bounds shared by the tree package and configuration loading.
const (
	MinMaxDepth = 1
	MaxMaxDepth = 1000
)

// ValidateMaxDepth rejects depth bounds above [MaxMaxDepth].
// Values below [MinMaxDepth] are not an error; callers clamp them.
func ValidateMaxDepth(depth int) error {
	if depth > MaxMaxDepth {
		return New(ErrCodeInvalidInput, "max depth %d exceeds limit of %d", depth, MaxMaxDepth)
	}
	return nil
}

// identifierRegex matches plain SQL identifiers, optionally schema-qualified.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateIdentifier checks that name is a plain SQL table or column identifier.
// The query builder itself never escapes identifiers, so entry points that accept
// names from untrusted callers run them through this first.
func ValidateIdentifier(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "identifier too long (max 128 characters)")
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid identifier: %q", name)
	}
	return nil
}

// ValidatePath validates a local file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateURL validates a connection URL against the allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "URL must use one of the schemes %s", strings.Join(schemes, ", "))
}
