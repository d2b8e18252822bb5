package errors

import (
	"strings"
	"unicode"
)

const (
	maxIdentifierLength = 512
	maxSearchLength     = 256
	maxPathLength       = 4096
)

// ValidateTableID validates a table or column identifier received from a
// client (query string, action body, CLI flag).
//
// Identifiers are opaque dotted names such as "model.shop.orders". The rules
// only guard against garbage input:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of 512 characters
func ValidateTableID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}
	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "identifier too long (max %d characters)", maxIdentifierLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "identifier contains invalid control characters")
		}
	}
	return nil
}

// ValidateSearch validates free-text search input. Empty input is valid and
// means "no search".
func ValidateSearch(text string) error {
	if len(text) > maxSearchLength {
		return New(ErrCodeInvalidInput, "search text too long (max %d characters)", maxSearchLength)
	}
	for _, r := range text {
		if r == '\x00' || (unicode.IsControl(r) && r != '\t') {
			return New(ErrCodeInvalidInput, "search text contains invalid characters")
		}
	}
	return nil
}

// ValidateTags validates a tag selection.
func ValidateTags(tags []string) error {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return New(ErrCodeInvalidInput, "tag cannot be empty")
		}
		if err := ValidateTableID(tag); err != nil {
			return New(ErrCodeInvalidInput, "invalid tag %q", tag)
		}
	}
	return nil
}

// ValidatePath validates a local metadata file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateFormat checks that format is one of the supported output formats.
func ValidateFormat(format string, supported []string) error {
	for _, f := range supported {
		if format == f {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(supported, ", "))
}
