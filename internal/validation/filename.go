// Package validation provides input validation and sanitization for names that
// end up as filesystem path components.
//
// Template names and document titles are user supplied and become file names,
// so every name passes through SanitizeFilename before it touches storage.
package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dpshade/book-editor/internal/errors"
)

// JSONExtension is the extension every persisted entity carries.
const JSONExtension = ".json"

// MaxFilenameLength is the common filesystem limit for one path component.
const MaxFilenameLength = 255

// maxBaseLength leaves room for the extension plus one byte of slack.
const maxBaseLength = MaxFilenameLength - len(JSONExtension) - 1

// reservedNames are device names Windows refuses as file names.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// invalidChars are path separators and shell-special characters.
const invalidChars = `/\:*?"<>|;&$'` + "`"

// SanitizeFilename rewrites name into a safe file name (without extension).
// Sanitizing an already sanitized name returns it unchanged.
func SanitizeFilename(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.InvalidArgumentError("name cannot be empty")
	}

	name = strings.TrimSpace(name)
	if strings.Trim(name, ".") == "" {
		return "", errors.InvalidArgumentError("invalid name %q", name)
	}
	name = strings.Trim(name, ". \t")

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsControl(r), unicode.IsSpace(r), r == '.', strings.ContainsRune(invalidChars, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	sanitized := collapseUnderscores(b.String())
	sanitized = strings.Trim(sanitized, "._")

	if reservedNames[strings.ToUpper(sanitized)] {
		sanitized += "_"
	}

	if len(sanitized) > maxBaseLength {
		sanitized = truncate(sanitized, maxBaseLength)
	}

	if sanitized == "" {
		return "", errors.InvalidArgumentError("invalid name %q", name)
	}
	return sanitized, nil
}

// Filename returns the sanitized name with the JSON extension appended.
func Filename(name string) (string, error) {
	sanitized, err := SanitizeFilename(name)
	if err != nil {
		return "", err
	}
	return sanitized + JSONExtension, nil
}

// truncate shortens s to at most limit bytes, preferring an underscore
// boundary in the second half of the allowed length.
func truncate(s string, limit int) string {
	cut := runeBoundary(s, limit)
	head := s[:cut]
	if idx := strings.LastIndex(head, "_"); idx > limit/2 {
		head = head[:idx]
	} else {
		head = s[:runeBoundary(s, limit-10)]
	}
	return strings.TrimRight(head, "._")
}

// runeBoundary backs n off until it does not split a UTF-8 sequence.
func runeBoundary(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := false
	for _, r := range s {
		if r == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidateTemplateName reports whether name can be used as a template name
// without any rewriting of separators.
func ValidateTemplateName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	if strings.ContainsAny(name, `/\:*?"<>|`) {
		return false
	}
	return strings.Trim(name, ".") != ""
}

// ValidateCategoryName reports whether name can be registered as a category.
func ValidateCategoryName(name string) bool {
	return strings.TrimSpace(name) != ""
}
