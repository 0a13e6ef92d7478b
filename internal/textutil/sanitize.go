package textutil

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"cutroom/internal/failure"
)

// MaxNameLength is the longest sanitized name accepted, in bytes. Most
// filesystems cap a single path component at 255 bytes.
const MaxNameLength = 255

// illegalNameChars are removed from project names before they become
// directory names.
const illegalNameChars = `<>:"/\|?*`

// SanitizeName turns a user-supplied project name into a filesystem-safe
// directory name. Illegal characters and control characters are dropped,
// the remainder is NFC normalized so visually identical names map to one
// directory, and leading and trailing spaces and dots are trimmed.
//
// An empty result or one longer than MaxNameLength fails with
// failure.ErrInvalidName. SanitizeName is idempotent.
func SanitizeName(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(illegalNameChars, r) {
			continue
		}
		b.WriteRune(r)
	}

	name := strings.Trim(norm.NFC.String(b.String()), ". ")
	switch {
	case name == "":
		return "", failure.Wrap(failure.ErrInvalidName, "", fmt.Sprintf("%q is empty after sanitizing", raw), nil)
	case len(name) > MaxNameLength:
		return "", failure.Wrap(failure.ErrInvalidName, "", fmt.Sprintf("name exceeds %d bytes", MaxNameLength), nil)
	}
	return name, nil
}
