package validation

import (
	"strings"
	"unicode"
)

// StripUnprintable removes non-printable characters, keeping common
// whitespace (space, tab, newline, carriage return). The broker export
// occasionally carries control characters in free-text fields.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
