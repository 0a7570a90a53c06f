// Package email holds small helpers for customer e-mail addresses.
package email

import (
	"strings"
	"unicode"
)

// Normalize trims and lowercases an address so uniqueness checks are
// case-insensitive.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// LooksValid is the minimal shape check used by forms: a non-empty local
// part and domain around a single '@'.
func LooksValid(address string) bool {
	local, domain, ok := strings.Cut(strings.TrimSpace(address), "@")
	return ok && local != "" && domain != "" && !strings.Contains(domain, "@")
}

// DeriveNameFromEmail guesses a first and last name from the local part.
// Used as the greeting fallback for customers without a filled profile.
func DeriveNameFromEmail(address string) (string, string) {
	localPart := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "Zákazník", ""
	}

	first := capitalize(parts[0])
	last := ""
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
