// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address for storage and lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// ClubName trims surrounding whitespace. Case is preserved: visibility
// matching and fan-out are exact, case-sensitive comparisons on the
// stored name.
func ClubName(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a URL query parameter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
