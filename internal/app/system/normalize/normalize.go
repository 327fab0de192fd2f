// Package normalize holds the canonical-form rules for user-entered
// identity fields. Every store write goes through these so lookups
// (login by email, duplicate detection) see one spelling of a value.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses internal whitespace runs to
// single spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
