// Package sanitize strips markup from user-entered free text before it
// is persisted. Expense notes are the only free-text field in the API;
// everything else is validated into a narrow shape.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Note removes all HTML from an expense note and trims whitespace.
func Note(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
