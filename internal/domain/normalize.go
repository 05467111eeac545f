package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle prepares a page title for storage and comparison:
//   - trims leading/trailing whitespace
//   - applies Unicode NFC so decomposed umlauts match their composed form
//
// Case is preserved: German titles are case-significant (Laut vs laut).
func NormalizeTitle(title string) string {
	return norm.NFC.String(strings.TrimSpace(title))
}
