// Package casefold provides the Unicode-aware lowercasing the V-Analyzer
// uses to build its lowercased working copy of a sentence. It is a
// stripped, English-only descendant of the teacher module's
// Azerbaijani-aware case package: VADER's lowercasing step needs only
// standard Unicode case folding, so the Turkic dotted/dotless-I special
// casing that package carried does not apply here.
package casefold

import "strings"

// ToLower returns the standard Unicode lowercase form of s.
func ToLower(s string) string {
	return strings.ToLower(s)
}
