// Package normalize holds the single normalization policy applied to
// user-supplied identity fields.
//
// Linkage redemption compares a (code, full name, adhaar number) triple
// against a personnel record. The policy, applied identically at issuance,
// declaration, and redemption: surrounding whitespace is trimmed everywhere;
// family codes are uppercased; names and adhaar numbers are otherwise
// compared verbatim (no case folding).
package normalize

import "strings"

// Username trims surrounding whitespace and lowercases the login name.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Adhaar trims surrounding whitespace. Digits only is not enforced here;
// the value is compared verbatim after trimming.
func Adhaar(s string) string {
	return strings.TrimSpace(s)
}

// FamilyCode trims surrounding whitespace and uppercases, so a transcribed
// code matches regardless of how it was typed.
func FamilyCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Role trims and lowercases a role tag.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
