// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "FR"

// Normalize reduces a free-text phone number to a canonical comparable key.
// Valid numbers are formatted to E.164. Anything else is reduced to its
// digits (keeping a leading `+`), with the national trunk "0" collapsed to
// the French international prefix so the same real-world number always maps
// to the same key. Empty or whitespace input returns the empty string.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err == nil && phonenumbers.IsValidNumber(number) {
		return phonenumbers.Format(number, phonenumbers.E164)
	}

	return canonicalDigits(trimmed)
}

// canonicalDigits strips every non-digit character except a leading `+` and
// collapses national dialing prefixes to international form.
func canonicalDigits(value string) string {
	hasPlus := strings.HasPrefix(value, "+")

	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	switch {
	case hasPlus:
		return "+" + digits
	case strings.HasPrefix(digits, "00"):
		return "+" + strings.TrimPrefix(digits, "00")
	case strings.HasPrefix(digits, "0"):
		return "+33" + strings.TrimPrefix(digits, "0")
	default:
		return digits
	}
}
