package adapters

import "strings"

const brazilCountryCode = "55"

// NormalizePhone keeps digits only and prefixes the country code on 11-digit
// national numbers (DDD + 9-digit mobile). Returns "" when no digits remain.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 {
		return brazilCountryCode + digits
	}
	return digits
}
