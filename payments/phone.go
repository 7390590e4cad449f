package payments

import (
	"regexp"
	"strings"
)

var nonNumericRegex = regexp.MustCompile(`[^0-9]`)

// WithCountryCode rewrites a local-format phone number into international
// format by prepending countryCode and dropping a single leading zero.
// Numbers already carrying the country code have their separators removed.
// Numbers that arrive with a leading "+" are already international and are
// returned as "+" followed by their digits.
func WithCountryCode(phone, countryCode string) string {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return ""
	}
	sanitized := nonNumericRegex.ReplaceAllString(trimmed, "")
	if sanitized == "" {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "+") {
		if strings.HasPrefix(sanitized, countryCode) {
			return sanitized
		}
		return "+" + sanitized
	}
	if strings.HasPrefix(sanitized, countryCode) {
		return sanitized
	}
	return countryCode + strings.TrimPrefix(sanitized, "0")
}
