// Package count validates and normalizes follower and like counts scraped from profile pages.
//
// Every extraction strategy funnels its candidate values through IsValid and
// Normalize, so "first valid value wins" means the same thing for meta tags,
// embedded JSON, and free text alike.
package count

import (
	"strconv"
	"strings"
	"unicode"
)

// sentinels are placeholder strings that must never be taken as real counts.
var sentinels = map[string]bool{
	"":          true,
	"n/a":       true,
	"0":         true,
	"null":      true,
	"undefined": true,
}

// IsValid reports whether raw represents a real, non-zero count.
func IsValid(raw string) bool {
	s := strings.TrimSpace(raw)
	if sentinels[strings.ToLower(s)] {
		return false
	}
	digits := digitsOnly(s)
	if digits == "" {
		return false
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		// Too large for uint64; any overflow is still non-zero.
		return strings.Trim(digits, "0") != ""
	}
	return n > 0
}

// Normalize strips separators from the numeric portion of raw and keeps a
// trailing k/m/b scale suffix in upper case: "4.500k" becomes "4500K",
// "12,345" becomes "12345".
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	suffix := ""
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'k', 'K', 'm', 'M', 'b', 'B':
			suffix = strings.ToUpper(s[n-1:])
			s = s[:n-1]
		}
	}
	return digitsOnly(s) + suffix
}

// Accept returns the normalized form of raw and whether it passed validation.
func Accept(raw string) (string, bool) {
	if !IsValid(raw) {
		return "", false
	}
	v := Normalize(raw)
	if !IsValid(v) {
		return "", false
	}
	return v, true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
