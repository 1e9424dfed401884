package utils

import (
	"regexp"
	"strings"
)

var (
	phoneRegex      = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	phoneStripRegex = regexp.MustCompile(`[^\d+]`)
)

// IsValidPhone accepts E.164-like numbers once spaces, dashes and brackets
// are stripped. The leading + is optional.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phoneStripRegex.ReplaceAllString(phone, ""))
}

// NormalizePhone strips formatting and prefixes defaultCountryCode when the
// number carries none.
func NormalizePhone(phone, defaultCountryCode string) string {
	normalized := phoneStripRegex.ReplaceAllString(phone, "")
	if normalized == "" || strings.HasPrefix(normalized, "+") {
		return normalized
	}
	return "+" + strings.TrimPrefix(defaultCountryCode, "+") + normalized
}

func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
