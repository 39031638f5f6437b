package validator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultNameMinLength = 2
	DefaultNameMaxLength = 50

	// DefaultDateLayout is the layout ValidDateTime uses when none is given.
	DefaultDateLayout = "2006-01-02"

	minEmailLength = 3
	maxEmailLength = 254
	maxLocalLength = 64
	minYear        = 1900
	maxYear        = 2100
)

var (
	integerPattern  = regexp.MustCompile(`^-?\d+$`)
	floatPattern    = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	uuidPattern     = regexp.MustCompile(`^[0-9a-f]{32}$`)
	namePattern     = regexp.MustCompile(`^[\p{L}\s'\-.]+$`)
	nameRepeated    = regexp.MustCompile(`['\-.]{2,}`)
	nameEdges       = regexp.MustCompile(`^['\-.\s]|['\-.\s]$`)
	datetimePattern = regexp.MustCompile(`^[0-9:\-/.\sTZ+]+$`)

	emailLocal  = regexp.MustCompile("^[A-Za-z0-9!#$%&'*+/=?^_`{|}~-]+(\\.[A-Za-z0-9!#$%&'*+/=?^_`{|}~-]+)*$")
	emailDomain = regexp.MustCompile(`^([A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)
)

// ValidEmail reports whether s is a plausible e-mail address: 3 to 254
// bytes after trimming, a dot-atom local part of at most 64 bytes and a
// dotted domain name.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < minEmailLength || len(s) > maxEmailLength {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	if len(local) > maxLocalLength {
		return false
	}
	return emailLocal.MatchString(local) && emailDomain.MatchString(domain)
}

// ValidInteger reports whether s is a base-10 integer within the inclusive
// bounds. A nil bound is unbounded. Leading zeros, a plus sign and values
// outside int64 are rejected.
func ValidInteger(s string, min, max *int64) bool {
	if !integerPattern.MatchString(s) {
		return false
	}
	digits := strings.TrimPrefix(s, "-")
	if len(digits) > 1 && digits[0] == '0' {
		return false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return false
	}
	if min != nil && n < *min {
		return false
	}
	if max != nil && n > *max {
		return false
	}
	return true
}

// ValidIntegerRange is ValidInteger with both bounds set.
func ValidIntegerRange(s string, min, max int64) bool {
	return ValidInteger(s, &min, &max)
}

// ValidFloat reports whether s is a plain decimal number (no exponent)
// that parses to a finite value within the inclusive bounds.
func ValidFloat(s string, min, max *float64) bool {
	if !floatPattern.MatchString(s) {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	if min != nil && f < *min {
		return false
	}
	if max != nil && f > *max {
		return false
	}
	return true
}

// ValidFloatRange is ValidFloat with both bounds set.
func ValidFloatRange(s string, min, max float64) bool {
	return ValidFloat(s, &min, &max)
}

// ValidUUID reports whether s is exactly 32 lower-case hex characters.
// Dashed UUIDs are not accepted.
func ValidUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// ValidName reports whether s is a person name of minLen to maxLen runes:
// letters, spaces, apostrophes, hyphens and dots, with no doubled
// punctuation and no punctuation at either end.
func ValidName(s string, minLen, maxLen int) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	n := utf8.RuneCountInString(s)
	if n < minLen || n > maxLen {
		return false
	}
	return namePattern.MatchString(s) &&
		!nameRepeated.MatchString(s) &&
		!nameEdges.MatchString(s)
}

// ValidNameDefault is ValidName with 2 to 50 runes.
func ValidNameDefault(s string) bool {
	return ValidName(s, DefaultNameMinLength, DefaultNameMaxLength)
}

// ValidDateTime reports whether s, once trimmed, is exactly layout-formatted
// (parsing and formatting again yields the same text) with a year between
// 1900 and 2100. An empty layout means DefaultDateLayout.
func ValidDateTime(s, layout string) bool {
	if layout == "" {
		layout = DefaultDateLayout
	}
	s = strings.TrimSpace(s)
	if s == "" || !datetimePattern.MatchString(s) {
		return false
	}
	t, err := time.Parse(layout, s)
	if err != nil || t.Format(layout) != s {
		return false
	}
	return t.Year() >= minYear && t.Year() <= maxYear
}
