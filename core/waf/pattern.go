package waf

import (
	"fmt"
	"regexp"
)

// Category tags an always-blocked pattern with the attack family it detects.
type Category string

const (
	CategorySQLi          Category = "sqli"
	CategoryXSS           Category = "xss"
	CategoryCmdInjection  Category = "cmd_injection"
	CategoryPathTraversal Category = "path_traversal"
	CategoryNullByte      Category = "null_byte"
)

func (c Category) String() string { return string(c) }

// Pattern is one compiled always-blocked rule.
type Pattern struct {
	Category Category
	Regexp   *regexp.Regexp
}

// CompilePattern compiles expr into a Pattern.
func CompilePattern(category Category, expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("waf: compile %s pattern %q: %w", category, expr, err)
	}
	return Pattern{Category: category, Regexp: re}, nil
}

func mustPattern(category Category, expr string) Pattern {
	p, err := CompilePattern(category, expr)
	if err != nil {
		panic(err)
	}
	return p
}

// PatternSet is an ordered, immutable list of always-blocked patterns.
// The zero value matches nothing.
type PatternSet struct {
	patterns []Pattern
}

// NewPatternSet copies patterns into an immutable set.
func NewPatternSet(patterns ...Pattern) *PatternSet {
	return &PatternSet{patterns: append([]Pattern(nil), patterns...)}
}

// The &&, || rules match anywhere, including ordinary prose.
var defaultPatterns = []Pattern{
	// SQL injection
	mustPattern(CategorySQLi, `(?i)\bUNION\b.*\bSELECT\b`),
	mustPattern(CategorySQLi, `(?i)\bSELECT\b.*\bFROM\b`),
	mustPattern(CategorySQLi, `(?i)\bINSERT\b.*\bINTO\b`),
	mustPattern(CategorySQLi, `(?i)\bUPDATE\b.*\bSET\b`),
	mustPattern(CategorySQLi, `(?i)\bDELETE\b.*\bFROM\b`),
	mustPattern(CategorySQLi, `(?i)\bDROP\b.*\bTABLE\b`),
	mustPattern(CategorySQLi, `(?i)\bEXEC\b|\bEXECUTE\b`),

	// XSS
	mustPattern(CategoryXSS, `(?is)<script[^>]*>`),
	mustPattern(CategoryXSS, `(?i)javascript:`),
	mustPattern(CategoryXSS, `(?i)on\w+=`),

	// Command injection
	mustPattern(CategoryCmdInjection, `(?i)[;&|]\s*(cat|ls|wget|curl|nc|bash|sh|cmd|whoami|id|pwd)`),
	mustPattern(CategoryCmdInjection, `&&`),
	mustPattern(CategoryCmdInjection, `\|\|`),

	// Path traversal
	mustPattern(CategoryPathTraversal, `\.\./`),
	mustPattern(CategoryPathTraversal, `\.\.\\`),

	// Control
	mustPattern(CategoryNullByte, `\x00`),
}

// DefaultPatterns returns the built-in rule set.
func DefaultPatterns() *PatternSet {
	return NewPatternSet(defaultPatterns...)
}

// Match returns the category of the first matching pattern.
func (ps *PatternSet) Match(s string) (Category, bool) {
	if ps == nil {
		return "", false
	}
	for _, p := range ps.patterns {
		if p.Regexp.MatchString(s) {
			return p.Category, true
		}
	}
	return "", false
}

// Len returns the number of patterns in the set.
func (ps *PatternSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.patterns)
}

// Patterns returns a copy of the ordered patterns.
func (ps *PatternSet) Patterns() []Pattern {
	if ps == nil {
		return nil
	}
	return append([]Pattern(nil), ps.patterns...)
}
