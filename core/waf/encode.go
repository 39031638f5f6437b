package waf

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const objectPlaceholder = "[Object]"

// The five HTML special characters, with quotes in their HTML5 named form.
var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EncodeHTML escapes &, <, >, double and single quotes. Ill-formed UTF-8 is
// replaced with U+FFFD rather than rejected. Already-encoded entities are
// encoded again, so EncodeHTML is not idempotent.
func EncodeHTML(s string) string {
	if s == "" {
		return s
	}
	if !utf8.ValidString(s) {
		if fixed, _, err := transform.String(runes.ReplaceIllFormed(), s); err == nil {
			s = fixed
		} else {
			s = strings.ToValidUTF8(s, string(utf8.RuneError))
		}
	}
	return htmlReplacer.Replace(s)
}

// Reflect HTML-encodes every scalar leaf of v without any validation.
// It never fails: objects without a string form become "[Object]".
func Reflect(v Value) Value {
	switch v.kind {
	case KindNull:
		return v
	case KindScalar:
		return String(EncodeHTML(v.scalar))
	case KindObject:
		if s, ok := v.Scalar(); ok {
			return String(EncodeHTML(s))
		}
		return String(objectPlaceholder)
	case KindList:
		out := make([]Value, len(v.list))
		for i, item := range v.list {
			out[i] = Reflect(item)
		}
		return List(out...)
	case KindMap:
		out := make([]Pair, len(v.pairs))
		for i, p := range v.pairs {
			out[i] = P(p.Key, Reflect(p.Value))
		}
		return MapOf(out...)
	}
	return v
}

// ReflectString is Reflect for a single string.
func ReflectString(s string) string {
	return EncodeHTML(s)
}
