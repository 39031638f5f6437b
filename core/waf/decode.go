package waf

import (
	"html"
	"strings"
)

// DefaultMaxDecodeIterations bounds the decode loop.
const DefaultMaxDecodeIterations = 5

// Decoder peels URL and HTML-entity encoding layers off a string.
type Decoder struct {
	// MaxIterations caps the number of decode passes (default 5).
	MaxIterations int
}

// DecodeResult is the outcome of Decoder.Decode.
type DecodeResult struct {
	// Steps holds the output of every pass that changed the text, in order.
	Steps []string
	// Exhausted is set when every allowed pass changed the text and one more
	// pass would still change it. Such input is never considered decoded.
	Exhausted bool
}

// Decode URL-decodes then HTML-entity-decodes s repeatedly until a fixed
// point is reached or the iteration cap is hit.
func (d Decoder) Decode(s string) DecodeResult {
	limit := d.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxDecodeIterations
	}

	var res DecodeResult
	current := s
	for range limit {
		next := decodeOnce(current)
		if next == current {
			return res
		}
		res.Steps = append(res.Steps, next)
		current = next
	}

	res.Exhausted = decodeOnce(current) != current
	return res
}

func decodeOnce(s string) string {
	return html.UnescapeString(urlDecode(s))
}

// urlDecode decodes %XX escapes and '+' the lenient way form decoders do:
// malformed escapes are kept literally instead of failing.
func urlDecode(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
