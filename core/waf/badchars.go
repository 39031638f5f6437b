package waf

import "strings"

// badChars is a reference blacklist. The pipeline does not use it; it is
// kept for callers that need a blunt character filter.
var badChars = []string{
	"<", ">", `"`, "'", "`", `\`, "/", ";", "|", "&",
	"$", "(", ")", "[", "]", "{", "}", "%", "#",
	"!", "~", "^", "*", "=", "+", ":", ",", ".", "-", "@",
}

var badCharSet = strings.Join(badChars, "")

var badCharStripper = func() *strings.Replacer {
	args := make([]string, 0, len(badChars)*2)
	for _, c := range badChars {
		args = append(args, c, "")
	}
	return strings.NewReplacer(args...)
}()

// BadChars returns a copy of the reference blacklist.
func BadChars() []string {
	out := make([]string, len(badChars))
	copy(out, badChars)
	return out
}

// ContainsBadChars reports whether s contains any blacklisted character.
func ContainsBadChars(s string) bool {
	return strings.ContainsAny(s, badCharSet)
}

// StripBadChars removes every blacklisted character from s.
func StripBadChars(s string) string {
	if s == "" {
		return s
	}
	return badCharStripper.Replace(s)
}
