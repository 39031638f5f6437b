package waf

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode declares the validation context of a field and selects the
// whitelist applied to its raw value.
type Mode string

const (
	// ModeStrict allows Unicode letters, digits and whitespace only.
	ModeStrict Mode = "strict"
	// ModeEmail allows the characters of an e-mail address.
	ModeEmail Mode = "email"
	// ModePassword allows ASCII alphanumerics and a fixed set of safe symbols.
	ModePassword Mode = "password"
	// ModeText allows letters, digits, whitespace and basic punctuation.
	ModeText Mode = "text"
	// ModePassthrough rejects only markup, quote and shell separator characters.
	ModePassthrough Mode = "passthrough"
)

const (
	// DefaultSanitizeMode is the mode Secure and Sanitize callers get by default.
	DefaultSanitizeMode = ModeStrict
	// DefaultPassMode is the mode PassThrough uses.
	DefaultPassMode = ModePassthrough
)

var (
	strictWhitelist   = regexp.MustCompile(`^[\p{L}\p{N}\s]+$`)
	emailWhitelist    = regexp.MustCompile(`^[a-zA-Z0-9@._+%-]+$`)
	passwordWhitelist = regexp.MustCompile(`^[a-zA-Z0-9!@#$%\-_=+*?&]+$`)
	textWhitelist     = regexp.MustCompile(`^[\p{L}\p{N}\s.,!?\-]+$`)

	// Passthrough is a blacklist: a match means rejection.
	passthroughDenied = regexp.MustCompile("[<>'\"`;|\\x00]")
)

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ModeStrict, ModeEmail, ModePassword, ModeText, ModePassthrough}
}

// ParseMode resolves a mode name case-insensitively.
// Unknown names resolve to ModeStrict; use LookupMode to reject them.
func ParseMode(name string) Mode {
	if m, err := LookupMode(name); err == nil {
		return m
	}
	return ModeStrict
}

// LookupMode resolves a mode name case-insensitively and fails with
// ErrUnknownMode for names that are not declared.
func LookupMode(name string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(name)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return m, nil
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeStrict, ModeEmail, ModePassword, ModeText, ModePassthrough:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }

// UnmarshalText lets modes be read from YAML, env and flags.
// Unknown names fail with ErrUnknownMode.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := LookupMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Whitelist returns the expression a raw value of mode must match in full.
// Passthrough has no whitelist and returns nil.
func Whitelist(mode Mode) *regexp.Regexp {
	switch mode {
	case ModeEmail:
		return emailWhitelist
	case ModePassword:
		return passwordWhitelist
	case ModeText:
		return textWhitelist
	case ModePassthrough:
		return nil
	default:
		return strictWhitelist
	}
}

// AllowedByMode reports whether s passes the whitelist of mode.
// Unknown modes use the strict whitelist. Email values must also hold
// exactly one '@' with text on both sides.
func AllowedByMode(s string, mode Mode) bool {
	switch mode {
	case ModePassthrough:
		return !passthroughDenied.MatchString(s)
	case ModeEmail:
		return emailWhitelist.MatchString(s) && emailShape(s)
	}
	return Whitelist(mode).MatchString(s)
}

func emailShape(s string) bool {
	local, domain, ok := strings.Cut(s, "@")
	return ok && local != "" && domain != "" && !strings.Contains(domain, "@")
}
