package waf

import (
	"errors"
	"fmt"
)

// ViolationKind classifies why a value was rejected.
type ViolationKind string

const (
	// DirectPatternViolation: an always-blocked pattern matched the raw value.
	DirectPatternViolation ViolationKind = "direct_pattern"
	// EncodedPatternViolation: a pattern matched only after decoding, or the
	// decode budget ran out before a fixed point.
	EncodedPatternViolation ViolationKind = "encoded_pattern"
	// WhitelistViolation: the raw value has characters outside the mode whitelist.
	WhitelistViolation ViolationKind = "whitelist"
	// InvalidObjectType: an object without a string form reached the pipeline.
	InvalidObjectType ViolationKind = "invalid_object"
	// MalformedFieldValue is reported by field validators, never by the pipeline.
	MalformedFieldValue ViolationKind = "malformed_field"
)

var (
	ErrDirectPattern  = errors.New("waf: dangerous pattern detected")
	ErrEncodedPattern = errors.New("waf: encoded attack detected")
	ErrWhitelist      = errors.New("waf: invalid characters for mode")
	ErrInvalidObject  = errors.New("waf: invalid object type")
	ErrMalformedField = errors.New("waf: malformed field value")
)

// Threat descriptions written to the threat log and shown on the block page.
const (
	ThreatDirectPattern = "Dangerous pattern detected"
	ThreatEncodedAttack = "Encoded attack detected"
	ThreatInvalidObject = "Invalid object type"
	threatWhitelistFmt  = "Invalid characters for mode: %s"
)

func (k ViolationKind) sentinel() error {
	switch k {
	case DirectPatternViolation:
		return ErrDirectPattern
	case EncodedPatternViolation:
		return ErrEncodedPattern
	case WhitelistViolation:
		return ErrWhitelist
	case InvalidObjectType:
		return ErrInvalidObject
	default:
		return ErrMalformedField
	}
}

// Violation is returned by Sanitize and Pass when input is rejected.
// The request that produced it must not continue with the input.
type Violation struct {
	Kind     ViolationKind
	Mode     Mode
	Category Category // empty for whitelist and object violations
	Threat   string
	Incident *Incident
}

func (v *Violation) Error() string {
	if v.Incident != nil {
		return fmt.Sprintf("waf: %s (incident %s)", v.Threat, v.Incident.ID)
	}
	return "waf: " + v.Threat
}

// Is matches the sentinel error of the violation kind.
func (v *Violation) Is(target error) bool {
	return target == v.Kind.sentinel()
}

// AsViolation unwraps err into a *Violation.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
