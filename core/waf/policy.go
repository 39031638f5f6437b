package waf

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrUnknownMode is returned when a policy names a mode that does not exist.
var ErrUnknownMode = errors.New("waf: unknown mode")

// Policy maps request field names to validation modes.
//
//	default: strict
//	fields:
//	  email: email
//	  password: password
//	  comment: text
//	skip: [csrf_token]
//	patterns:
//	  - category: sqli
//	    expr: '(?i)\bwaitfor\s+delay\b'
type Policy struct {
	Default  Mode
	Fields   map[string]Mode
	Skip     []string
	Patterns []Pattern
}

type policyFile struct {
	Default  string            `yaml:"default"`
	Fields   map[string]string `yaml:"fields"`
	Skip     []string          `yaml:"skip"`
	Patterns []struct {
		Category string `yaml:"category"`
		Expr     string `yaml:"expr"`
	} `yaml:"patterns"`
}

// DefaultPolicy validates every field in strict mode.
func DefaultPolicy() *Policy {
	return &Policy{Default: DefaultSanitizeMode, Fields: map[string]Mode{}}
}

// LoadPolicy reads a YAML policy file. An empty path or a missing file
// yields DefaultPolicy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return nil, fmt.Errorf("waf: read policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes a YAML policy. Mode names must be valid.
func ParsePolicy(data []byte) (*Policy, error) {
	var raw policyFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("waf: parse policy: %w", err)
	}

	p := DefaultPolicy()
	if raw.Default != "" {
		m, err := LookupMode(raw.Default)
		if err != nil {
			return nil, err
		}
		p.Default = m
	}
	for field, name := range raw.Fields {
		m, err := LookupMode(name)
		if err != nil {
			return nil, fmt.Errorf("%w (field %q)", err, field)
		}
		p.Fields[field] = m
	}
	p.Skip = raw.Skip
	for i, rp := range raw.Patterns {
		pat, err := CompilePattern(Category(rp.Category), rp.Expr)
		if err != nil {
			return nil, fmt.Errorf("waf: policy pattern %d: %w", i, err)
		}
		p.Patterns = append(p.Patterns, pat)
	}
	return p, nil
}

// ModeFor returns the mode for field and whether the field is validated at all.
func (p *Policy) ModeFor(field string) (Mode, bool) {
	if slices.Contains(p.Skip, field) {
		return "", false
	}
	if m, ok := p.Fields[field]; ok {
		return m, true
	}
	if p.Default == "" {
		return DefaultSanitizeMode, true
	}
	return p.Default, true
}

// PatternSet returns the default patterns followed by the policy's extras.
func (p *Policy) PatternSet() *PatternSet {
	if len(p.Patterns) == 0 {
		return DefaultPatterns()
	}
	return NewPatternSet(append(DefaultPatterns().Patterns(), p.Patterns...)...)
}
