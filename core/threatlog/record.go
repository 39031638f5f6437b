package threatlog

import (
	"context"
	"errors"
	"unicode/utf8"
)

// MaxSampleLength caps the stored input sample, in bytes.
const MaxSampleLength = 500

// TimeFormat is the layout of Record.Timestamp.
const TimeFormat = "2006-01-02T15:04:05-07:00"

// Record is one blocked-request entry. It is written once and never mutated.
type Record struct {
	Timestamp   string `json:"timestamp"`
	IP          string `json:"ip"`
	UserAgent   string `json:"user_agent"`
	URI         string `json:"uri"`
	Method      string `json:"method"`
	Threat      string `json:"threat"`
	Category    string `json:"category,omitempty"`
	IncidentID  string `json:"incident_id"`
	RequestID   string `json:"request_id,omitempty"`
	InputSample string `json:"input_sample"`
	InputLength int    `json:"input_length"`
}

// Sample truncates input to MaxSampleLength bytes without splitting a rune.
func Sample(input string) string {
	return truncate(input, MaxSampleLength)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Sink persists threat records.
type Sink interface {
	Write(ctx context.Context, r Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r Record) error

func (f SinkFunc) Write(ctx context.Context, r Record) error { return f(ctx, r) }

// Discard drops every record.
var Discard Sink = SinkFunc(func(context.Context, Record) error { return nil })

type multiSink []Sink

// Multi fans a record out to every sink. All sinks are attempted; their
// errors are joined.
func Multi(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multiSink) Write(ctx context.Context, r Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
