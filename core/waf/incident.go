package waf

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Incident is minted once per blocked request and correlates the error
// page shown to the client with the threat log entry.
type Incident struct {
	ID       string
	Time     time.Time
	Threat   string
	Kind     ViolationKind
	Category Category
	Request  RequestInfo
}

// IDGenerator returns a fresh incident id.
type IDGenerator func() string

// NewIncidentID returns 12 upper-case hex characters drawn from the random
// bits of a v4 UUID.
func NewIncidentID() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:6]))
}

// RequestInfo describes the request a value came from.
type RequestInfo struct {
	ClientIP  string
	UserAgent string
	URI       string
	Method    string
	RequestID string
}

type requestInfoKey struct{}

// WithRequest stores request metadata for threat records.
func WithRequest(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestKey returns the context key WithRequest stores RequestInfo under,
// for contexts that carry values through a SetValue(key, val) method.
func RequestKey() any {
	return requestInfoKey{}
}

// RequestFromContext returns the request metadata stored by WithRequest.
func RequestFromContext(ctx context.Context) (RequestInfo, bool) {
	if ctx == nil {
		return RequestInfo{}, false
	}
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}

// withDefaults fills fields a non-HTTP caller leaves empty.
func (r RequestInfo) withDefaults() RequestInfo {
	if r.ClientIP == "" {
		r.ClientIP = "CLI"
	}
	if r.UserAgent == "" {
		r.UserAgent = "Unknown"
	}
	if r.URI == "" {
		r.URI = "N/A"
	}
	if r.Method == "" {
		r.Method = "N/A"
	}
	return r
}
