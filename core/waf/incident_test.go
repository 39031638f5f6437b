package waf_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noticket/waf/core/waf"
)

func TestNewIncidentID(t *testing.T) {
	t.Parallel()

	format := regexp.MustCompile(`^[0-9A-F]{12}$`)
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		id := waf.NewIncidentID()
		assert.Regexp(t, format, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestRequestContext(t *testing.T) {
	t.Parallel()

	_, ok := waf.RequestFromContext(context.Background())
	assert.False(t, ok)

	info := waf.RequestInfo{ClientIP: "10.0.0.1", Method: "POST"}
	got, ok := waf.RequestFromContext(waf.WithRequest(context.Background(), info))
	assert.True(t, ok)
	assert.Equal(t, info, got)
}

func TestRequestKey(t *testing.T) {
	t.Parallel()

	info := waf.RequestInfo{ClientIP: "10.0.0.2"}
	ctx := context.WithValue(context.Background(), waf.RequestKey(), info)
	got, ok := waf.RequestFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, info, got)
}
