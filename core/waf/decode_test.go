package waf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/waf"
)

func TestDecoder_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		steps     []string
		exhausted bool
	}{
		{"plain text", "hello", nil, false},
		{"plus becomes space", "a+b", []string{"a b"}, false},
		{"percent escape", "%41%62", []string{"Ab"}, false},
		{"malformed escapes kept", "100% %zz %4", nil, false},
		{"named entity", "&lt;b&gt;", []string{"<b>"}, false},
		{"numeric entities", "&#60;&#x3E;&#X3e;", []string{"<>>"}, false},
		{"url then entity in one pass", "%26lt%3B", []string{"<"}, false},
		{"legacy entities without semicolon", "x&ltscript&gt1", []string{"x<script>1"}, false},
		{"two layers", "%253C", []string{"%3C", "<"}, false},
		{"five layers", encodeTimes("<", 5), []string{
			encodeTimes("<", 4), encodeTimes("<", 3), encodeTimes("<", 2), encodeTimes("<", 1), "<",
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := waf.Decoder{}.Decode(tt.input)
			assert.Equal(t, tt.steps, res.Steps)
			assert.Equal(t, tt.exhausted, res.Exhausted)
		})
	}
}

func TestDecoder_Exhausted(t *testing.T) {
	t.Parallel()

	res := waf.Decoder{}.Decode(encodeTimes("<", 6))
	require.Len(t, res.Steps, waf.DefaultMaxDecodeIterations)
	assert.True(t, res.Exhausted)
	assert.Equal(t, encodeTimes("<", 1), res.Steps[4])

	res = waf.Decoder{MaxIterations: 2}.Decode(encodeTimes("<", 3))
	require.Len(t, res.Steps, 2)
	assert.True(t, res.Exhausted)

	res = waf.Decoder{MaxIterations: 2}.Decode(encodeTimes("<", 2))
	require.Len(t, res.Steps, 2)
	assert.False(t, res.Exhausted)
}
