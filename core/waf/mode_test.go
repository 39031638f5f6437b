package waf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/waf"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, waf.ModeEmail, waf.ParseMode("email"))
	assert.Equal(t, waf.ModePassthrough, waf.ParseMode(" PassThrough "))
	assert.Equal(t, waf.ModeStrict, waf.ParseMode("nope"))
	assert.Equal(t, waf.ModeStrict, waf.ParseMode(""))

	var m waf.Mode
	assert.NoError(t, m.UnmarshalText([]byte("TEXT")))
	assert.Equal(t, waf.ModeText, m)
	assert.ErrorIs(t, m.UnmarshalText([]byte("txet")), waf.ErrUnknownMode)
	assert.Equal(t, waf.ModeText, m)

	assert.True(t, waf.ModePassword.Valid())
	assert.False(t, waf.Mode("admin").Valid())
	assert.Len(t, waf.Modes(), 5)
}

func TestLookupMode(t *testing.T) {
	t.Parallel()

	m, err := waf.LookupMode(" Email ")
	require.NoError(t, err)
	assert.Equal(t, waf.ModeEmail, m)

	_, err = waf.LookupMode("txet")
	assert.ErrorIs(t, err, waf.ErrUnknownMode)

	_, err = waf.LookupMode("")
	assert.ErrorIs(t, err, waf.ErrUnknownMode)
}

func TestAllowedByMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode  waf.Mode
		input string
		want  bool
	}{
		{waf.ModeStrict, "Ahmet Yılmaz 42", true},
		{waf.ModeStrict, "日本語 テキスト", true},
		{waf.ModeStrict, "tab\tand\nnewline", true},
		{waf.ModeStrict, "dash-ed", false},
		{waf.ModeStrict, "dot.", false},

		{waf.ModeEmail, "a.b_c+d%e-f@x.io", true},
		{waf.ModeEmail, "a b@x.io", false},
		{waf.ModeEmail, "a<b@x.io", false},
		{waf.ModeEmail, "a.b+c@d-e.com", true},
		{waf.ModeEmail, "a@@b", false},
		{waf.ModeEmail, "a@b@c", false},
		{waf.ModeEmail, "@example.com", false},
		{waf.ModeEmail, "user@", false},
		{waf.ModeEmail, "user", false},

		{waf.ModePassword, "Aa1!@#$%-_=+*?&", true},
		{waf.ModePassword, "pa ss", false},
		{waf.ModePassword, "pass^", false},
		{waf.ModePassword, "ğüş", false},

		{waf.ModeText, "Merhaba, dünya! Nasılsın? İyi-yim.", true},
		{waf.ModeText, "50%", false},
		{waf.ModeText, "a:b", false},

		{waf.ModePassthrough, "anything (goes) & 100% {ok} ~^", true},
		{waf.ModePassthrough, "<", false},
		{waf.ModePassthrough, ">", false},
		{waf.ModePassthrough, "'", false},
		{waf.ModePassthrough, `"`, false},
		{waf.ModePassthrough, "`", false},
		{waf.ModePassthrough, ";", false},
		{waf.ModePassthrough, "|", false},
		{waf.ModePassthrough, "\x00", false},

		{waf.Mode("unknown"), "abc", true},
		{waf.Mode("unknown"), "a!", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, waf.AllowedByMode(tt.input, tt.mode))
		})
	}
}

func TestWhitelist(t *testing.T) {
	t.Parallel()

	assert.Nil(t, waf.Whitelist(waf.ModePassthrough))
	assert.NotNil(t, waf.Whitelist(waf.ModeStrict))
	assert.Equal(t, waf.Whitelist(waf.ModeStrict), waf.Whitelist(waf.Mode("x")))
}
