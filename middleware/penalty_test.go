package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/response"
	"github.com/noticket/waf/middleware"
	"github.com/noticket/waf/pkg/penalty"
)

func TestPenalty(t *testing.T) {
	t.Parallel()

	engine, rec := newEngine()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	box := penalty.New(
		penalty.Config{Threshold: 2, Window: time.Minute, BanFor: 5 * time.Minute},
		penalty.WithClock(func() time.Time { return now }),
	)

	h := handler.Adapt(
		handler.Chain(func(ctx) handler.Response { return response.String("ok") },
			middleware.ClientIP[ctx](),
			middleware.Penalty[ctx](engine, box, middleware.PenaltyConfig{Logger: log, Now: func() time.Time { return now }}),
			middleware.WAF[ctx](engine, middleware.WAFConfig{Logger: log, OnBlock: middleware.StrikeOnBlock(box, log)}),
		),
		handler.NewContext, response.ErrorHandler[ctx],
	)
	send := func(ip, q string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/?q="+url.QueryEscape(q), nil)
		r.RemoteAddr = ip + ":4000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	attack := "<script>alert(1)</script>"
	assert.Equal(t, http.StatusOK, send("203.0.113.9", "hello").Code)
	assert.Equal(t, http.StatusForbidden, send("203.0.113.9", attack).Code)
	assert.Equal(t, http.StatusOK, send("203.0.113.9", "hello").Code, "one strike is not a ban")
	assert.Equal(t, http.StatusForbidden, send("203.0.113.9", attack).Code)

	w := send("203.0.113.9", "hello")
	require.Equal(t, http.StatusForbidden, w.Code, "clean requests are rejected while banned")
	assert.Equal(t, "300", w.Header().Get("Retry-After"))
	assert.Equal(t, "true", w.Header().Get(response.HeaderBlocked))

	records := rec.all()
	require.Len(t, records, 3)
	assert.Equal(t, middleware.ThreatBanned, records[2].Threat)
	assert.Equal(t, "203.0.113.9", records[2].IP)

	assert.Equal(t, http.StatusOK, send("198.51.100.4", "hello").Code, "other clients pass")
}

func TestPenaltyDisabledBox(t *testing.T) {
	t.Parallel()

	engine, rec := newEngine()
	box := penalty.New(penalty.Config{})
	h := handler.Std(func(ctx) handler.Response { return response.String("ok") },
		middleware.Penalty[ctx](engine, box, middleware.PenaltyConfig{}),
	)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, rec.all())
}
