package proxy_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/proxy"
	"github.com/noticket/waf/core/response"
	"github.com/noticket/waf/core/waf"
	"github.com/noticket/waf/middleware"
)

type ctx = *handler.BaseContext

type echoed struct {
	Method    string `json:"method"`
	Query     string `json:"query"`
	Body      string `json:"body"`
	RequestID string `json:"request_id"`
	Forwarded string `json:"forwarded"`
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newUpstream(t *testing.T) *url.URL {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(echoed{
			Method:    r.Method,
			Query:     r.URL.RawQuery,
			Body:      string(body),
			RequestID: r.Header.Get("X-Request-ID"),
			Forwarded: r.Header.Get("X-Forwarded-For"),
		})
	}))
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u
}

func gateway(upstream *url.URL, limit int64) http.Handler {
	engine := waf.New(waf.Config{DisableLogging: true, Logger: discard()})
	return handler.Adapt(
		handler.Chain(proxy.Handler[ctx](proxy.New(upstream, discard())),
			middleware.RequestIDWithConfig[ctx](middleware.RequestIDConfig{Generator: func() string { return "req-1" }}),
			proxy.BufferBody[ctx](limit),
			middleware.WAF[ctx](engine, middleware.WAFConfig{Logger: discard()}),
		),
		handler.NewContext, response.ErrorHandler[ctx],
	)
}

func TestProxyForwardsCleanRequests(t *testing.T) {
	t.Parallel()

	h := gateway(newUpstream(t), 0)
	r := httptest.NewRequest(http.MethodPost, "/book?room=12", strings.NewReader("name=Ada+Lovelace"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var got echoed
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "room=12", got.Query)
	assert.Equal(t, "name=Ada+Lovelace", got.Body)
	assert.Equal(t, "req-1", got.RequestID)
	assert.NotEmpty(t, got.Forwarded)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
}

func TestProxyBlocksAttacks(t *testing.T) {
	t.Parallel()

	h := gateway(newUpstream(t), 0)
	r := httptest.NewRequest(http.MethodPost, "/book", strings.NewReader("name=%3Cscript%3Ealert(1)%3C/script%3E"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "true", w.Header().Get(response.HeaderBlocked))
}

func TestBufferBodyLimit(t *testing.T) {
	t.Parallel()

	h := gateway(newUpstream(t), 8)
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=abcdefghij"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestProxyUpstreamDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	srv.Close()

	w := httptest.NewRecorder()
	gateway(u, 0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
