package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/response"
	"github.com/noticket/waf/middleware"
)

func TestClientIPStoresAddress(t *testing.T) {
	t.Parallel()

	var got string
	h := handler.Std(func(c ctx) handler.Response {
		ip, found := middleware.GetClientIP(c)
		require.True(t, found)
		got = ip
		return ok
	}, middleware.ClientIP[ctx]())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "198.51.100.7", got)
	assert.Empty(t, w.Header().Get("X-Client-IP"))
}

func TestClientIPHeader(t *testing.T) {
	t.Parallel()

	h := handler.Std(func(c ctx) handler.Response { return ok },
		middleware.ClientIPWithConfig[ctx](middleware.ClientIPConfig{StoreInHeader: true}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.5:80"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "192.0.2.5", w.Header().Get("X-Client-IP"))
}

func TestClientIPValidate(t *testing.T) {
	t.Parallel()

	called := false
	h := handler.Adapt(
		handler.Chain(func(c ctx) handler.Response {
			called = true
			return ok
		}, middleware.ClientIPWithConfig[ctx](middleware.ClientIPConfig{
			ValidateFunc: func(_ handler.Context, ip string) error {
				if ip == "192.0.2.66" {
					return errors.New("denylisted")
				}
				return nil
			},
		})),
		handler.NewContext,
		response.ErrorHandler[ctx],
	)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.66:80"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
