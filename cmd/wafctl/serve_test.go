package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/waf"
	"github.com/noticket/waf/pkg/penalty"
)

func TestParseUpstream(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"http://127.0.0.1:3000", false},
		{"https://app.internal/base", false},
		{"", true},
		{"127.0.0.1:3000", true},
		{"ftp://files.internal", true},
		{"http://", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			_, err := parseUpstream(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGateway(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "upstream "+r.URL.Path)
	}))
	defer upstream.Close()
	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	cfg := waf.EnvConfig{Metrics: true, MaxDecodeIterations: 5}
	rt, err := waf.Setup(context.Background(), cfg, log, reg)
	require.NoError(t, err)
	defer rt.Close()

	box := penalty.New(penalty.Config{Threshold: 2, Window: time.Minute, BanFor: time.Minute})
	h := newGateway(rt, target, 1<<20, box, log, metricsHandler(cfg, reg))
	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("live", func(t *testing.T) {
		w := get("/health/live")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ALIVE", w.Body.String())
	})

	t.Run("ready without sinks", func(t *testing.T) {
		assert.Equal(t, "READY", get("/health/ready").Body.String())
	})

	t.Run("clean request is forwarded", func(t *testing.T) {
		w := get("/rooms?q=deluxe")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "upstream /rooms", w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("attack is blocked and counted", func(t *testing.T) {
		w := get("/rooms?q=" + url.QueryEscape("1 UNION SELECT password FROM users"))
		assert.Equal(t, http.StatusForbidden, w.Code)

		m := get("/metrics")
		assert.Equal(t, http.StatusOK, m.Code)
		assert.True(t, strings.Contains(m.Body.String(), "waf_"))
	})

	t.Run("repeat offender is banned", func(t *testing.T) {
		w := get("/rooms?q=" + url.QueryEscape("<script>x</script>"))
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = get("/rooms?q=deluxe")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})
}

func TestMetricsHandlerDisabled(t *testing.T) {
	t.Parallel()
	assert.Nil(t, metricsHandler(waf.EnvConfig{}, prometheus.NewRegistry()))
}
