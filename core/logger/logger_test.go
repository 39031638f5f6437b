package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/logger"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithProduction("booking"),
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("region", "ist")),
	)
	log.Info("request blocked", logger.IncidentID("ABCDEF123456"), logger.Threat("Encoded attack detected"))
	log.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request blocked", entry["msg"])
	assert.Equal(t, "booking", entry["service"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "ist", entry["region"])
	assert.Equal(t, "ABCDEF123456", entry["incident_id"])
	assert.Equal(t, "Encoded attack detected", entry["threat"])
}

func TestNew_DevelopmentLogsDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithDevelopment("wafctl"), logger.WithOutput(&buf))
	log.Debug("decoded", logger.Mode("strict"))

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "mode=strict")
	assert.Contains(t, buf.String(), "env=development")
}

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithLevel(slog.LevelWarn), logger.WithOutput(&buf))
	log.Info("quiet")
	assert.Empty(t, buf.String())
	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

type ctxKey struct{}

func TestNew_ContextValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithJSONFormatter(),
		logger.WithOutput(&buf),
		logger.WithContextValue("request_id", ctxKey{}),
	).With(logger.Component("waf"))

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-42")
	log.InfoContext(ctx, "hit")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "waf", entry["component"])

	buf.Reset()
	log.InfoContext(context.Background(), "miss")
	entry = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "request_id")
}
