package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/logger"
	"github.com/noticket/waf/core/response"
	"github.com/noticket/waf/core/waf"
	"github.com/noticket/waf/pkg/penalty"
)

// ThreatBanned is the threat recorded for requests from a banned client.
const ThreatBanned = "Client temporarily banned after repeated violations"

// PenaltyConfig configures the Penalty middleware.
type PenaltyConfig struct {
	Skip   func(ctx handler.Context) bool
	Logger *slog.Logger
	// Now is the clock used for Retry-After (default: time.Now).
	Now func() time.Time
}

// Penalty rejects clients that box has banned. Each rejection is recorded
// through engine.Block and answers 403 with Retry-After. Feed the box with
// StrikeOnBlock on the WAF middleware.
func Penalty[C handler.Context](engine *waf.Engine, box *penalty.Box, cfg PenaltyConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if !box.Enabled() || (cfg.Skip != nil && cfg.Skip(ctx)) {
				return next(ctx)
			}

			info := requestInfo(ctx)
			banned, until := box.Banned(info.ClientIP)
			if !banned {
				return next(ctx)
			}

			ctx.SetValue(waf.RequestKey(), info)
			inc := engine.Block(ctx, ThreatBanned, waf.String(info.ClientIP))
			retry := max(int(until.Sub(cfg.Now()).Round(time.Second)/time.Second), 1)

			return func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				return response.Blocked(inc)(w, r)
			}
		}
	}
}

// StrikeOnBlock returns a WAFConfig.OnBlock hook that counts every block
// against the client IP and logs when it leads to a ban.
func StrikeOnBlock(box *penalty.Box, log *slog.Logger) func(handler.Context, *waf.Incident) {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx handler.Context, inc *waf.Incident) {
		if inc == nil {
			return
		}
		ip := inc.Request.ClientIP
		if banned, until := box.Strike(ip); banned {
			log.WarnContext(ctx, "client banned",
				logger.Component("penalty"),
				logger.ClientIP(ip),
				logger.IncidentID(inc.ID),
				slog.Time("until", until),
			)
		}
	}
}
