package middleware

import (
	"log/slog"
	"mime"
	"net/url"
	"slices"

	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/logger"
	"github.com/noticket/waf/core/response"
	"github.com/noticket/waf/core/waf"
	"github.com/noticket/waf/pkg/clientip"
)

const defaultMaxMemory = 32 << 20

type cleanInputContextKey struct{}

// WAFConfig configures the WAF middleware.
type WAFConfig struct {
	Skip func(ctx handler.Context) bool
	// Policy maps field names to modes (default: waf.DefaultPolicy).
	Policy *waf.Policy
	// Sanitize HTML-encodes clean values instead of passing them through.
	Sanitize bool
	// Logger receives parse failures and a debug line per clean request
	// (default: slog.Default()).
	Logger *slog.Logger
	// MaxMemory bounds multipart parsing (default: 32MB).
	MaxMemory int64
	// OnBlock runs after a violation is recorded, before the blocked page
	// is rendered.
	OnBlock func(ctx handler.Context, inc *waf.Incident)
}

// WAF validates every query and form field of a request before the handler
// runs. Fields are checked in sorted order and the first violation renders
// response.Blocked. Field names are checked in passthrough mode.
//
// Clean input is available to the handler through GetCleanInput. Handlers
// that read r.Form directly see the raw values.
func WAF[C handler.Context](engine *waf.Engine, cfg WAFConfig) handler.Middleware[C] {
	if cfg.Policy == nil {
		cfg.Policy = waf.DefaultPolicy()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxMemory <= 0 {
		cfg.MaxMemory = defaultMaxMemory
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			ctx.SetValue(waf.RequestKey(), requestInfo(ctx))

			form, err := parseForm(ctx, cfg.MaxMemory)
			if err != nil {
				cfg.Logger.WarnContext(ctx, "form parse failed",
					logger.Component("waf"),
					logger.Error(err),
				)
				return response.Error(response.ErrBadRequest.WithError(err))
			}

			clean, err := validateForm(ctx, engine, cfg, form)
			if err != nil {
				if v, ok := waf.AsViolation(err); ok {
					if cfg.OnBlock != nil {
						cfg.OnBlock(ctx, v.Incident)
					}
					return response.Blocked(v.Incident)
				}
				return response.Error(err)
			}

			ctx.SetValue(cleanInputContextKey{}, clean)
			cfg.Logger.DebugContext(ctx, "request input accepted",
				logger.Component("waf"),
				logger.Count("fields", len(clean.Pairs())),
			)
			return next(ctx)
		}
	}
}

// GetCleanInput returns the validated fields stored by WAF as a map Value.
func GetCleanInput(ctx handler.Context) (waf.Value, bool) {
	v, ok := ctx.Value(cleanInputContextKey{}).(waf.Value)
	return v, ok
}

func requestInfo(ctx handler.Context) waf.RequestInfo {
	r := ctx.Request()
	ip, ok := GetClientIP(ctx)
	if !ok {
		ip = clientip.GetIP(r)
	}
	id, _ := GetRequestID(ctx)
	return waf.RequestInfo{
		ClientIP:  ip,
		UserAgent: r.UserAgent(),
		URI:       r.URL.RequestURI(),
		Method:    r.Method,
		RequestID: id,
	}
}

func parseForm(ctx handler.Context, maxMemory int64) (url.Values, error) {
	r := ctx.Request()
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.Form, nil
}

func validateForm(ctx handler.Context, engine *waf.Engine, cfg WAFConfig, form url.Values) (waf.Value, error) {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]waf.Pair, 0, len(keys))
	for _, key := range keys {
		if _, err := engine.Pass(ctx, waf.String(key), waf.ModePassthrough); err != nil {
			return waf.Value{}, err
		}

		raw := fieldValue(form[key])
		mode, checked := cfg.Policy.ModeFor(key)
		if !checked {
			pairs = append(pairs, waf.P(key, raw))
			continue
		}

		var (
			clean waf.Value
			err   error
		)
		if cfg.Sanitize {
			clean, err = engine.Sanitize(ctx, raw, mode)
		} else {
			clean, err = engine.Pass(ctx, raw, mode)
		}
		if err != nil {
			cfg.Logger.DebugContext(ctx, "field rejected",
				logger.Component("waf"),
				logger.Field(key),
				logger.Mode(string(mode)),
			)
			return waf.Value{}, err
		}
		pairs = append(pairs, waf.P(key, clean))
	}
	return waf.MapOf(pairs...), nil
}

func fieldValue(values []string) waf.Value {
	if len(values) == 1 {
		return waf.String(values[0])
	}
	return waf.Strings(values...)
}
