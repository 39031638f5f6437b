package proxy

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/logger"
	"github.com/noticket/waf/core/response"
	"github.com/noticket/waf/middleware"
)

// DefaultBodyLimit is the largest body BufferBody accepts.
const DefaultBodyLimit = 10 << 20

const requestIDHeader = "X-Request-ID"

type bodyContextKey struct{}

// New returns a reverse proxy to upstream that sets X-Forwarded-* headers.
// Upstream failures answer 502 and are logged.
func New(upstream *url.URL, log *slog.Logger) *httputil.ReverseProxy {
	if log == nil {
		log = slog.Default()
	}
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.ErrorContext(r.Context(), "upstream request failed",
				logger.Component("proxy"),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Error(err),
			)
			http.Error(w, response.ErrBadGateway.Message, response.ErrBadGateway.Status)
		},
	}
}

// BufferBody reads the request body into memory so it can be validated and
// still forwarded. Bodies over limit answer 413.
func BufferBody[C handler.Context](limit int64) handler.Middleware[C] {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			r := ctx.Request()
			if r.Body == nil || r.Body == http.NoBody {
				return next(ctx)
			}

			data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
			_ = r.Body.Close()
			if err != nil {
				return response.Error(response.ErrBadRequest.WithError(err))
			}
			if int64(len(data)) > limit {
				return response.Error(response.ErrRequestEntityTooLarge)
			}

			ctx.SetValue(bodyContextKey{}, data)
			ctx.Request().Body = io.NopCloser(bytes.NewReader(data))
			return next(ctx)
		}
	}
}

// Handler forwards the request to next, restoring a body buffered by
// BufferBody and passing the request id upstream.
func Handler[C handler.Context](next http.Handler) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		data, buffered := ctx.Value(bodyContextKey{}).([]byte)
		id, hasID := middleware.GetRequestID(ctx)

		return func(w http.ResponseWriter, r *http.Request) error {
			if buffered {
				r.Body = io.NopCloser(bytes.NewReader(data))
				r.ContentLength = int64(len(data))
				r.GetBody = func() (io.ReadCloser, error) {
					return io.NopCloser(bytes.NewReader(data)), nil
				}
			}
			if hasID {
				r.Header.Set(requestIDHeader, id)
			}
			next.ServeHTTP(w, r)
			return nil
		}
	}
}
