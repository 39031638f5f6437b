package handler

import "net/http"

// Response renders an HTTP response: headers, status code and body.
// A returned error is passed to the ErrorHandler.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc is a request handler bound to a context type.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler handles errors returned while rendering a Response.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware wraps a handler.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]

// Chain wraps h with mws. The first middleware is the outermost one.
func Chain[C Context](h HandlerFunc[C], mws ...Middleware[C]) HandlerFunc[C] {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// Adapt exposes h as an http.Handler. newCtx builds the context for each
// request; onErr receives render errors and may be nil, in which case a
// plain 500 is written.
func Adapt[C Context](h HandlerFunc[C], newCtx func(http.ResponseWriter, *http.Request) C, onErr ErrorHandler[C]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := newCtx(w, r)
		resp := h(ctx)
		if resp == nil {
			return
		}
		if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
			if onErr != nil {
				onErr(ctx, err)
				return
			}
			http.Error(ctx.ResponseWriter(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})
}

// Std adapts a handler using the default Context.
func Std(h HandlerFunc[*BaseContext], mws ...Middleware[*BaseContext]) http.Handler {
	return Adapt(Chain(h, mws...), NewContext, nil)
}
