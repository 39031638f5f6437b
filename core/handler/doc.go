// Package handler defines the request handling contracts shared by the
// middleware and response packages.
//
// A handler returns a Response instead of writing directly, so middleware
// can short-circuit a request by returning its own Response:
//
//	type Response func(w http.ResponseWriter, r *http.Request) error
//	type HandlerFunc[C Context] func(ctx C) Response
//	type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
//
// BaseContext is the default Context. Std turns a handler plus middleware
// into an http.Handler for use with net/http:
//
//	mux := http.NewServeMux()
//	mux.Handle("POST /book", handler.Std(bookTrip,
//		middleware.RequestID[*handler.BaseContext](),
//		middleware.WAF[*handler.BaseContext](engine, middleware.WAFConfig{Policy: policy}),
//	))
//
// Custom context types plug in through Adapt.
package handler
