// Package proxy forwards requests that passed the WAF to an upstream.
//
//	rp := proxy.New(upstream, log)
//	h := handler.Adapt(
//		handler.Chain(proxy.Handler[*handler.BaseContext](rp),
//			middleware.RequestID[*handler.BaseContext](),
//			proxy.BufferBody[*handler.BaseContext](proxy.DefaultBodyLimit),
//			middleware.WAF[*handler.BaseContext](engine, cfg),
//		),
//		handler.NewContext, response.ErrorHandler[*handler.BaseContext],
//	)
//
// BufferBody must run before the WAF middleware: form parsing drains the
// request body, and Handler replays the buffered copy upstream.
package proxy
