// Package middleware provides HTTP middleware over handler.Context.
//
// All middleware follow one shape: a generic constructor with defaults, a
// WithConfig variant, a Skip hook and a Get helper for values stored in the
// context.
//
// # WAF
//
// WAF validates every query and form field with a waf.Engine. The policy
// chooses the mode per field; the first violation renders the 403 page.
//
//	policy, _ := waf.LoadPolicy("waf.yaml")
//	mw := middleware.WAF[*handler.BaseContext](engine, middleware.WAFConfig{Policy: policy})
//
//	http.Handle("/search", handler.Std(search,
//		middleware.RequestID[*handler.BaseContext](),
//		middleware.ClientIP[*handler.BaseContext](),
//		mw,
//	))
//
//	func search(ctx *handler.BaseContext) handler.Response {
//		in, _ := middleware.GetCleanInput(ctx)
//		q, _ := in.Get("q")
//		...
//	}
//
// Put RequestID and ClientIP before WAF so threat records carry the request
// id and the resolved client address. Without ClientIP, WAF resolves the
// address itself.
//
// # Penalty
//
// Penalty rejects clients a penalty.Box has banned. StrikeOnBlock feeds the
// box from WAFConfig.OnBlock:
//
//	box := penalty.New(penalty.Config{Threshold: 5, Window: 10 * time.Minute, BanFor: 15 * time.Minute})
//	middleware.Penalty[C](engine, box, middleware.PenaltyConfig{})
//	middleware.WAF[C](engine, middleware.WAFConfig{OnBlock: middleware.StrikeOnBlock(box, log)})
//
// # Client IP
//
// ClientIP resolves the address with pkg/clientip and stores it for
// GetClientIP. ValidateFunc can reject clients with a 403.
//
// # Request ID
//
// RequestID assigns a UUID per request and echoes it in X-Request-ID. With
// UseExisting, a client-supplied id is reused when it is at most 128
// characters of letters, digits, '.', '_' and '-'.
package middleware
