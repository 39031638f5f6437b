// Package waf validates untrusted request input before it reaches
// application code. Every scalar goes through the same pipeline: an
// always-blocked pattern scan, a bounded decode-and-rescan loop, and the
// character whitelist of the field's validation mode. Values that pass are
// returned either HTML-encoded (Sanitize) or untouched (Pass).
//
// # Modes
//
// A Mode declares what a field may contain:
//
//   - strict: Unicode letters, digits, whitespace
//   - email: ASCII alphanumerics and @ . _ + % -
//   - password: ASCII alphanumerics and ! @ # $ % - _ = + * ? &
//   - text: letters, digits, whitespace and . , ! ? -
//   - passthrough: anything except < > ' " ` ; | and NUL
//
// The whitelist is checked against the raw value. Decoding exists only to
// catch encoded attacks, so "%3Cb%3E" is accepted in passthrough mode while
// "%3Cscript%3E" is not.
//
// # Usage
//
//	engine := waf.New(waf.Config{
//		Sink:   threatlog.NewFileSink("logs/waf_threats.log"),
//		Logger: logger.New(logger.WithProduction("booking")),
//	})
//
//	ctx = waf.WithRequest(ctx, waf.RequestInfo{ClientIP: ip, Method: r.Method, URI: r.RequestURI})
//
//	name, err := engine.SanitizeString(ctx, r.FormValue("name"), waf.ModeStrict)
//	if v, ok := waf.AsViolation(err); ok {
//		return response.Blocked(v.Incident)
//	}
//
// Composite input is expressed as a Value tree and validated in one call;
// the first violating leaf aborts the whole call:
//
//	clean, err := engine.Pass(ctx, waf.FromAny(r.Form), waf.ModeText)
//
// # Blocking
//
// Every rejection mints an Incident with a 12 character id, writes one
// threatlog.Record to the configured sink and logs a WARN line. Sink
// failures are logged and never change the decision. Callers that reject
// input for their own reasons use Engine.Block to get the same treatment.
//
// # Errors
//
// Sanitize and Pass return a *Violation. Match the kind with errors.Is:
//
//	errors.Is(err, waf.ErrDirectPattern)
//	errors.Is(err, waf.ErrEncodedPattern)
//	errors.Is(err, waf.ErrWhitelist)
//	errors.Is(err, waf.ErrInvalidObject)
package waf
