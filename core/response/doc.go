// Package response builds handler.Response values: plain text, HTML, JSON,
// buffered templates and the 403 page shown when the WAF blocks a request.
//
// # Blocked requests
//
// Blocked renders a fixed page for an incident:
//
//	clean, err := engine.Pass(ctx, waf.String(q), waf.ModeStrict)
//	if v, ok := waf.AsViolation(err); ok {
//		return response.Blocked(v.Incident)
//	}
//
// The response always has status 403 and the headers X-WAF-Blocked: true and
// X-WAF-Reason (the threat, at most 100 bytes). Clients sending
// Accept: application/json receive a BlockedBody; everyone else gets the
// HTML page. Every value on the page is HTML-encoded and the client IP is
// masked.
//
// # Errors
//
// Handlers may return Error(err) and let the error handler decide.
// ErrorHandler and JSONErrorHandler map errors to responses:
//
//   - *waf.Violation renders Blocked
//   - HTTPError renders its own status and body
//   - validator.ValidationErrors renders 422 with one detail per field
//   - errors with a StatusCode() int method use that status
//   - anything else is a 500
package response
