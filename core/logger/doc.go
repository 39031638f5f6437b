// Package logger builds slog loggers and provides attribute helpers with
// consistent key names across the WAF, its threat sinks and the HTTP layer.
//
// Loggers are created with functional options:
//
//	log := logger.New(
//		logger.WithProduction("noticket"),
//		logger.WithOutput(os.Stderr),
//	)
//
//	log.Warn("request blocked",
//		logger.IncidentID(inc.ID),
//		logger.Threat(inc.Threat),
//		logger.ClientIP(inc.Request.ClientIP),
//	)
//
// Attribute helpers return an empty slog.Attr for absent values (nil errors,
// empty ids), which slog drops, so call sites need no nil checks.
//
// Request-scoped values can be injected automatically:
//
//	log := logger.New(logger.WithContextValue("request_id", requestIDKey{}))
//	log.InfoContext(ctx, "processing")
package logger
