// Package health provides liveness and readiness handlers.
//
//	rt, _ := waf.Setup(ctx, cfg, log, nil)
//
//	mux.Handle("/health/live", handler.Std(health.Liveness[*handler.BaseContext]))
//	mux.Handle("/health/ready", handler.Std(health.Readiness[*handler.BaseContext](log, rt.Checks())))
//
// Readiness runs the named checks in name order. The first failure is
// logged with the check name and answers 503. Threat sinks being down never
// stops the WAF from blocking; readiness only reports it.
package health
