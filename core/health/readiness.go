package health

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/logger"
	"github.com/noticket/waf/core/response"
)

// Check pings one dependency.
type Check = func(context.Context) error

// Readiness answers "READY" when every check passes and 503 otherwise.
func Readiness[C handler.Context](log *slog.Logger, checks map[string]Check) handler.HandlerFunc[C] {
	if log == nil {
		log = slog.Default()
	}
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	slices.Sort(names)

	return func(ctx C) handler.Response {
		if err := Run(ctx, names, checks); err != nil {
			log.ErrorContext(ctx, "readiness check failed", logger.Component("health"), logger.Error(err))
			return response.Error(response.ErrServiceUnavailable)
		}
		return response.String("READY")
	}
}

// Run executes checks in the given order and stops at the first failure.
// The returned error names the failing check.
func Run(ctx context.Context, names []string, checks map[string]Check) error {
	for _, name := range names {
		fn, ok := checks[name]
		if !ok || fn == nil {
			continue
		}
		if err := fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
