package response

import (
	"errors"
	"net/http"

	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/validator"
	"github.com/noticket/waf/core/waf"
)

type statusCode interface {
	StatusCode() int
}

func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]any, len(verrs))
		for _, e := range verrs {
			fields[e.Field] = e.Message
		}
		return ErrUnprocessableEntity.WithDetails(fields)
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = ErrInternalServerError
	}
	return base.WithError(err)
}

// ErrorHandler renders errors as plain text. A *waf.Violation renders the
// blocked page.
func ErrorHandler[C handler.Context](ctx C, err error) {
	if v, ok := waf.AsViolation(err); ok {
		Render(ctx, Blocked(v.Incident))
		return
	}
	httpErr := convertToHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler renders errors as JSON. A *waf.Violation renders the
// blocked JSON body regardless of the Accept header.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	if v, ok := waf.AsViolation(err); ok {
		r := ctx.Request().Clone(ctx.Request().Context())
		r.Header.Set("Accept", "application/json")
		if rerr := Blocked(v.Incident)(ctx.ResponseWriter(), r); rerr != nil {
			http.Error(ctx.ResponseWriter(), rerr.Error(), http.StatusInternalServerError)
		}
		return
	}
	httpErr := convertToHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}
