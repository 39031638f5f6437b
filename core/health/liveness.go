package health

import (
	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/response"
)

// Liveness answers "ALIVE" while the process runs. No dependency checks.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}
