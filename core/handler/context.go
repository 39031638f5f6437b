package handler

import (
	"context"
	"net/http"
	"time"
)

// Context is the request context handlers and middleware receive.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}

// BaseContext is the default Context. It delegates context.Context to the
// request's context.
type BaseContext struct {
	w      http.ResponseWriter
	r      *http.Request
	params map[string]string
}

// NewContext wraps a request. Path parameters come from r.PathValue.
func NewContext(w http.ResponseWriter, r *http.Request) *BaseContext {
	return &BaseContext{w: w, r: r}
}

// NewContextWithParams wraps a request with explicit path parameters, for
// routers that do not populate r.PathValue.
func NewContextWithParams(w http.ResponseWriter, r *http.Request, params map[string]string) *BaseContext {
	return &BaseContext{w: w, r: r, params: params}
}

func (c *BaseContext) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *BaseContext) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *BaseContext) Err() error                  { return c.r.Context().Err() }
func (c *BaseContext) Value(key any) any           { return c.r.Context().Value(key) }

// SetValue stores val in the request's context.
func (c *BaseContext) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

func (c *BaseContext) Request() *http.Request              { return c.r }
func (c *BaseContext) ResponseWriter() http.ResponseWriter { return c.w }

// Param returns a path parameter.
func (c *BaseContext) Param(key string) string {
	if v, ok := c.params[key]; ok {
		return v
	}
	return c.r.PathValue(key)
}
