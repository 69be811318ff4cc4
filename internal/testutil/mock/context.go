// Package mock provides test doubles for the toolkit's request context.
package mock

import (
	"net/http"
	"net/http/httptest"
	"sync"

	httpctx "github.com/appstack-io/appstack/transport/http"

	"github.com/appstack-io/appstack/core/types"
)

// Context is a mock implementation of types.Context for testing. Responses
// are captured in an httptest recorder.
type Context struct {
	types.Context
	request  *http.Request
	recorder *httptest.ResponseRecorder
	params   map[string]string
	mu       sync.RWMutex
}

// NewContext creates a new mock context around a GET / request
func NewContext() *Context {
	return NewContextWithRequest(httptest.NewRequest(http.MethodGet, "/", nil))
}

// NewContextWithRequest creates a new mock context with a specific request
func NewContextWithRequest(req *http.Request) *Context {
	rec := httptest.NewRecorder()

	return &Context{
		Context:  httpctx.NewContext(rec, req),
		request:  req,
		recorder: rec,
		params:   make(map[string]string),
	}
}

// SetParam sets a path parameter
func (c *Context) SetParam(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params[name] = value
}

// Param returns a path parameter set via SetParam
func (c *Context) Param(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params[name]
}

// Recorder returns the response recorder
func (c *Context) Recorder() *httptest.ResponseRecorder {
	return c.recorder
}
