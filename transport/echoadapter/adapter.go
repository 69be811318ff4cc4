// Package echoadapter mounts appstack routes onto an Echo instance.
package echoadapter

import (
	"github.com/labstack/echo/v4"

	"github.com/appstack-io/appstack/core/types"
)

// Adapter adapts *echo.Echo to the router's framework interface. Echo owns
// path parameter matching; the adapter only translates contexts and handler
// signatures.
type Adapter struct {
	echo *echo.Echo
}

// New creates an adapter over the given Echo instance
func New(e *echo.Echo) *Adapter {
	return &Adapter{echo: e}
}

// Echo returns the underlying Echo instance
func (a *Adapter) Echo() *echo.Echo {
	return a.echo
}

// GET registers a GET route
func (a *Adapter) GET(path string, h types.HandlerFunc, m ...types.MiddlewareFunc) {
	a.echo.GET(path, wrap(h, m...))
}

// POST registers a POST route
func (a *Adapter) POST(path string, h types.HandlerFunc, m ...types.MiddlewareFunc) {
	a.echo.POST(path, wrap(h, m...))
}

// PUT registers a PUT route
func (a *Adapter) PUT(path string, h types.HandlerFunc, m ...types.MiddlewareFunc) {
	a.echo.PUT(path, wrap(h, m...))
}

// PATCH registers a PATCH route
func (a *Adapter) PATCH(path string, h types.HandlerFunc, m ...types.MiddlewareFunc) {
	a.echo.PATCH(path, wrap(h, m...))
}

// DELETE registers a DELETE route
func (a *Adapter) DELETE(path string, h types.HandlerFunc, m ...types.MiddlewareFunc) {
	a.echo.DELETE(path, wrap(h, m...))
}

// HEAD registers a HEAD route
func (a *Adapter) HEAD(path string, h types.HandlerFunc, m ...types.MiddlewareFunc) {
	a.echo.HEAD(path, wrap(h, m...))
}

// OPTIONS registers an OPTIONS route
func (a *Adapter) OPTIONS(path string, h types.HandlerFunc, m ...types.MiddlewareFunc) {
	a.echo.OPTIONS(path, wrap(h, m...))
}

// CONNECT registers a CONNECT route
func (a *Adapter) CONNECT(path string, h types.HandlerFunc, m ...types.MiddlewareFunc) {
	a.echo.CONNECT(path, wrap(h, m...))
}

// TRACE registers a TRACE route
func (a *Adapter) TRACE(path string, h types.HandlerFunc, m ...types.MiddlewareFunc) {
	a.echo.TRACE(path, wrap(h, m...))
}

// Any registers a route for all methods
func (a *Adapter) Any(path string, h types.HandlerFunc, m ...types.MiddlewareFunc) {
	a.echo.Any(path, wrap(h, m...))
}

// wrap composes the middleware pipeline around the handler, first middleware
// outermost, and converts the result into an echo handler.
func wrap(h types.HandlerFunc, m ...types.MiddlewareFunc) echo.HandlerFunc {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return func(ec echo.Context) error {
		return h(&echoContext{ec: ec})
	}
}
