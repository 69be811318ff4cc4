package echoadapter

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/appstack-io/appstack/core/types"
)

// echoContext bridges echo.Context to types.Context.
type echoContext struct {
	ec echo.Context
}

func (c *echoContext) Request() *http.Request {
	return c.ec.Request()
}

func (c *echoContext) SetRequest(r *http.Request) {
	c.ec.SetRequest(r)
}

func (c *echoContext) Response() types.ResponseWriter {
	return &echoResponse{response: c.ec.Response()}
}

func (c *echoContext) RealIP() string {
	return c.ec.RealIP()
}

// Path returns the request URL path, not Echo's registered route pattern.
func (c *echoContext) Path() string {
	return c.ec.Request().URL.Path
}

func (c *echoContext) Param(name string) string {
	return c.ec.Param(name)
}

func (c *echoContext) QueryParam(name string) string {
	return c.ec.QueryParam(name)
}

func (c *echoContext) QueryParams() url.Values {
	return c.ec.QueryParams()
}

func (c *echoContext) Get(key string) any {
	return c.ec.Get(key)
}

func (c *echoContext) Set(key string, val any) {
	c.ec.Set(key, val)
}

func (c *echoContext) Bind(i any) error {
	return c.ec.Bind(i)
}

func (c *echoContext) String(code int, s string) error {
	return c.ec.String(code, s)
}

func (c *echoContext) JSON(code int, i any) error {
	return c.ec.JSON(code, i)
}

func (c *echoContext) NoContent(code int) error {
	return c.ec.NoContent(code)
}

// echoResponse adapts *echo.Response to types.ResponseWriter.
type echoResponse struct {
	response *echo.Response
}

func (r *echoResponse) Header() http.Header {
	return r.response.Header()
}

func (r *echoResponse) Write(b []byte) (int, error) {
	return r.response.Write(b)
}

func (r *echoResponse) WriteHeader(code int) {
	r.response.WriteHeader(code)
}

func (r *echoResponse) Status() int {
	return r.response.Status
}

func (r *echoResponse) Size() int64 {
	return r.response.Size
}

func (r *echoResponse) Written() bool {
	return r.response.Committed
}
