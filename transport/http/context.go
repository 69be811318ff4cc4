// Package http provides a plain net/http backed implementation of the
// toolkit's request Context.
package http

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/appstack-io/appstack/core/types"
)

// httpContext implements types.Context over a standard request/response pair.
type httpContext struct {
	request  *http.Request
	response types.ResponseWriter
	params   map[string]string
	values   map[string]any
}

// NewContext creates a new HTTP context
func NewContext(w http.ResponseWriter, r *http.Request) types.Context {
	return &httpContext{
		request:  r,
		response: NewResponseWriter(w),
		params:   make(map[string]string),
		values:   make(map[string]any),
	}
}

// Request returns the underlying HTTP request
func (c *httpContext) Request() *http.Request {
	return c.request
}

// SetRequest sets the HTTP request
func (c *httpContext) SetRequest(r *http.Request) {
	c.request = r
}

// Response returns the response writer
func (c *httpContext) Response() types.ResponseWriter {
	return c.response
}

// RealIP returns the client's real IP address
func (c *httpContext) RealIP() string {
	if ip := c.request.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := c.request.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(c.request.RemoteAddr)
	if err != nil {
		return c.request.RemoteAddr
	}
	return host
}

// Path returns the request path
func (c *httpContext) Path() string {
	return c.request.URL.Path
}

// Param returns path parameter by name
func (c *httpContext) Param(name string) string {
	return c.params[name]
}

// SetParam sets a path parameter
func (c *httpContext) SetParam(name, value string) {
	c.params[name] = value
}

// QueryParam returns query parameter by name
func (c *httpContext) QueryParam(name string) string {
	return c.request.URL.Query().Get(name)
}

// QueryParams returns all query parameters
func (c *httpContext) QueryParams() url.Values {
	return c.request.URL.Query()
}

// Get retrieves data from context
func (c *httpContext) Get(key string) any {
	return c.values[key]
}

// Set saves data in context
func (c *httpContext) Set(key string, val any) {
	c.values[key] = val
}

// Bind binds the request body to the given interface
func (c *httpContext) Bind(i any) error {
	contentType := c.request.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		return c.bindForm(i)
	default:
		// Default to JSON
		return c.bindJSON(i)
	}
}

// bindJSON binds JSON request body
func (c *httpContext) bindJSON(i any) error {
	body, err := io.ReadAll(c.request.Body)
	if err != nil {
		return err
	}
	defer c.request.Body.Close()

	if len(body) == 0 {
		return nil
	}

	return json.Unmarshal(body, i)
}

// bindForm binds form data
func (c *httpContext) bindForm(i any) error {
	if err := c.request.ParseForm(); err != nil {
		return err
	}

	formData := make(map[string]string)
	for key, values := range c.request.Form {
		if len(values) > 0 {
			formData[key] = values[0]
		}
	}

	// Round-trip through JSON to honor the target's field tags
	jsonData, err := json.Marshal(formData)
	if err != nil {
		return err
	}

	return json.Unmarshal(jsonData, i)
}

// JSON sends a JSON response with status code
func (c *httpContext) JSON(code int, i any) error {
	c.response.Header().Set("Content-Type", "application/json")
	c.response.WriteHeader(code)

	encoder := json.NewEncoder(c.response)
	return encoder.Encode(i)
}

// String sends a string response with status code
func (c *httpContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)

	_, err := c.response.Write([]byte(s))
	return err
}

// NoContent sends a response with no body
func (c *httpContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}
