// Package router provides route and route-group value objects, the route
// registry, and the pipeline builder that mounts routes onto a framework
// adapter.
package router

import (
	"net/http"
	"strings"

	"github.com/appstack-io/appstack/core/types"
	"github.com/appstack-io/appstack/middleware"
)

// Method is an HTTP verb accepted by a route. All matches every verb.
type Method string

const (
	GET     Method = http.MethodGet
	POST    Method = http.MethodPost
	PUT     Method = http.MethodPut
	PATCH   Method = http.MethodPatch
	DELETE  Method = http.MethodDelete
	CONNECT Method = http.MethodConnect
	HEAD    Method = http.MethodHead
	OPTIONS Method = http.MethodOptions
	TRACE   Method = http.MethodTrace
	ALL     Method = "ALL"
)

// Result is the outcome of a business handler. A nil Content with Failed
// unset produces the default "OK" body.
type Result struct {
	Failed  bool
	Content any
}

// Handler is the business handler for a route. Input is the mapped request
// (nil when the route has no IO mapper).
type Handler func(c types.Context, input any) (*Result, error)

// IO maps between the raw request/response and the handler's input/output.
// ToResponse, when set, owns response shaping completely.
type IO struct {
	FromRequest func(c types.Context) (any, error)
	ToResponse  func(c types.Context, result *Result) error
}

// Options is the structured per-route option bag. Nil fields are simply not
// part of the pipeline. Extra carries forward-compatible custom keys.
type Options struct {
	Auth        *middleware.AuthOptions
	Validation  *middleware.ValidationOptions
	CORS        *middleware.CORSOptions
	RateLimit   *middleware.RateLimitOptions
	Throttle    *middleware.ThrottleOptions
	Security    map[string]any
	Session     map[string]any
	Compression map[string]any
	Cache       map[string]any
	Logging     map[string]any
	Audit       map[string]any
	Roles       []string
	Middlewares []types.MiddlewareFunc
	Extra       map[string]any
}

// MergeOptions overlays override on top of base, field by field; override
// wins on conflict. Both inputs are left untouched.
func MergeOptions(base, override *Options) *Options {
	if base == nil && override == nil {
		return nil
	}

	merged := &Options{}
	if base != nil {
		*merged = *base
	}
	if override == nil {
		return merged
	}

	if override.Auth != nil {
		merged.Auth = override.Auth
	}
	if override.Validation != nil {
		merged.Validation = override.Validation
	}
	if override.CORS != nil {
		merged.CORS = override.CORS
	}
	if override.RateLimit != nil {
		merged.RateLimit = override.RateLimit
	}
	if override.Throttle != nil {
		merged.Throttle = override.Throttle
	}
	if override.Security != nil {
		merged.Security = override.Security
	}
	if override.Session != nil {
		merged.Session = override.Session
	}
	if override.Compression != nil {
		merged.Compression = override.Compression
	}
	if override.Cache != nil {
		merged.Cache = override.Cache
	}
	if override.Logging != nil {
		merged.Logging = override.Logging
	}
	if override.Audit != nil {
		merged.Audit = override.Audit
	}
	if override.Roles != nil {
		merged.Roles = override.Roles
	}
	if override.Middlewares != nil {
		merged.Middlewares = override.Middlewares
	}
	if len(override.Extra) > 0 {
		extra := make(map[string]any, len(merged.Extra)+len(override.Extra))
		for k, v := range merged.Extra {
			extra[k] = v
		}
		for k, v := range override.Extra {
			extra[k] = v
		}
		merged.Extra = extra
	}

	return merged
}

// Route describes one or more HTTP endpoints sharing a handler and options.
// Routes are built once at startup and only read afterwards.
type Route struct {
	Methods []Method
	Paths   []string
	Handler Handler
	Options *Options
	IO      *IO
}

// NewRoute creates a route for a single method and path.
func NewRoute(method Method, path string, handler Handler) *Route {
	return &Route{
		Methods: []Method{method},
		Paths:   []string{path},
		Handler: handler,
	}
}

// WithOptions returns the route with its option bag set.
func (r *Route) WithOptions(opts *Options) *Route {
	r.Options = opts
	return r
}

// WithIO returns the route with its request/response mapper set.
func (r *Route) WithIO(io *IO) *Route {
	r.IO = io
	return r
}

// NormalizePath collapses repeated path separators.
func NormalizePath(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

// JoinPaths joins a prefix and a path and normalizes the result.
func JoinPaths(prefix, path string) string {
	return NormalizePath(prefix + "/" + path)
}
