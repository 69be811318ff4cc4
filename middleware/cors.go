package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// Cors is the capability behind the CORS provider. Apply annotates the
// response headers per the options; it never blocks the request.
type Cors interface {
	Apply(c Context, opts *CORSOptions)
}

// CORSOptions contains per-route CORS options
type CORSOptions struct {
	// AllowOrigins is a list of origins that are allowed
	AllowOrigins []string
	// AllowMethods is a list of methods that are allowed
	AllowMethods []string
	// AllowHeaders is a list of headers that are allowed
	AllowHeaders []string
	// ExposeHeaders is a list of headers that are exposed to the client
	ExposeHeaders []string
	// AllowCredentials indicates whether the request can include credentials
	AllowCredentials bool
	// MaxAge indicates how long the results of a preflight request can be cached
	MaxAge int
}

// DefaultCORSOptions returns the default CORS options
func DefaultCORSOptions() *CORSOptions {
	return &CORSOptions{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowHeaders: []string{"*"},
	}
}

// CorsProvider turns declarative CORS options into a middleware. CORS never
// short-circuits: headers are applied and the chain always continues.
type CorsProvider struct {
	cors Cors
}

// NewCorsProvider creates a new CORS provider
func NewCorsProvider(cors Cors) *CorsProvider {
	return &CorsProvider{cors: cors}
}

// GetMiddleware returns a middleware that applies CORS headers and proceeds.
func (p *CorsProvider) GetMiddleware(opts *CORSOptions) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			p.cors.Apply(c, opts)
			return next(c)
		}
	}
}

// HeaderCors is the default Cors capability. It writes the standard
// Access-Control response headers from the options, echoing or whitelisting
// the request origin.
type HeaderCors struct{}

// NewHeaderCors creates the default header-writing CORS capability
func NewHeaderCors() *HeaderCors {
	return &HeaderCors{}
}

// Apply sets CORS response headers per the options.
func (h *HeaderCors) Apply(c Context, opts *CORSOptions) {
	if opts == nil {
		opts = DefaultCORSOptions()
	}

	req := c.Request()
	header := c.Response().Header()
	origin := req.Header.Get("Origin")

	allowOrigin := ""
	for _, o := range opts.AllowOrigins {
		if o == "*" || o == origin {
			allowOrigin = o
			break
		}
	}
	if len(opts.AllowOrigins) == 0 {
		allowOrigin = "*"
	}

	if allowOrigin != "" {
		header.Set("Access-Control-Allow-Origin", allowOrigin)
	}
	if opts.AllowCredentials {
		header.Set("Access-Control-Allow-Credentials", "true")
	}
	if len(opts.AllowMethods) > 0 {
		header.Set("Access-Control-Allow-Methods", strings.Join(opts.AllowMethods, ", "))
	}
	if len(opts.AllowHeaders) > 0 {
		allowHeaders := strings.Join(opts.AllowHeaders, ", ")
		if opts.AllowHeaders[0] == "*" {
			if requestHeaders := req.Header.Get("Access-Control-Request-Headers"); requestHeaders != "" {
				allowHeaders = requestHeaders
			}
		}
		header.Set("Access-Control-Allow-Headers", allowHeaders)
	}
	if len(opts.ExposeHeaders) > 0 {
		header.Set("Access-Control-Expose-Headers", strings.Join(opts.ExposeHeaders, ", "))
	}
	if opts.MaxAge > 0 {
		header.Set("Access-Control-Max-Age", strconv.Itoa(opts.MaxAge))
	}
}
