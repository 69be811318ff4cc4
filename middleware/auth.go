package middleware

import (
	"net/http"
)

// Authenticator is the capability behind the auth provider. Implementations
// decide whether the request carries valid credentials for the given options.
type Authenticator interface {
	Authenticate(c Context, opts *AuthOptions) bool
}

// AuthOptions contains per-route authentication options
type AuthOptions struct {
	// Scheme is the expected credential scheme (e.g. "bearer")
	Scheme string
	// Roles restricts access to the listed roles when non-empty
	Roles []string
	// SkipPaths is a list of paths to skip authentication
	SkipPaths []string
}

// AuthProvider turns declarative auth options into a middleware backed by an
// Authenticator capability. It holds no per-request state and is safe to
// reuse across routes.
type AuthProvider struct {
	auth Authenticator
}

// NewAuthProvider creates a new auth provider
func NewAuthProvider(auth Authenticator) *AuthProvider {
	return &AuthProvider{auth: auth}
}

// GetMiddleware returns a middleware that rejects unauthenticated requests
// with 401 and never invokes the rest of the chain for them. Paths listed in
// SkipPaths bypass authentication entirely.
func (p *AuthProvider) GetMiddleware(opts *AuthOptions) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			if opts != nil {
				for _, path := range opts.SkipPaths {
					if c.Path() == path {
						return next(c)
					}
				}
			}
			if !p.auth.Authenticate(c, opts) {
				return c.String(http.StatusUnauthorized, "Unauthorized")
			}
			return next(c)
		}
	}
}
