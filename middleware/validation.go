package middleware

import (
	"net/http"
)

// ValidationResult is the outcome of validating a request against a route's
// validation options.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Message string            `json:"message,omitempty"`
	Code    int               `json:"code,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Validation is the capability behind the validation provider.
type Validation interface {
	Validate(c Context, opts *ValidationOptions) *ValidationResult
}

// ValidationOptions contains per-route validation options
type ValidationOptions struct {
	// Model is a prototype of the struct the request body must bind to.
	// A fresh instance is allocated per request.
	Model any
	// Code overrides the HTTP status used for rejections; defaults to 400
	Code int
}

// ValidationProvider turns declarative validation options into a middleware
// backed by a Validation capability.
type ValidationProvider struct {
	validation Validation
}

// NewValidationProvider creates a new validation provider
func NewValidationProvider(validation Validation) *ValidationProvider {
	return &ValidationProvider{validation: validation}
}

// GetMiddleware returns a middleware that rejects invalid requests with the
// result's code (400 when unset) and a body carrying message and errors.
func (p *ValidationProvider) GetMiddleware(opts *ValidationOptions) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			result := p.validation.Validate(c, opts)
			if result == nil || result.Valid {
				return next(c)
			}

			code := result.Code
			if code == 0 {
				code = http.StatusBadRequest
			}
			return c.JSON(code, result)
		}
	}
}
