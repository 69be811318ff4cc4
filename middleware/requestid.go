package middleware

import (
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request ID
const RequestIDHeader = "X-Request-ID"

// RequestIDConfig defines the config for RequestID middleware.
type RequestIDConfig struct {
	// Generator defines a function to generate an ID.
	// Optional. Defaults to UUID v4.
	Generator func() string

	// TargetHeader defines the header name to look for existing request ID.
	// Optional. Defaults to X-Request-ID
	TargetHeader string
}

// generateRequestID generates a new request ID using UUID v4
func generateRequestID() string {
	return uuid.New().String()
}

// RequestID returns a middleware that generates a unique request ID for each
// request, reusing an incoming one when present, and exposes it through both
// the context and the response header.
func RequestID() MiddlewareFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig returns a RequestID middleware with config.
func RequestIDWithConfig(config RequestIDConfig) MiddlewareFunc {
	// Defaults
	if config.Generator == nil {
		config.Generator = generateRequestID
	}
	if config.TargetHeader == "" {
		config.TargetHeader = RequestIDHeader
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			rid := c.Request().Header.Get(config.TargetHeader)
			if rid == "" {
				rid = config.Generator()
			}

			c.Set("request_id", rid)
			c.Response().Header().Set(config.TargetHeader, rid)

			return next(c)
		}
	}
}
