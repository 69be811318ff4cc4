// Package types provides core type definitions for the appstack toolkit
package types

import (
	"net/http"
	"net/url"
)

// Context represents the context of the current HTTP request.
// It provides methods to access request and response data.
type Context interface {
	// Request returns the underlying HTTP request
	Request() *http.Request

	// SetRequest sets the HTTP request
	SetRequest(r *http.Request)

	// Response returns the response writer
	Response() ResponseWriter

	// RealIP returns the client's real IP address
	RealIP() string

	// Path returns the request path
	Path() string

	// Param returns path parameter by name
	Param(name string) string

	// QueryParam returns query parameter by name
	QueryParam(name string) string

	// QueryParams returns all query parameters
	QueryParams() url.Values

	// Get retrieves data from the context
	Get(key string) any

	// Set saves data in the context
	Set(key string, val any)

	// Bind binds the request body to an interface
	Bind(i any) error

	// String sends an HTTP response with string
	String(code int, s string) error

	// JSON sends an HTTP response with JSON
	JSON(code int, i any) error

	// NoContent sends a response with no body
	NoContent(code int) error
}

// ResponseWriter wraps http.ResponseWriter
type ResponseWriter interface {
	http.ResponseWriter

	// Status returns the status code
	Status() int

	// Size returns the size of response
	Size() int64

	// Written returns whether response was written
	Written() bool
}

// HandlerFunc defines a function to serve HTTP requests
type HandlerFunc func(c Context) error

// MiddlewareFunc defines the middleware function type
type MiddlewareFunc func(next HandlerFunc) HandlerFunc
