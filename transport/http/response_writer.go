package http

import (
	"bufio"
	"net"
	"net/http"

	"github.com/appstack-io/appstack/core/types"
)

// responseWriter wraps http.ResponseWriter and tracks status, body size,
// and whether the header has gone out. The status defaults to 200 so
// handlers that only Write still report a sensible code.
type responseWriter struct {
	http.ResponseWriter
	status  int
	size    int64
	written bool
}

// NewResponseWriter wraps w in a state-tracking types.ResponseWriter.
func NewResponseWriter(w http.ResponseWriter) types.ResponseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *responseWriter) Status() int   { return w.status }
func (w *responseWriter) Size() int64   { return w.size }
func (w *responseWriter) Written() bool { return w.written }

// WriteHeader records the status and forwards it. Only the first call has
// any effect; later calls are silently dropped.
func (w *responseWriter) WriteHeader(code int) {
	if w.written {
		return
	}
	w.status = code
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

// Write emits the implicit 200 if no header has been sent yet and
// accumulates the bytes actually written.
func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// Flush forwards to the underlying writer when it supports streaming.
func (w *responseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack exposes the underlying connection for protocol upgrades.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}
