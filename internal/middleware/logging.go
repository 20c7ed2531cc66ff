// Package middleware contains HTTP middleware functions.
//
// WHAT IS MIDDLEWARE?
// Middleware is a function that wraps an HTTP handler to add cross-cutting behaviour
// (logging, request ids, panic recovery) without modifying the handler itself.
//
// The pattern is:
//
//	func MyMiddleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // Do something BEFORE the handler runs
//	        next.ServeHTTP(w, r)  // Call the actual handler
//	        // Do something AFTER the handler runs
//	    })
//	}
package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
// Go's http.ResponseWriter doesn't expose the status code after WriteHeader is called,
// so we wrap it to track it ourselves.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

// WriteHeader captures the status code before delegating to the embedded ResponseWriter.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures bytes written and delegates to the embedded ResponseWriter.
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logger returns an HTTP middleware that logs each completed request with zap.
//
// Each log line includes: method, path, status, duration, bytes and the
// request id set by chi's RequestID middleware (empty if that is not
// mounted in front of this one).
func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK, // Default if WriteHeader is never called
			}

			next.ServeHTTP(wrapped, r)

			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", wrapped.written),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
