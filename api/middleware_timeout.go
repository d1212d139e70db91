package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const timeoutBody = `{"response": {"message": "Request timeout", "error": "the request took too long to process"}}`

// TimeoutMiddleware cancels the request context after timeout and answers
// 503 with a JSON body if the handler has not finished by then
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		th := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			th.ServeHTTP(wrapped, r.WithContext(ctx))

			if wrapped.statusCode == http.StatusServiceUnavailable && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				zap.S().Warnw("Request timeout",
					"path", r.URL.Path,
					"method", r.Method,
					"timeout", timeout,
					"requestId", RequestID(r.Context()),
				)
			}
		})
	}
}
