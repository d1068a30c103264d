package middleware

import (
	"net/http"

	"github.com/govlink/govlink/internal/api/write"
	govlinkcontext "github.com/govlink/govlink/utils/context"
)

// InjectRequestID injects a RequestID into the context to be used by other middlewares.
// An incoming X-Request-Id header is kept so callers can correlate their own logs.
func InjectRequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if id := r.Header.Get(write.RequestIDHeader); id != "" {
				ctx = govlinkcontext.WithRequestID(ctx, id)
			} else {
				ctx = govlinkcontext.InjectRequestID(ctx)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Chain applies middlewares so the first one listed runs first.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	return h
}
