package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/metrics"
)

// LoggingMiddleware writes one line when a request arrives and one when it
// completes. The completion line carries the matched route pattern so
// executions and accounts can be told apart without logging raw ids twice.
// Server errors complete at warn level.
func LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := log.InjectRequest(r.Context(), r)
			r = r.WithContext(ctx)

			log.Debug(ctx, "Request received")

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			metrics.HTTPRequests.WithLabelValues(r.Method, metrics.StatusClass(rec.status)).Inc()

			attrs := []slog.Attr{
				slog.String("route", r.Pattern),
				slog.Int("httpStatus", rec.status),
				slog.Int("bytes", rec.written),
				slog.Duration("duration", time.Since(start)),
			}

			if rec.status >= http.StatusInternalServerError {
				log.Warn(ctx, "Request failed", attrs...)
				return
			}

			log.Info(ctx, "Request completed", attrs...)
		})
	}
}

// statusRecorder remembers the status code and body size sent to the client.
type statusRecorder struct {
	http.ResponseWriter

	status  int
	written int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.written += n

	return n, err
}
