package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/govlink/govlink/internal/api/write"
	"github.com/govlink/govlink/internal/apierrors"
	"github.com/govlink/govlink/internal/log"
)

// PanicRecoveryMiddleware turns a panicking handler into a 500 problem and
// logs the stack. http.ErrAbortHandler is re-raised so net/http can drop the
// connection as the handler asked.
func PanicRecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}

				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				ctx := r.Context()

				//nolint:err113
				log.Error(ctx, "Handler panicked", fmt.Errorf("%v", v),
					slog.String("stackTrace", string(debug.Stack())),
				)

				write.ErrorResponse(ctx, w, r, apierrors.InternalServerErrorMessage())
			}()

			next.ServeHTTP(w, r)
		})
	}
}
