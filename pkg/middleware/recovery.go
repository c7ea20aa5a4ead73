package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "surfaura/pkg/errors"
	httputil "surfaura/pkg/http"
	"surfaura/pkg/logger"
	"surfaura/pkg/metrics"
)

// Recovery turns a panic anywhere below it into a 500 response. m may be nil.
func Recovery(log *logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				m.IncPanicRecovered()

				stack := debug.Stack()
				if p, ok := err.(*handlerPanic); ok {
					err, stack = p.value, p.stack
				}

				log.Error("Panic recovered",
					"request_id", RequestIDFromContext(r.Context()),
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)

				_ = httputil.WriteError(w, apperrors.Internal("Internal server error", nil))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
