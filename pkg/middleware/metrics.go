package middleware

import (
	"net/http"
	"time"

	"surfaura/pkg/metrics"
)

// RouteLabeler maps a request to a bounded metrics label.
type RouteLabeler func(r *http.Request) string

func Metrics(m *metrics.Metrics, label RouteLabeler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if label != nil {
				route = label(r)
			}
			m.ObserveRequest(r.Method, route, wrapped.statusCode, time.Since(start))
		})
	}
}
