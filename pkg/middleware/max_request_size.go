package middleware

import (
	"net/http"

	apperrors "surfaura/pkg/errors"
	httputil "surfaura/pkg/http"
)

// MaxRequestSize caps request bodies at maxBytes. Bodies with a declared
// Content-Length over the cap are rejected up front; others fail on read with
// *http.MaxBytesError.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				_ = httputil.WriteError(w, apperrors.PayloadTooLarge(maxBytes))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
