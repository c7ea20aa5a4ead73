package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	apperrors "surfaura/pkg/errors"
	httputil "surfaura/pkg/http"
	"surfaura/pkg/logger"
)

const DefaultIdempotencyHeader = "Idempotency-Key"

// maxReservationTTL bounds how long a key stays claimed by a request that
// never completes, e.g. after a crash with a shared store.
const maxReservationTTL = 5 * time.Minute

type IdempotencyStore interface {
	// Reserve claims key for an in-flight request. It reports false when the
	// key is already claimed or holds a completed response.
	Reserve(ctx context.Context, key string) (bool, error)
	// Release drops a reservation whose request did not succeed.
	Release(ctx context.Context, key string) error
	// Get returns the completed response for key. In-flight reservations are not found.
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	Set(ctx context.Context, key string, response *CachedResponse) error
	Stop() error // Release background workers and connections
}

func releaseReservation(ctx context.Context, store IdempotencyStore, key string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	return store.Release(ctx, key)
}

func reservationTTL(ttl time.Duration) time.Duration {
	return min(ttl, maxReservationTTL)
}

type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response when a request repeats an
// Idempotency-Key already seen for the same method and path. The key is reserved
// before the handler runs, so a duplicate arriving while the first request is
// still in flight gets 409. Store failures are logged and the request is served
// normally.
func Idempotency(store IdempotencyStore, headerName string, log *logger.Logger) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = DefaultIdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			key = r.Method + " " + r.URL.Path + " " + key

			reserved, err := store.Reserve(r.Context(), key)
			if err != nil {
				log.Warn("Idempotency reservation failed",
					"request_id", RequestIDFromContext(r.Context()),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			if !reserved {
				cached, found, err := store.Get(r.Context(), key)
				if err != nil {
					log.Warn("Idempotency lookup failed",
						"request_id", RequestIDFromContext(r.Context()),
						"error", err,
					)
				}
				if found {
					log.Debug("Replaying idempotent response",
						"request_id", RequestIDFromContext(r.Context()),
						"status", cached.StatusCode,
					)
					replayCachedResponse(w, cached)
					return
				}

				log.Warn("Idempotent request already in progress",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, apperrors.Conflict("A request with this Idempotency-Key is already in progress"))
				return
			}

			stored := false
			defer func() {
				if stored {
					return
				}
				if err := releaseReservation(r.Context(), store, key); err != nil {
					log.Warn("Failed to release idempotency reservation",
						"request_id", RequestIDFromContext(r.Context()),
						"error", err,
					)
				}
			}()

			capture := &responseCapture{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(capture, r)

			if !shouldCacheResponse(capture.statusCode) {
				return
			}

			cachedResp := &CachedResponse{
				StatusCode: capture.statusCode,
				Headers:    w.Header().Clone(),
				Body:       capture.body.Bytes(),
				CreatedAt:  time.Now().UTC(),
			}
			cachedResp.Headers.Del(RequestIDHeader)

			// The request context may be near its deadline; the response is already sent.
			storeCtx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
			defer cancel()
			if err := store.Set(storeCtx, key, cachedResp); err != nil {
				log.Warn("Failed to store idempotent response",
					"request_id", RequestIDFromContext(r.Context()),
					"error", err,
				)
				return
			}
			stored = true
		})
	}
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
