package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "surfaura/pkg/errors"
	httputil "surfaura/pkg/http"
	"surfaura/pkg/logger"
	"surfaura/pkg/metrics"
	"surfaura/pkg/sanitizer"
)

type PhoneExtractor func(r *http.Request) string

// PhoneRateLimiter allows at most limit requests per phone number inside a
// sliding window.
type PhoneRateLimiter struct {
	mu             sync.Mutex
	requests       map[string][]time.Time
	limit          int
	window         time.Duration
	phoneExtractor PhoneExtractor
	log            *logger.Logger
	stopCh         chan struct{}
	stopOnce       sync.Once
	now            func() time.Time
}

func NewPhoneRateLimiter(limit int, window time.Duration, extractor PhoneExtractor, log *logger.Logger) *PhoneRateLimiter {
	limiter := &PhoneRateLimiter{
		requests:       make(map[string][]time.Time),
		limit:          limit,
		window:         window,
		phoneExtractor: extractor,
		log:            log,
		stopCh:         make(chan struct{}),
		now:            time.Now,
	}

	go limiter.cleanup()

	return limiter
}

func (rl *PhoneRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := rl.now()
			rl.mu.Lock()
			for phone, timestamps := range rl.requests {
				if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) >= rl.window {
					delete(rl.requests, phone)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PhoneRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *PhoneRateLimiter) Allow(phone string) bool {
	if phone == "" {
		return true
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamps := rl.requests[phone]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[phone] = valid
		return false
	}

	rl.requests[phone] = append(valid, now)
	return true
}

// PhoneRateLimit rejects requests whose extracted phone number exceeded its
// allowance. Requests without a phone number pass through. m may be nil.
func PhoneRateLimit(limiter *PhoneRateLimiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			phone := extractPhoneNumber(r, limiter.phoneExtractor)

			if !limiter.Allow(phone) {
				m.IncRateLimited()
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"phone", maskPhone(phone),
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, apperrors.RateLimited("Rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractPhoneNumber(r *http.Request, extractor PhoneExtractor) string {
	if extractor == nil {
		return DefaultPhoneExtractor(r)
	}
	return extractor(r)
}

func DefaultPhoneExtractor(r *http.Request) string {
	return sanitizer.NormalizePhone(r.Header.Get("X-Phone-Number"))
}

// BookingPhoneExtractor reads the "phone" field of booking submissions, normalized
// so that formatting variants share one allowance. The body
// is restored for the next handler, including any read error such as
// *http.MaxBytesError.
func BookingPhoneExtractor(method, path string) PhoneExtractor {
	return func(r *http.Request) string {
		if r.Method != method || r.URL.Path != path || r.Body == nil {
			return ""
		}

		data, err := io.ReadAll(r.Body)
		_ = r.Body.Close()

		var rest io.Reader = bytes.NewReader(data)
		if err != nil {
			rest = io.MultiReader(rest, errReader{err: err})
		}
		r.Body = io.NopCloser(rest)

		if err != nil {
			return ""
		}

		var payload struct {
			Phone *string `json:"phone"`
		}
		if json.Unmarshal(data, &payload) != nil || payload.Phone == nil {
			return ""
		}
		return sanitizer.NormalizePhone(*payload.Phone)
	}
}

type errReader struct {
	err error
}

func (e errReader) Read([]byte) (int, error) {
	return 0, e.err
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
