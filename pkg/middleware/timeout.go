package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	apperrors "surfaura/pkg/errors"
	httputil "surfaura/pkg/http"
)

// timeoutWriter buffers headers in its own map so the handler goroutine never
// touches the underlying writer's headers after the deadline. They are copied
// across on the first write that beats the timeout.
type timeoutWriter struct {
	http.ResponseWriter
	h        http.Header
	mu       sync.Mutex
	timedOut bool
	written  bool
}

func (tw *timeoutWriter) Header() http.Header { return tw.h }

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut || tw.written {
		return
	}
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.written {
		tw.writeHeaderLocked(http.StatusOK)
	}

	return tw.ResponseWriter.Write(b)
}

// writeHeaderLocked must be called with tw.mu held.
func (tw *timeoutWriter) writeHeaderLocked(code int) {
	tw.written = true
	dst := tw.ResponseWriter.Header()
	for k, vv := range tw.h {
		dst[k] = vv
	}
	tw.ResponseWriter.WriteHeader(code)
}

// handlerPanic carries a panic out of the handler goroutine so Recovery sees
// the original stack.
type handlerPanic struct {
	value any
	stack []byte
}

// RequestTimeout bounds the time a handler may take. The handler keeps running
// after the deadline but its writes are discarded and the client gets a 504.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			tw := &timeoutWriter{ResponseWriter: w, h: make(http.Header)}

			done := make(chan struct{})
			panicked := make(chan *handlerPanic, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- &handlerPanic{value: p, stack: debug.Stack()}
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case <-done:
				return
			case p := <-panicked:
				panic(p)
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				if !tw.written {
					tw.written = true
					_ = httputil.WriteError(w, apperrors.Timeout("Request timeout"))
				}
			}
		})
	}
}
